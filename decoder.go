package quill

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/quillhq/quill/sse"
)

// StreamDecoder turns a raw answer-stream body into a lazy,
// forward-only, non-restartable sequence of typed events. It observes
// ctx at frame boundaries: once the context is cancelled the decoder
// stops producing events and closes the underlying stream before the
// next frame would be emitted.
type StreamDecoder struct {
	body   io.ReadCloser
	frames *sse.FrameReader
	ctx    context.Context
	done   bool
	err    error // terminal error, if any
}

// NewStreamDecoder returns a decoder over body. Cancellation flows
// through ctx.
func NewStreamDecoder(ctx context.Context, body io.ReadCloser) *StreamDecoder {
	return &StreamDecoder{
		body:   body,
		frames: sse.NewFrameReader(body),
		ctx:    ctx,
	}
}

// Next returns the next typed event. It returns io.EOF after a done
// frame or a clean connection close, the context's error once
// cancelled, and a fatal decode error when the transport fails
// mid-stream. Malformed JSON inside a frame yields an EventError rather
// than a decode failure, so the caller sees a terminal error state
// instead of losing the stream.
func (d *StreamDecoder) Next() (Event, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.done {
		return nil, io.EOF
	}
	if err := d.ctx.Err(); err != nil {
		d.terminate(err)
		return nil, err
	}

	frame, err := d.frames.ReadFrame()
	if err == io.EOF {
		d.terminate(io.EOF)
		return nil, io.EOF
	}
	if err != nil {
		d.terminate(err)
		return nil, err
	}

	evt := decodeFrame(frame)
	if _, ok := evt.(EventDone); ok {
		d.terminate(io.EOF)
	}
	return evt, nil
}

// Close closes the underlying stream. Safe to call more than once.
func (d *StreamDecoder) Close() error {
	if d.body == nil {
		return nil
	}
	body := d.body
	d.body = nil
	return body.Close()
}

func (d *StreamDecoder) terminate(err error) {
	if err == io.EOF {
		d.done = true
	} else {
		d.err = err
	}
	_ = d.Close()
}

// decodeFrame maps one raw frame to a typed event. Unrecognized kinds
// pass through as EventUnknown so callers can log without the decoder
// silently losing data.
func decodeFrame(f sse.Frame) Event {
	switch f.Event {
	case "step":
		s, err := decodeText(f.Data)
		if err != nil {
			return malformedEvent(f, err)
		}
		return EventStep{Step: s}
	case "step-verbose":
		s, err := decodeText(f.Data)
		if err != nil {
			return malformedEvent(f, err)
		}
		return EventStepVerbose{Step: s}
	case "related":
		s, err := decodeText(f.Data)
		if err != nil {
			return malformedEvent(f, err)
		}
		return EventRelated{Text: s}
	case "result":
		var payload struct {
			Text    string          `json:"text"`
			Sources json.RawMessage `json:"sources"`
		}
		if err := json.Unmarshal([]byte(f.Data), &payload); err != nil {
			return malformedEvent(f, err)
		}
		return EventResult{Text: payload.Text, Sources: payload.Sources}
	case "selected-llm":
		var cfg LLMConfig
		if err := json.Unmarshal([]byte(f.Data), &cfg); err != nil {
			return malformedEvent(f, err)
		}
		return EventSelectedLLM{Config: cfg}
	case "optimized-query":
		raw, err := decodeRaw(f.Data)
		if err != nil {
			return malformedEvent(f, err)
		}
		return EventOptimizedQuery{Params: raw}
	case "advanced-autoquery":
		raw, err := decodeRaw(f.Data)
		if err != nil {
			return malformedEvent(f, err)
		}
		return EventAdvancedAutoquery{Data: raw}
	case "error":
		s, err := decodeText(f.Data)
		if err != nil {
			return malformedEvent(f, err)
		}
		return EventError{Message: s}
	case "done":
		return EventDone{}
	default:
		return EventUnknown{Name: f.Event, Data: json.RawMessage(f.Data)}
	}
}

// decodeText accepts either a JSON string or bare text, since some
// backend versions emit progress labels unquoted.
func decodeText(data string) (string, error) {
	trimmed := strings.TrimSpace(data)
	if !strings.HasPrefix(trimmed, "\"") {
		return trimmed, nil
	}
	var s string
	if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
		return "", err
	}
	return s, nil
}

func decodeRaw(data string) (json.RawMessage, error) {
	if !json.Valid([]byte(data)) {
		return nil, fmt.Errorf("invalid JSON payload")
	}
	return json.RawMessage(data), nil
}

func malformedEvent(f sse.Frame, err error) Event {
	return EventError{Message: fmt.Sprintf("malformed %s frame: %v", f.Event, err)}
}
