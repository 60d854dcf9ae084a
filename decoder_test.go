package quill_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhq/quill"
)

// frames builds a stream body from event/data pairs.
func frames(pairs ...[2]string) io.ReadCloser {
	var b strings.Builder
	for _, p := range pairs {
		fmt.Fprintf(&b, "event: %s\ndata: %s\n\n", p[0], p[1])
	}
	return io.NopCloser(strings.NewReader(b.String()))
}

func collectEvents(t *testing.T, d *quill.StreamDecoder) []quill.Event {
	t.Helper()
	var events []quill.Event
	for {
		evt, err := d.Next()
		if err == io.EOF {
			return events
		}
		require.NoError(t, err)
		events = append(events, evt)
	}
}

func TestStreamDecoder_TypedEvents(t *testing.T) {
	t.Parallel()
	d := quill.NewStreamDecoder(context.Background(), frames(
		[2]string{"step", `"searching"`},
		[2]string{"step-verbose", `"Searching the knowledge base"`},
		[2]string{"selected-llm", `{"provider":"openai","model":"gpt-4o"}`},
		[2]string{"optimized-query", `{"term":"parsing","mode":"hybrid"}`},
		[2]string{"advanced-autoquery", `{"queries":["a","b"]}`},
		[2]string{"result", `{"text":"Hello"}`},
		[2]string{"result", `{"text":" world","sources":[{"id":"doc-1"}]}`},
		[2]string{"related", `"What is framing?"`},
		[2]string{"done", "true"},
	))
	defer d.Close()

	events := collectEvents(t, d)

	require.Len(t, events, 9)
	assert.Equal(t, quill.EventStep{Step: "searching"}, events[0])
	assert.Equal(t, quill.EventStepVerbose{Step: "Searching the knowledge base"}, events[1])
	assert.Equal(t, quill.EventSelectedLLM{Config: quill.LLMConfig{Provider: quill.LLMOpenAI, Model: "gpt-4o"}}, events[2])
	assert.Equal(t, quill.EventOptimizedQuery{Params: json.RawMessage(`{"term":"parsing","mode":"hybrid"}`)}, events[3])
	assert.Equal(t, quill.EventAdvancedAutoquery{Data: json.RawMessage(`{"queries":["a","b"]}`)}, events[4])
	assert.Equal(t, quill.EventResult{Text: "Hello"}, events[5])
	assert.Equal(t, quill.EventResult{Text: " world", Sources: json.RawMessage(`[{"id":"doc-1"}]`)}, events[6])
	assert.Equal(t, quill.EventRelated{Text: "What is framing?"}, events[7])
	assert.Equal(t, quill.EventDone{}, events[8])
}

func TestStreamDecoder_DoneTerminates(t *testing.T) {
	t.Parallel()
	d := quill.NewStreamDecoder(context.Background(), frames(
		[2]string{"done", "true"},
		[2]string{"result", `{"text":"late"}`},
	))
	defer d.Close()

	evt, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, quill.EventDone{}, evt)

	// Frames after done are never decoded.
	_, err = d.Next()
	assert.Equal(t, io.EOF, err)
}

func TestStreamDecoder_UnknownPassthrough(t *testing.T) {
	t.Parallel()
	d := quill.NewStreamDecoder(context.Background(), frames(
		[2]string{"telemetry", `{"ms":12}`},
	))
	defer d.Close()

	evt, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, quill.EventUnknown{Name: "telemetry", Data: json.RawMessage(`{"ms":12}`)}, evt)
}

func TestStreamDecoder_MalformedJSONYieldsErrorEvent(t *testing.T) {
	t.Parallel()
	d := quill.NewStreamDecoder(context.Background(), frames(
		[2]string{"result", `{"text":`},
	))
	defer d.Close()

	evt, err := d.Next()
	require.NoError(t, err)
	errEvt, ok := evt.(quill.EventError)
	require.True(t, ok, "expected EventError, got %T", evt)
	assert.NotEmpty(t, errEvt.Message)
}

func TestStreamDecoder_BareTextPayload(t *testing.T) {
	t.Parallel()
	// Some backend versions emit progress labels unquoted.
	d := quill.NewStreamDecoder(context.Background(), frames(
		[2]string{"step", "answer_generation"},
	))
	defer d.Close()

	evt, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, quill.EventStep{Step: "answer_generation"}, evt)
}

func TestStreamDecoder_CleanCloseIsEOF(t *testing.T) {
	t.Parallel()
	d := quill.NewStreamDecoder(context.Background(), frames(
		[2]string{"result", `{"text":"partial"}`},
	))
	defer d.Close()

	_, err := d.Next()
	require.NoError(t, err)
	_, err = d.Next()
	assert.Equal(t, io.EOF, err)
}

func TestStreamDecoder_CancellationAtFrameBoundary(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	d := quill.NewStreamDecoder(ctx, frames(
		[2]string{"result", `{"text":"a"}`},
		[2]string{"result", `{"text":"b"}`},
	))
	defer d.Close()

	_, err := d.Next()
	require.NoError(t, err)

	cancel()

	_, err = d.Next()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStreamDecoder_ErrorEventIsNotFatal(t *testing.T) {
	t.Parallel()
	d := quill.NewStreamDecoder(context.Background(), frames(
		[2]string{"error", `"rate limit exceeded"`},
	))
	defer d.Close()

	evt, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, quill.EventError{Message: "rate limit exceeded"}, evt)
}
