// Package sse reads the line-delimited server-push event framing used
// by the backend's streaming endpoints.
//
// Each frame has the form
//
//	event: <name>\n
//	data: <payload>\n
//	\n
//
// with a blank line as the frame terminator. The reader knows nothing
// about payload semantics; callers map frames to typed events at the
// protocol boundary.
package sse

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Frame is one raw protocol frame: an event name and its data payload.
type Frame struct {
	Event string
	Data  string
}

// FrameReader assembles complete frames from a byte stream. Partial
// frames are buffered until the blank-line boundary is seen; a frame is
// never surfaced with a partial payload.
type FrameReader struct {
	scanner *bufio.Scanner
}

// NewFrameReader returns a FrameReader over r.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{scanner: bufio.NewScanner(r)}
}

// ReadFrame reads lines until a complete frame is assembled. It returns
// io.EOF when the stream is exhausted with no pending frame.
func (fr *FrameReader) ReadFrame() (Frame, error) {
	var event string
	var dataBuf strings.Builder

	for fr.scanner.Scan() {
		line := fr.scanner.Text()

		if line == "" {
			// Blank line signals end of frame.
			if dataBuf.Len() > 0 || event != "" {
				return Frame{Event: event, Data: dataBuf.String()}, nil
			}
			// Empty frame, keep reading.
			continue
		}

		if after, ok := strings.CutPrefix(line, "event:"); ok {
			event = strings.TrimSpace(after)
		} else if after, ok := strings.CutPrefix(line, "data:"); ok {
			if dataBuf.Len() > 0 {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(strings.TrimPrefix(after, " "))
		}
		// Ignore comments (lines starting with ':') and unknown fields.
	}

	if err := fr.scanner.Err(); err != nil {
		return Frame{}, fmt.Errorf("sse: %w", err)
	}

	// Scanner exhausted without error: the remote closed the connection.
	// Surface a trailing unterminated frame if one was buffered.
	if dataBuf.Len() > 0 || event != "" {
		return Frame{Event: event, Data: dataBuf.String()}, nil
	}
	return Frame{}, io.EOF
}
