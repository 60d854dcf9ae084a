package quill

import (
	"context"
	"fmt"
	"io"

	"github.com/quillhq/quill/sse"
)

// LogsNamespace streams the collection's server-side logs.
type LogsNamespace struct {
	transport    Transport
	collectionID string
}

// LogStream iterates raw log frames until the remote closes the
// connection.
type LogStream struct {
	body   io.ReadCloser
	frames *sse.FrameReader
}

// Next returns the next log frame, or io.EOF at end of stream.
func (s *LogStream) Next() (sse.Frame, error) {
	return s.frames.ReadFrame()
}

// Close closes the underlying stream.
func (s *LogStream) Close() error {
	return s.body.Close()
}

// Stream opens the live log stream for the collection.
func (n *LogsNamespace) Stream(ctx context.Context) (*LogStream, error) {
	rc, err := n.transport.OpenStream(ctx, ClientRequest{
		Method:      "GET",
		Path:        fmt.Sprintf("/v1/collections/%s/logs", n.collectionID),
		KeyPosition: APIKeyInQueryParams,
		Target:      TargetReader,
	})
	if err != nil {
		return nil, fmt.Errorf("quill: log stream: %w", err)
	}
	return &LogStream{body: rc, frames: sse.NewFrameReader(rc)}, nil
}
