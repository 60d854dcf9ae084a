package quill

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
)

// Target selects which backend cluster endpoint a request goes to.
type Target string

const (
	TargetReader Target = "reader"
	TargetWriter Target = "writer"
)

// APIKeyPosition controls where the transport attaches credentials.
type APIKeyPosition string

const (
	APIKeyInHeader      APIKeyPosition = "header"
	APIKeyInQueryParams APIKeyPosition = "query-params"
)

// ClientRequest describes one backend call. Body is JSON-encoded by the
// transport when non-nil.
type ClientRequest struct {
	Method      string
	Path        string
	Body        any
	Params      url.Values
	KeyPosition APIKeyPosition
	Target      Target
}

// Transport is the strategy interface for talking to the backend.
// Request performs a one-shot JSON call. OpenStream issues the request
// and returns the raw response body for incremental consumption; the
// caller owns closing it. Both fail with a transport error on connection
// failure. Cancellation flows through the context.
type Transport interface {
	Request(ctx context.Context, req ClientRequest) (json.RawMessage, error)
	OpenStream(ctx context.Context, req ClientRequest) (io.ReadCloser, error)
}

// queryParams builds url.Values from alternating key/value pairs.
func queryParams(pairs ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		v.Set(pairs[i], pairs[i+1])
	}
	return v
}

// IdentityResolver supplies the visitor id attached to answer requests
// when the caller does not provide one.
type IdentityResolver interface {
	GetUserID() string
}

// DefaultServerUserID is the fixed visitor identifier used when no
// identity resolver is configured. Server-side deployments have no
// per-visitor browser profile, so a stable constant stands in.
const DefaultServerUserID = "server-user"
