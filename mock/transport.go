// Package mock provides test doubles for quill interfaces.
package mock

import (
	"context"
	"encoding/json"
	"io"

	"github.com/quillhq/quill"
)

// Interface compliance check.
var _ quill.Transport = (*Transport)(nil)

// Transport is a test double for quill.Transport.
// Set the function fields for the methods you need; they panic when nil
// to catch missing setup.
type Transport struct {
	RequestFn    func(ctx context.Context, req quill.ClientRequest) (json.RawMessage, error)
	OpenStreamFn func(ctx context.Context, req quill.ClientRequest) (io.ReadCloser, error)
}

// Request delegates to RequestFn.
func (t *Transport) Request(ctx context.Context, req quill.ClientRequest) (json.RawMessage, error) {
	return t.RequestFn(ctx, req)
}

// OpenStream delegates to OpenStreamFn.
func (t *Transport) OpenStream(ctx context.Context, req quill.ClientRequest) (io.ReadCloser, error) {
	return t.OpenStreamFn(ctx, req)
}

// Interface compliance check.
var _ quill.IdentityResolver = (*Identity)(nil)

// Identity is a test double for quill.IdentityResolver. Returns
// "mock-user" when GetUserIDFn is nil.
type Identity struct {
	GetUserIDFn func() string
}

// GetUserID delegates to GetUserIDFn.
func (i *Identity) GetUserID() string {
	if i.GetUserIDFn == nil {
		return "mock-user"
	}
	return i.GetUserIDFn()
}
