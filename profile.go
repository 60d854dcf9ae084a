package quill

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
)

// Profile tracks the anonymous visitor identity used to attribute
// searches and answer sessions. A fresh profile starts with a random
// user id; Identify and Alias bind it to a known identity on the
// backend.
type Profile struct {
	transport Transport

	mu       sync.Mutex
	userID   string
	identity string
	alias    string
}

// Interface compliance check.
var _ IdentityResolver = (*Profile)(nil)

// NewProfile creates a profile with a freshly generated anonymous user
// id.
func NewProfile(transport Transport) *Profile {
	return &Profile{
		transport: transport,
		userID:    randomString(24),
	}
}

// GetUserID returns the anonymous user id for this profile.
func (p *Profile) GetUserID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.userID
}

// GetIdentity returns the identity bound via Identify, or empty.
func (p *Profile) GetIdentity() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.identity
}

// GetAlias returns the alias bound via Alias, or empty.
func (p *Profile) GetAlias() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alias
}

// Identify binds the profile to a stable external identity.
func (p *Profile) Identify(ctx context.Context, identity string) error {
	if err := p.send(ctx, "identify", identity); err != nil {
		return err
	}
	p.mu.Lock()
	p.identity = identity
	p.mu.Unlock()
	return nil
}

// Alias attaches a secondary label to the profile without replacing the
// identity.
func (p *Profile) Alias(ctx context.Context, alias string) error {
	if err := p.send(ctx, "alias", alias); err != nil {
		return err
	}
	p.mu.Lock()
	p.alias = alias
	p.mu.Unlock()
	return nil
}

// Reset discards the identity, alias, and anonymous user id, generating
// a fresh user id.
func (p *Profile) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.userID = randomString(24)
	p.identity = ""
	p.alias = ""
}

func (p *Profile) send(ctx context.Context, kind, value string) error {
	body := map[string]string{
		"entity":     kind,
		"id":         value,
		"visitor_id": p.GetUserID(),
	}
	_, err := p.transport.Request(ctx, ClientRequest{
		Method:      "POST",
		Path:        "/v1/identity",
		Body:        body,
		KeyPosition: APIKeyInQueryParams,
		Target:      TargetReader,
	})
	if err != nil {
		return fmt.Errorf("quill: %s: %w", kind, err)
	}
	return nil
}

const randomAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-$"

// randomString returns a random identifier of length n.
func randomString(n int) string {
	buf := make([]byte, n)
	// rand.Read on crypto/rand never fails on supported platforms.
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = randomAlphabet[int(b)%len(randomAlphabet)]
	}
	return string(buf)
}
