package quill

import "context"

// IdentityNamespace exposes the manager's profile. Every operation
// fails with ErrNoProfile when the manager was built without one
// (private API keys have no visitor profile).
type IdentityNamespace struct {
	profile *Profile
}

// Get returns the bound identity.
func (n *IdentityNamespace) Get() (string, error) {
	if n.profile == nil {
		return "", ErrNoProfile
	}
	return n.profile.GetIdentity(), nil
}

// GetUserID returns the anonymous user id.
func (n *IdentityNamespace) GetUserID() (string, error) {
	if n.profile == nil {
		return "", ErrNoProfile
	}
	return n.profile.GetUserID(), nil
}

// GetAlias returns the bound alias.
func (n *IdentityNamespace) GetAlias() (string, error) {
	if n.profile == nil {
		return "", ErrNoProfile
	}
	return n.profile.GetAlias(), nil
}

// Identify binds a stable external identity to the profile.
func (n *IdentityNamespace) Identify(ctx context.Context, identity string) error {
	if n.profile == nil {
		return ErrNoProfile
	}
	return n.profile.Identify(ctx, identity)
}

// Alias attaches a secondary label to the profile.
func (n *IdentityNamespace) Alias(ctx context.Context, alias string) error {
	if n.profile == nil {
		return ErrNoProfile
	}
	return n.profile.Alias(ctx, alias)
}

// Reset discards the profile's identity and generates a fresh
// anonymous user id.
func (n *IdentityNamespace) Reset() error {
	if n.profile == nil {
		return ErrNoProfile
	}
	n.profile.Reset()
	return nil
}
