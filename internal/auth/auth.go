// Package auth verifies bearer credentials against an identity provider.
package auth

import (
	"context"
	"errors"
)

// ErrInvalidToken is returned for missing, expired, or unknown credentials.
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the verified caller.
type Identity struct {
	UserID string
	Email  string
}

// Verifier validates a bearer token and resolves the caller's identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

type ctxKey struct{}

// WithIdentity attaches a verified identity to the request context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFrom extracts the verified identity, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
