// Package auth implements the per-request authorization gates: session
// resolution, role checks and required-field validation. The gates only
// accept or reject requests; they never mutate session or account state.
package auth

import (
	"context"

	"github.com/clinica/clinica/internal/platform/session"
)

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, id session.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the authenticated identity attached by the
// session middleware, or nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *session.Identity {
	id, ok := ctx.Value(identityKey).(session.Identity)
	if !ok {
		return nil
	}
	return &id
}
