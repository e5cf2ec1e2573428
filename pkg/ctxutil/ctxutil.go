// Package ctxutil carries request-scoped values through context: the
// authenticated identity set by the auth middleware and the request id set
// by the tracing middleware.
package ctxutil

import (
	"context"

	"github.com/brunovale/catalog-backend/internal/auth"
)

type ctxKey string

const (
	identityKey  ctxKey = "identity"
	requestIDKey ctxKey = "request_id"
)

// WithIdentity stores the authenticated identity in the context.
func WithIdentity(ctx context.Context, identity auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromCtx extracts the authenticated identity from the context.
// Returns false if the value is missing, zero, or of the wrong type.
func IdentityFromCtx(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(auth.Identity)
	if !ok || identity.UserID == 0 {
		return auth.Identity{}, false
	}
	return identity, true
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
