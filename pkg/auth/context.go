package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const identityKey contextKey = "identity"

// ErrUnauthenticated is returned when no user identity exists in the request context.
// Handlers should return 401 when this error occurs.
var ErrUnauthenticated = errors.New("user identity not found in context")

// Identity is the authenticated user attached to a request.
// Username is carried alongside the ID so handlers can build display
// references without a round trip to the users store.
type Identity struct {
	UserID   uuid.UUID
	Username string
}

// IdentityFromCtx extracts the authenticated user from the request context.
// Returns ErrUnauthenticated if no identity is set or its UserID is uuid.Nil.
func IdentityFromCtx(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok || id.UserID == uuid.Nil {
		return Identity{}, ErrUnauthenticated
	}
	return id, nil
}

// UserIDFromCtx is IdentityFromCtx for callers that only need the user ID.
func UserIDFromCtx(ctx context.Context) (uuid.UUID, error) {
	id, err := IdentityFromCtx(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return id.UserID, nil
}

// WithIdentity returns a new context with the given identity attached.
// Used by authentication middleware after validating the session.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}
