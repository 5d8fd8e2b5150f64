package auth

import (
	"context"
	"errors"

	"github.com/avolkov/marketplace-order-service/internal/entities"
)

var ErrInvalidCredential = errors.New("invalid credential")

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Role   entities.Role
}

// Resolver maps a bearer credential to an identity. The real
// implementation lives in the session service; this package only
// defines the contract and a static resolver for development and tests.
type Resolver interface {
	Verify(ctx context.Context, credential string) (Identity, error)
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity placed by the middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
