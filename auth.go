package bucketgate

import (
	"context"
	"errors"
	"fmt"
)

// Authenticator verifies a username/password pair.
//
// Implementations must compare secrets in constant time and must return an
// error wrapping ErrUnauthorized when the pair does not match.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (Identity, error)
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(ctx context.Context, username, password string) (Identity, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, username, password string) (Identity, error) {
	return f(ctx, username, password)
}

type chain []Authenticator

// ChainAuthenticators tries each authenticator in order and returns the first
// success. Errors other than ErrUnauthorized stop the chain.
func ChainAuthenticators(auths ...Authenticator) Authenticator {
	var c chain
	for _, a := range auths {
		if a != nil {
			c = append(c, a)
		}
	}
	return c
}

func (c chain) Authenticate(ctx context.Context, username, password string) (Identity, error) {
	for _, a := range c {
		id, err := a.Authenticate(ctx, username, password)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, ErrUnauthorized) {
			return Identity{}, fmt.Errorf("authenticate: %w", err)
		}
	}
	return Identity{}, fmt.Errorf("authenticate %s: %w", username, ErrUnauthorized)
}

type identityKey struct{}

// WithIdentity stores the authenticated identity in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
