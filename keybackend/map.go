// Package keybackend provides Authenticator implementations backed by static
// credential lists loaded from configuration or files.
package keybackend

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/sagarc03/bucketgate"
)

// MapAuthenticator checks credentials against an in-memory list.
// The list is never modified after construction, so it is safe for
// concurrent use.
type MapAuthenticator struct {
	creds []bucketgate.Credential
}

// NewMapAuthenticator creates an authenticator over a copy of creds.
// Records whose username fails bucketgate.IsValidUsername are dropped.
func NewMapAuthenticator(creds []bucketgate.Credential) *MapAuthenticator {
	c := make([]bucketgate.Credential, 0, len(creds))
	for _, cred := range creds {
		if bucketgate.IsValidUsername(cred.Username) {
			c = append(c, cred)
		}
	}
	return &MapAuthenticator{creds: c}
}

// Len returns the number of loaded credentials.
func (a *MapAuthenticator) Len() int {
	return len(a.creds)
}

// Usernames returns the loaded usernames in load order.
func (a *MapAuthenticator) Usernames() []string {
	names := make([]string, 0, len(a.creds))
	for _, c := range a.creds {
		names = append(names, c.Username)
	}
	return names
}

// Authenticate compares the pair against every record in constant time.
// The scan always visits every record.
func (a *MapAuthenticator) Authenticate(_ context.Context, username, password string) (bucketgate.Identity, error) {
	u := []byte(username)
	p := []byte(password)

	match := 0
	for _, c := range a.creds {
		match |= subtle.ConstantTimeCompare(u, []byte(c.Username)) &
			subtle.ConstantTimeCompare(p, []byte(c.Password))
	}

	if match != 1 {
		return bucketgate.Identity{}, fmt.Errorf("authenticate %s: %w", username, bucketgate.ErrUnauthorized)
	}
	return bucketgate.Identity{Username: username}, nil
}
