package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/sagarc03/bucketgate"
)

// Authenticator verifies credentials against a UserRepo.
type Authenticator struct {
	repo      bucketgate.UserRepo
	dummySalt []byte
	dummyHash []byte
}

func NewAuthenticator(repo bucketgate.UserRepo) *Authenticator {
	// Unknown users are verified against a throwaway hash so that the
	// response time does not reveal whether the username exists.
	hash, salt, err := HashPassword("unknown-user")
	if err != nil {
		salt = make([]byte, saltLen)
		hash = deriveKey("unknown-user", salt)
	}
	return &Authenticator{repo: repo, dummySalt: salt, dummyHash: hash}
}

func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (bucketgate.Identity, error) {
	if !bucketgate.IsValidUsername(username) {
		VerifyPassword(password, a.dummyHash, a.dummySalt)
		return bucketgate.Identity{}, fmt.Errorf("authenticate %q: %w", username, bucketgate.ErrUnauthorized)
	}

	u, err := a.repo.Get(ctx, username)
	if err != nil {
		if errors.Is(err, bucketgate.ErrNotFound) {
			VerifyPassword(password, a.dummyHash, a.dummySalt)
			return bucketgate.Identity{}, fmt.Errorf("authenticate %s: %w", username, bucketgate.ErrUnauthorized)
		}
		return bucketgate.Identity{}, fmt.Errorf("authenticate %s: %w", username, err)
	}

	if !VerifyPassword(password, u.PasswordHash, u.Salt) {
		return bucketgate.Identity{}, fmt.Errorf("authenticate %s: %w", username, bucketgate.ErrUnauthorized)
	}

	return bucketgate.Identity{Username: u.Username}, nil
}

// AddUser hashes password and stores it for username.
// The bool result is true when a new user was created.
func AddUser(ctx context.Context, repo bucketgate.UserRepo, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, fmt.Errorf("add user: %w: username and password are required", bucketgate.ErrInvalidInput)
	}
	if !bucketgate.IsValidUsername(username) {
		return false, fmt.Errorf("add user %q: %w: username must not contain \"/\" or control characters", username, bucketgate.ErrInvalidInput)
	}

	hash, salt, err := HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("add user %s: %w", username, err)
	}

	_, created, err := repo.Upsert(ctx, bucketgate.User{Username: username, PasswordHash: hash, Salt: salt})
	if err != nil {
		return false, fmt.Errorf("add user %s: %w", username, err)
	}

	return created, nil
}
