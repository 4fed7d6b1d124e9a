package bucketgate

import (
	"context"
	"time"
)

// User is a credential persisted in the users table. The password itself is
// never stored, only its hash and salt.
type User struct {
	Username     string
	PasswordHash []byte
	Salt         []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRepo manages persisted users. Implementations must be safe for
// concurrent use.
type UserRepo interface {
	// Get returns the user with the given name, or ErrNotFound.
	Get(ctx context.Context, username string) (User, error)

	// Upsert creates the user or replaces its password hash and salt.
	// The bool result is true when a new row was created.
	Upsert(ctx context.Context, u User) (User, bool, error)

	// Delete removes the user, or returns ErrNotFound.
	Delete(ctx context.Context, username string) error

	// List returns all users ordered by username.
	List(ctx context.Context) ([]User, error)
}
