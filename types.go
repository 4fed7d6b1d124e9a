package bucketgate

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Tag is a single key/value pair attached to an object.
type Tag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

// Valid reports whether both key and value are set.
func (t Tag) Valid() bool {
	return t.Key != "" && t.Value != ""
}

// Credential is one username/password record.
type Credential struct {
	Username string `json:"username" mapstructure:"username" validate:"required"`
	Password string `json:"password" mapstructure:"password" validate:"required"`
}

// Identity is an authenticated caller.
type Identity struct {
	Username string
}

type ObjectEntry struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

type UploadRequest struct {
	Filename    string
	Path        string
	ContentType string
	Size        int64
	Tag         *Tag
}

type UploadResult struct {
	Key    string // relative to the owner namespace
	Size   int64
	Tagged bool
	// TagErr holds the tagging failure, if any. The object itself was stored.
	TagErr error
}

type DownloadResult struct {
	Key       string
	URL       string
	Tags      []Tag
	ExpiresIn time.Duration
}

// Tables holds configurable table names for the credential database.
type Tables struct {
	Users string `mapstructure:"users"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

func (t Tables) Validate() error {
	if t.Users == "" {
		return errors.New("validate tables: users table name cannot be empty")
	}

	if !IsValidTableName(t.Users) {
		return fmt.Errorf("validate tables: invalid users table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Users)
	}

	return nil
}
