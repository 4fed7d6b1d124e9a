package keybackend

import (
	"fmt"

	"github.com/sagarc03/bucketgate"
)

// AuthConfig holds configuration for loading static credentials.
type AuthConfig struct {
	Inline []bucketgate.Credential `mapstructure:"inline"` // Inline credentials from config
	File   string                  `mapstructure:"file"`   // Path to CSV or JSON credentials file
}

// NewAuthenticator creates a MapAuthenticator from the given configuration.
// Inline and file credentials are merged. File credentials take precedence
// over inline credentials with the same username.
func NewAuthenticator(cfg AuthConfig) (*MapAuthenticator, error) {
	byName := make(map[string]int)
	var merged []bucketgate.Credential

	add := func(c bucketgate.Credential) {
		if c.Username == "" || c.Password == "" {
			return
		}
		if i, ok := byName[c.Username]; ok {
			merged[i] = c
			return
		}
		byName[c.Username] = len(merged)
		merged = append(merged, c)
	}

	for _, c := range cfg.Inline {
		if c.Username != "" && !bucketgate.IsValidUsername(c.Username) {
			return nil, fmt.Errorf("load inline credentials: %w: invalid username %q", bucketgate.ErrInvalidInput, c.Username)
		}
		add(c)
	}

	if cfg.File != "" {
		fileCreds, err := LoadCredentialsFromFile(cfg.File)
		if err != nil {
			return nil, err
		}
		for _, c := range fileCreds {
			add(c)
		}
	}

	return NewMapAuthenticator(merged), nil
}
