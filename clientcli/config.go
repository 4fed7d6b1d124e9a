package clientcli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultEndpoint is used when no endpoint is configured anywhere.
const DefaultEndpoint = "http://localhost:8000"

// Profile is a named set of connection settings stored in the profile file.
type Profile struct {
	Name     string `yaml:"name"`
	Endpoint string `yaml:"endpoint"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Default  bool   `yaml:"default,omitempty"`
}

// Config returns the client settings held by the profile.
func (p Profile) Config() *Config {
	return &Config{Endpoint: p.Endpoint, Username: p.Username, Password: p.Password}
}

// ConfigFile is the on-disk profile file.
type ConfigFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// Lookup returns the named profile. An empty name selects the profile marked
// default, falling back to the first one.
func (c *ConfigFile) Lookup(name string) (Profile, error) {
	if len(c.Profiles) == 0 {
		return Profile{}, ErrNoProfiles
	}

	if name == "" {
		for _, p := range c.Profiles {
			if p.Default {
				return p, nil
			}
		}
		return c.Profiles[0], nil
	}

	for _, p := range c.Profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// Put inserts p or replaces the profile with the same name, reporting whether
// one was replaced. The first profile and any profile marked default become
// the only default.
func (c *ConfigFile) Put(p Profile) (replaced bool) {
	if len(c.Profiles) == 0 {
		p.Default = true
	}
	if p.Default {
		for i := range c.Profiles {
			c.Profiles[i].Default = false
		}
	}

	for i := range c.Profiles {
		if c.Profiles[i].Name == p.Name {
			c.Profiles[i] = p
			return true
		}
	}
	c.Profiles = append(c.Profiles, p)
	return false
}

// Save writes the file with owner-only permissions, creating its directory.
func (c *ConfigFile) Save(path string) error {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// LoadConfigFile reads a profile file.
func LoadConfigFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(filepath.Clean(path)) //#nosec G304 -- path is user-provided config file
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg ConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &cfg, nil
}

// DefaultConfigPath returns ~/.bucketgate/config.yaml, or "" without a home directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".bucketgate", "config.yaml")
}

// Config is the resolved connection the Client uses.
type Config struct {
	Endpoint string
	Username string
	Password string
}

// WithDefaults returns a copy with DefaultEndpoint filled in.
func (c *Config) WithDefaults() *Config {
	cfg := *c
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	return &cfg
}

// Validate checks that credentials are set. Every endpoint requires them.
func (c *Config) Validate() error {
	if c.Username == "" {
		return ErrUsernameRequired
	}
	if c.Password == "" {
		return ErrPasswordRequired
	}
	return nil
}

// ConfigFromEnv reads BUCKETGATE_ENDPOINT, BUCKETGATE_USERNAME and BUCKETGATE_PASSWORD.
func ConfigFromEnv() *Config {
	return &Config{
		Endpoint: os.Getenv("BUCKETGATE_ENDPOINT"),
		Username: os.Getenv("BUCKETGATE_USERNAME"),
		Password: os.Getenv("BUCKETGATE_PASSWORD"),
	}
}

// ProfileFromEnv returns BUCKETGATE_PROFILE.
func ProfileFromEnv() string {
	return os.Getenv("BUCKETGATE_PROFILE")
}

// ConfigPathFromEnv returns BUCKETGATE_CLI_CONFIG.
func ConfigPathFromEnv() string {
	return os.Getenv("BUCKETGATE_CLI_CONFIG")
}

// MergeConfig layers configs left to right. Empty fields never override.
func MergeConfig(configs ...*Config) *Config {
	result := &Config{}
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		for dst, src := range map[*string]string{
			&result.Endpoint: cfg.Endpoint,
			&result.Username: cfg.Username,
			&result.Password: cfg.Password,
		} {
			if src != "" {
				*dst = src
			}
		}
	}
	return result
}
