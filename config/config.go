package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/bucketgate"
	"github.com/sagarc03/bucketgate/database"
	gatehttp "github.com/sagarc03/bucketgate/http"
	"github.com/sagarc03/bucketgate/keybackend"
	"github.com/sagarc03/bucketgate/s3store"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for bucketgate.
type Config struct {
	Server  ServerConfig        `mapstructure:"server"`
	S3      S3Config            `mapstructure:"s3"`
	Auth    AuthConfig          `mapstructure:"auth"`
	CORS    gatehttp.CORSConfig `mapstructure:"cors"`
	Log     LogConfig           `mapstructure:"log"`
	Metrics MetricsConfig       `mapstructure:"metrics"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port          int   `mapstructure:"port" validate:"required,min=1,max=65535"`
	MaxUploadSize int64 `mapstructure:"max_upload_size" validate:"min=0"`
}

// S3Config holds object storage configuration.
type S3Config struct {
	Bucket        string `mapstructure:"bucket"`
	Region        string `mapstructure:"region"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	Endpoint      string `mapstructure:"endpoint" validate:"omitempty,url"`
	PathStyle     bool   `mapstructure:"path_style"`
	PresignExpiry int    `mapstructure:"presign_expiry" validate:"min=1,max=604800"` // seconds
}

// Validate checks the settings required to reach the bucket. It is separate
// from Load so that commands which never touch S3 can run without them.
func (c S3Config) Validate() error {
	var missing []string
	if c.Bucket == "" {
		missing = append(missing, "s3.bucket (AWS_S3_BUCKET)")
	}
	if c.Region == "" {
		missing = append(missing, "s3.region (AWS_REGION)")
	}
	if c.AccessKey == "" {
		missing = append(missing, "s3.access_key (AWS_ACCESS_KEY_ID)")
	}
	if c.SecretKey == "" {
		missing = append(missing, "s3.secret_key (AWS_SECRET_ACCESS_KEY)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("validate s3 config: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// StoreConfig converts to the s3store configuration.
func (c S3Config) StoreConfig() s3store.Config {
	return s3store.Config{
		Bucket:    c.Bucket,
		Region:    c.Region,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		Endpoint:  c.Endpoint,
		PathStyle: c.PathStyle,
	}
}

func (c S3Config) PresignDuration() time.Duration {
	return time.Duration(c.PresignExpiry) * time.Second
}

// AuthConfig holds credential sources. Inline and file credentials are
// merged; the database, when configured, is consulted after them.
type AuthConfig struct {
	File     string                  `mapstructure:"file"`
	Inline   []bucketgate.Credential `mapstructure:"inline" validate:"dive"`
	Database database.Config         `mapstructure:"database"`
}

// Static returns the keybackend configuration for inline and file credentials.
func (c AuthConfig) Static() keybackend.AuthConfig {
	return keybackend.AuthConfig{Inline: c.Inline, File: c.File}
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"port":       "server.port",
	"bucket":     "s3.bucket",
	"region":     "s3.region",
	"endpoint":   "s3.endpoint",
	"path-style": "s3.path_style",
	"users-file": "auth.file",
	"db-type":    "auth.database.type",
	"db-dsn":     "auth.database.dsn",
	"log-level":  "log.level",
	"log-format": "log.format",
	"metrics":    "metrics.enabled",
}

// envAliases lets the conventional AWS variables configure the bucket.
// The BUCKETGATE_ form is checked first.
var envAliases = map[string][]string{
	"s3.access_key": {"BUCKETGATE_S3_ACCESS_KEY", "AWS_ACCESS_KEY_ID"},
	"s3.secret_key": {"BUCKETGATE_S3_SECRET_KEY", "AWS_SECRET_ACCESS_KEY"},
	"s3.region":     {"BUCKETGATE_S3_REGION", "AWS_REGION"},
	"s3.bucket":     {"BUCKETGATE_S3_BUCKET", "AWS_S3_BUCKET"},
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.max_upload_size", 0) // 0 means no limit

	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.path_style", false)
	v.SetDefault("s3.presign_expiry", int(bucketgate.DefaultPresignExpiry/time.Second))

	v.SetDefault("auth.file", "")
	v.SetDefault("auth.database.type", "")
	v.SetDefault("auth.database.dsn", "bucketgate.db")
	v.SetDefault("auth.database.tables.users", "bucketgate_users")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("metrics.enabled", false)
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("BUCKETGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, envs := range envAliases {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if cfg.Auth.Database.Enabled() {
		if err := cfg.Auth.Database.Tables.Validate(); err != nil {
			return nil, fmt.Errorf("validate config: %w", err)
		}
	}

	return &cfg, nil
}
