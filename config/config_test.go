package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/bucketgate/config"
)

// clearAWSEnv keeps the developer's shell from leaking into the tests.
func clearAWSEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_REGION", "AWS_S3_BUCKET"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearAWSEnv(t)

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, int64(0), cfg.Server.MaxUploadSize)
	assert.Equal(t, 300, cfg.S3.PresignExpiry)
	assert.Equal(t, 5*time.Minute, cfg.S3.PresignDuration())
	assert.False(t, cfg.S3.PathStyle)
	assert.Empty(t, cfg.Auth.File)
	assert.False(t, cfg.Auth.Database.Enabled())
	assert.Equal(t, "bucketgate_users", cfg.Auth.Database.Tables.Users)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_ConfigFile(t *testing.T) {
	clearAWSEnv(t)

	configPath := writeConfig(t, "config.yaml", `
server:
  port: 8080
  max_upload_size: 1048576
s3:
  bucket: uploads
  region: eu-west-1
  access_key: AKIAEXAMPLE
  secret_key: secret
  endpoint: http://localhost:9000
  path_style: true
  presign_expiry: 60
auth:
  file: /etc/bucketgate/users.csv
  database:
    type: postgres
    dsn: postgres://localhost/test
    tables:
      users: gate_users
log:
  level: debug
  format: json
metrics:
  enabled: true
`)

	cfg, err := config.Load([]string{configPath}, nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(1048576), cfg.Server.MaxUploadSize)
	assert.Equal(t, "uploads", cfg.S3.Bucket)
	assert.Equal(t, "eu-west-1", cfg.S3.Region)
	assert.Equal(t, "AKIAEXAMPLE", cfg.S3.AccessKey)
	assert.Equal(t, "secret", cfg.S3.SecretKey)
	assert.Equal(t, "http://localhost:9000", cfg.S3.Endpoint)
	assert.True(t, cfg.S3.PathStyle)
	assert.Equal(t, time.Minute, cfg.S3.PresignDuration())
	assert.Equal(t, "/etc/bucketgate/users.csv", cfg.Auth.File)
	assert.Equal(t, "postgres", cfg.Auth.Database.Type)
	assert.Equal(t, "postgres://localhost/test", cfg.Auth.Database.DSN)
	assert.Equal(t, "gate_users", cfg.Auth.Database.Tables.Users)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.NoError(t, cfg.S3.Validate())

	store := cfg.S3.StoreConfig()
	assert.Equal(t, "uploads", store.Bucket)
	assert.True(t, store.PathStyle)
}

func TestLoad_ConfigFileMerge(t *testing.T) {
	clearAWSEnv(t)

	basePath := writeConfig(t, "base.yaml", `
server:
  port: 8000
s3:
  bucket: uploads
  region: us-east-1
log:
  level: info
`)
	overridePath := writeConfig(t, "override.yaml", `
server:
  port: 9000
s3:
  region: eu-central-1
`)

	cfg, err := config.Load([]string{basePath, overridePath}, nil)
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "eu-central-1", cfg.S3.Region)

	// Preserved values from base
	assert.Equal(t, "uploads", cfg.S3.Bucket)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "invalid port",
			content: `
server:
  port: 99999
`,
		},
		{
			name: "invalid log level",
			content: `
log:
  level: verbose
`,
		},
		{
			name: "invalid log format",
			content: `
log:
  format: xml
`,
		},
		{
			name: "invalid database type",
			content: `
auth:
  database:
    type: mysql
`,
		},
		{
			name: "invalid table name",
			content: `
auth:
  database:
    type: sqlite
    tables:
      users: "users; DROP TABLE x"
`,
		},
		{
			name: "presign expiry too long",
			content: `
s3:
  presign_expiry: 999999
`,
		},
		{
			name: "inline credential without password",
			content: `
auth:
  inline:
    - username: alice
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearAWSEnv(t)
			configPath := writeConfig(t, "config.yaml", tt.content)

			_, err := config.Load([]string{configPath}, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validate config")
		})
	}
}

func TestLoad_WithInlineCredentials(t *testing.T) {
	clearAWSEnv(t)

	configPath := writeConfig(t, "config.yaml", `
auth:
  file: users.csv
  inline:
    - username: alice
      password: s3cret
    - username: bob
      password: hunter2
`)

	cfg, err := config.Load([]string{configPath}, nil)
	require.NoError(t, err)

	require.Len(t, cfg.Auth.Inline, 2)
	assert.Equal(t, "alice", cfg.Auth.Inline[0].Username)
	assert.Equal(t, "s3cret", cfg.Auth.Inline[0].Password)
	assert.Equal(t, "bob", cfg.Auth.Inline[1].Username)

	static := cfg.Auth.Static()
	assert.Equal(t, "users.csv", static.File)
	assert.Len(t, static.Inline, 2)
}

func TestLoad_WithCORS(t *testing.T) {
	clearAWSEnv(t)

	configPath := writeConfig(t, "config.yaml", `
cors:
  enabled: true
  allowed_origins:
    - https://example.com
    - https://app.example.com
  allowed_methods:
    - GET
    - POST
  allowed_headers:
    - Authorization
  max_age: 600
`)

	cfg, err := config.Load([]string{configPath}, nil)
	require.NoError(t, err)

	assert.True(t, cfg.CORS.Enabled)
	assert.Equal(t, []string{"https://example.com", "https://app.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"GET", "POST"}, cfg.CORS.AllowedMethods)
	assert.Equal(t, []string{"Authorization"}, cfg.CORS.AllowedHeaders)
	assert.Equal(t, 600, cfg.CORS.MaxAge)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	clearAWSEnv(t)
	t.Setenv("BUCKETGATE_SERVER_PORT", "9090")
	t.Setenv("BUCKETGATE_LOG_LEVEL", "warn")
	t.Setenv("BUCKETGATE_METRICS_ENABLED", "true")

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_AWSEnvironmentVariables(t *testing.T) {
	clearAWSEnv(t)
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIAENV")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "envsecret")
	t.Setenv("AWS_REGION", "ap-south-1")
	t.Setenv("AWS_S3_BUCKET", "env-bucket")

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "AKIAENV", cfg.S3.AccessKey)
	assert.Equal(t, "envsecret", cfg.S3.SecretKey)
	assert.Equal(t, "ap-south-1", cfg.S3.Region)
	assert.Equal(t, "env-bucket", cfg.S3.Bucket)
	assert.NoError(t, cfg.S3.Validate())
}

func TestLoad_PrefixedEnvWinsOverAWS(t *testing.T) {
	clearAWSEnv(t)
	t.Setenv("AWS_S3_BUCKET", "aws-bucket")
	t.Setenv("BUCKETGATE_S3_BUCKET", "gate-bucket")

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "gate-bucket", cfg.S3.Bucket)
}

func TestLoad_Flags(t *testing.T) {
	clearAWSEnv(t)
	t.Setenv("BUCKETGATE_SERVER_PORT", "9090")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 8000, "")
	flags.String("bucket", "", "")
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse([]string{"--port", "7000", "--bucket", "flag-bucket"}))

	cfg, err := config.Load(nil, flags)
	require.NoError(t, err)

	// Flags override env
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "flag-bucket", cfg.S3.Bucket)
	// Unchanged flags do not override defaults
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestS3Config_Validate(t *testing.T) {
	full := config.S3Config{Bucket: "b", Region: "r", AccessKey: "a", SecretKey: "s"}
	assert.NoError(t, full.Validate())

	err := config.S3Config{Bucket: "b"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AWS_REGION")
	assert.Contains(t, err.Error(), "AWS_ACCESS_KEY_ID")
	assert.Contains(t, err.Error(), "AWS_SECRET_ACCESS_KEY")
	assert.NotContains(t, err.Error(), "AWS_S3_BUCKET")
}

func TestFromContext(t *testing.T) {
	_, err := config.FromContext(context.Background())
	assert.Error(t, err)

	cfg := &config.Config{}
	got, err := config.FromContext(config.WithContext(context.Background(), cfg))
	require.NoError(t, err)
	assert.Same(t, cfg, got)
}
