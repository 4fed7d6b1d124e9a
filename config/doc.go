// Package config provides configuration loading and validation for bucketgate.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (BUCKETGATE_ prefix, plus the AWS_* aliases)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
// # Environment Variables
//
// All config keys map to environment variables with the BUCKETGATE_ prefix:
//   - server.port → BUCKETGATE_SERVER_PORT
//   - auth.database.type → BUCKETGATE_AUTH_DATABASE_TYPE
//
// The bucket connection additionally honours the usual AWS names:
//   - s3.access_key → AWS_ACCESS_KEY_ID
//   - s3.secret_key → AWS_SECRET_ACCESS_KEY
//   - s3.region → AWS_REGION
//   - s3.bucket → AWS_S3_BUCKET
//
// S3 settings are not required by Load; call S3Config.Validate before
// connecting to the bucket.
package config
