// Package database stores gateway users in SQLite or PostgreSQL and
// authenticates requests against them.
//
// Passwords are kept as argon2id hashes with a per-user random salt.
//
// # Usage
//
//	cfg := database.Config{
//	    Type:   "sqlite",
//	    DSN:    "bucketgate.db",
//	    Tables: bucketgate.Tables{Users: "bucketgate_users"},
//	}
//
//	repo, cleanup, err := database.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cleanup()
//
//	auth := database.NewAuthenticator(repo)
//
// Connect opens the connection, runs migrations and validates the schema.
//
// # Subpackages
//
//   - database/postgres: PostgreSQL implementation using pgx
//   - database/sqlite: SQLite implementation using modernc.org/sqlite
package database
