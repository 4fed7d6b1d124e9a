package sqlite_test

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/sagarc03/bucketgate"
	"github.com/sagarc03/bucketgate/database/sqlite"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// openTestDB opens an in-memory database pinned to one connection, since
// every new connection to ":memory:" sees an empty database.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err, "open sqlite")
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// setupTestRepo creates a migrated repo with a unique table name for test isolation
func setupTestRepo(t *testing.T) (*sqlite.Repo, *sql.DB, bucketgate.Tables) {
	t.Helper()

	ctx := context.Background()
	db := openTestDB(t)
	tables := bucketgate.Tables{Users: "users_" + getRandomString(t)}

	require.NoError(t, sqlite.Migrate(ctx, db, tables), "failed to migrate")

	repo, err := sqlite.NewRepo(db, tables)
	require.NoError(t, err, "new repo")

	return repo, db, tables
}
