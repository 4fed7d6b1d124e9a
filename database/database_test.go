package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sagarc03/bucketgate"
	"github.com/sagarc03/bucketgate/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T) database.Config {
	t.Helper()
	return database.Config{
		Type:   "sqlite",
		DSN:    filepath.Join(t.TempDir(), "users.db"),
		Tables: bucketgate.Tables{Users: "users"},
	}
}

func setupTestRepo(t *testing.T) bucketgate.UserRepo {
	t.Helper()

	repo, cleanup, err := database.Connect(context.Background(), newTestConfig(t))
	require.NoError(t, err)
	t.Cleanup(cleanup)

	return repo
}

func TestConnect_SQLite(t *testing.T) {
	t.Parallel()

	repo := setupTestRepo(t)

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestConnect_SQLiteInMemory(t *testing.T) {
	t.Parallel()

	repo, cleanup, err := database.Connect(context.Background(), database.Config{
		Type:   "sqlite",
		DSN:    ":memory:",
		Tables: bucketgate.Tables{Users: "users"},
	})
	require.NoError(t, err)
	defer cleanup()

	_, err = database.AddUser(context.Background(), repo, "alice", "s3cret")
	require.NoError(t, err)
}

func TestConnect_ReopenKeepsUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := newTestConfig(t)

	repo, cleanup, err := database.Connect(ctx, cfg)
	require.NoError(t, err)
	_, err = database.AddUser(ctx, repo, "alice", "s3cret")
	require.NoError(t, err)
	cleanup()

	repo, cleanup, err = database.Connect(ctx, cfg)
	require.NoError(t, err)
	defer cleanup()

	_, err = repo.Get(ctx, "alice")
	assert.NoError(t, err)
}

func TestConnect_InvalidType(t *testing.T) {
	t.Parallel()

	_, _, err := database.Connect(context.Background(), database.Config{
		Type:   "invalid",
		DSN:    "whatever",
		Tables: bucketgate.Tables{Users: "users"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestConnect_InvalidTableName(t *testing.T) {
	t.Parallel()

	_, _, err := database.Connect(context.Background(), database.Config{
		Type:   "sqlite",
		DSN:    ":memory:",
		Tables: bucketgate.Tables{Users: "Robert'); DROP TABLE students;--"},
	})
	assert.Error(t, err)
}

func TestConfig_Enabled(t *testing.T) {
	t.Parallel()

	assert.False(t, database.Config{}.Enabled())
	assert.True(t, database.Config{Type: "sqlite"}.Enabled())
}
