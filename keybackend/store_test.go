package keybackend_test

import (
	"context"
	"testing"

	"github.com/sagarc03/bucketgate"
	"github.com/sagarc03/bucketgate/keybackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthenticator_InlineOnly(t *testing.T) {
	t.Parallel()

	auth, err := keybackend.NewAuthenticator(keybackend.AuthConfig{
		Inline: []bucketgate.Credential{
			{Username: "alice", Password: "a"},
			{Username: "bob", Password: "b"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, auth.Len())
	_, err = auth.Authenticate(context.Background(), "bob", "b")
	assert.NoError(t, err)
}

func TestNewAuthenticator_FileOnly(t *testing.T) {
	t.Parallel()

	path := writeTestFile(t, "users.csv", "username,password\ncarol,c\n")

	auth, err := keybackend.NewAuthenticator(keybackend.AuthConfig{File: path})
	require.NoError(t, err)

	_, err = auth.Authenticate(context.Background(), "carol", "c")
	assert.NoError(t, err)
}

func TestNewAuthenticator_FileOverridesInline(t *testing.T) {
	t.Parallel()

	path := writeTestFile(t, "users.csv", "username,password\nalice,from-file\n")

	auth, err := keybackend.NewAuthenticator(keybackend.AuthConfig{
		Inline: []bucketgate.Credential{
			{Username: "alice", Password: "inline"},
			{Username: "bob", Password: "b"},
		},
		File: path,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"alice", "bob"}, auth.Usernames())

	_, err = auth.Authenticate(context.Background(), "alice", "from-file")
	assert.NoError(t, err)

	_, err = auth.Authenticate(context.Background(), "alice", "inline")
	assert.ErrorIs(t, err, bucketgate.ErrUnauthorized)
}

func TestNewAuthenticator_SkipsEmptyInline(t *testing.T) {
	t.Parallel()

	auth, err := keybackend.NewAuthenticator(keybackend.AuthConfig{
		Inline: []bucketgate.Credential{{Username: "alice"}, {Password: "x"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, auth.Len())
}

func TestNewAuthenticator_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := keybackend.NewAuthenticator(keybackend.AuthConfig{File: "/nonexistent/users.csv"})
	assert.Error(t, err)
}

func TestNewAuthenticator_RejectsSlashInlineUsername(t *testing.T) {
	t.Parallel()

	_, err := keybackend.NewAuthenticator(keybackend.AuthConfig{
		Inline: []bucketgate.Credential{{Username: "alice/docs", Password: "pw"}},
	})

	assert.ErrorIs(t, err, bucketgate.ErrInvalidInput)
}
