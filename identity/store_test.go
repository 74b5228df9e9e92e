package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterOrLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a new identity on first call", func(t *testing.T) {
		s := NewStore(nil)
		id, created, err := s.RegisterOrLogin(ctx, "client-1", "Alice", "alice@example.com")

		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEmpty(t, id.ID)
		assert.NotEmpty(t, id.SecretHash, "placeholder secret is stored hashed")
		assert.Equal(t, "Alice", id.Name)
	})

	t.Run("same email returns the same identity and does not grow the list", func(t *testing.T) {
		s := NewStore(nil)
		first, created, err := s.RegisterOrLogin(ctx, "client-1", "Alice", "alice@example.com")
		require.NoError(t, err)
		require.True(t, created)

		second, created, err := s.RegisterOrLogin(ctx, "client-1", "Alice Again", "ALICE@EXAMPLE.COM")
		require.NoError(t, err)
		assert.False(t, created, "case-insensitive email match must reuse the record")
		assert.Equal(t, first.ID, second.ID)

		users, err := s.list(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})

	t.Run("rejects blank name or email", func(t *testing.T) {
		s := NewStore(nil)
		_, _, err := s.RegisterOrLogin(ctx, "client-1", "  ", "alice@example.com")
		assert.Error(t, err)
		_, _, err = s.RegisterOrLogin(ctx, "client-1", "Alice", "")
		assert.Error(t, err)
	})
}

func TestCurrentAndLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("current returns nil before any login", func(t *testing.T) {
		s := NewStore(nil)
		cur, err := s.Current(ctx, "client-1")
		require.NoError(t, err)
		assert.Nil(t, cur)
	})

	t.Run("logout clears the marker but keeps the record", func(t *testing.T) {
		s := NewStore(nil)
		id, _, err := s.RegisterOrLogin(ctx, "client-1", "Bob", "bob@example.com")
		require.NoError(t, err)

		cur, err := s.Current(ctx, "client-1")
		require.NoError(t, err)
		require.NotNil(t, cur)
		assert.Equal(t, id.ID, cur.ID)

		require.NoError(t, s.Logout(ctx, "client-1"))

		cur, err = s.Current(ctx, "client-1")
		require.NoError(t, err)
		assert.Nil(t, cur)

		// Logging in again finds the surviving record.
		again, created, err := s.RegisterOrLogin(ctx, "client-1", "Bob", "bob@example.com")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, id.ID, again.ID)
	})

	t.Run("clients hold independent markers", func(t *testing.T) {
		s := NewStore(nil)
		_, _, err := s.RegisterOrLogin(ctx, "client-a", "Cara", "cara@example.com")
		require.NoError(t, err)

		cur, err := s.Current(ctx, "client-b")
		require.NoError(t, err)
		assert.Nil(t, cur)
	})
}
