package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/smallnest/medgraph/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqliteSnapshotStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewSqliteSnapshotStore(SqliteOptions{Path: filepath.Join(t.TempDir(), "kg.db")})
	require.NoError(t, err)
	defer s.Close()

	t.Run("missing", func(t *testing.T) {
		_, err := s.Get(ctx, "kg_cache.json")
		assert.ErrorIs(t, err, store.ErrNotFound)
		ok, err := s.Exists(ctx, "kg_cache.json")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("upsert", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "kg_cache.json", []byte("v1")))
		require.NoError(t, s.Put(ctx, "kg_cache.json", []byte("v2")))

		got, err := s.Get(ctx, "kg_cache.json")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), got)

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "kg_cache.json", list[0].Key)
		assert.Equal(t, 2, list[0].Size)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "kg_cache.json"))
		ok, err := s.Exists(ctx, "kg_cache.json")
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}
