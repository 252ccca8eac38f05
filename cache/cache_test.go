package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stored values", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Set(ctx, "k", "v", time.Minute))

		v, ok, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v", v)
	})

	t.Run("expires values after ttl", func(t *testing.T) {
		store := NewMemoryStore()
		now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
		store.now = func() time.Time { return now }

		require.NoError(t, store.Set(ctx, "k", "v", time.Minute))
		now = now.Add(2 * time.Minute)

		_, ok, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("zero ttl never expires", func(t *testing.T) {
		store := NewMemoryStore()
		now := time.Now()
		store.now = func() time.Time { return now }

		require.NoError(t, store.Set(ctx, "k", "v", 0))
		now = now.Add(24 * time.Hour)

		_, ok, _ := store.Get(ctx, "k")
		assert.True(t, ok)
	})

	t.Run("delete removes the key", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Set(ctx, "k", "v", time.Minute))
		require.NoError(t, store.Delete(ctx, "k"))

		_, ok, _ := store.Get(ctx, "k")
		assert.False(t, ok)
	})
}
