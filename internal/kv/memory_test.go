package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "a", "1"))
	require.NoError(t, store.Set(ctx, "a", "2"))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "2", got)

	require.NoError(t, store.Delete(ctx, "a"))
	require.NoError(t, store.Delete(ctx, "a"))
	_, err = store.Get(ctx, "a")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryKeysWithPrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.Set(ctx, "lock_1", "pending"))
	require.NoError(t, store.Set(ctx, "lock_2", "done"))
	require.NoError(t, store.Set(ctx, "other", "x"))

	keys, err := store.KeysWithPrefix(ctx, "lock_")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"lock_1", "lock_2"}, keys)

	keys, err = store.KeysWithPrefix(ctx, "nothing_")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
