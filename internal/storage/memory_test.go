package storage_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-journal-backend/internal/storage"
)

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "k", []byte("v1")))
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)
}

func TestMemoryStoreUpdateSeesCurrentValue(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "k", []byte("a")))

	err := store.Update(ctx, "k", func(current []byte) ([]byte, error) {
		return append(current, 'b'), nil
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("ab"), got)
}

func TestMemoryStoreUpdateAbsentKey(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	err := store.Update(ctx, "fresh", func(current []byte) ([]byte, error) {
		assert.Nil(t, current)
		return []byte("x"), nil
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)
}

func TestMemoryStoreConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "counter", []byte{}))

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Update(ctx, "counter", func(current []byte) ([]byte, error) {
				return append(current, 'x'), nil
			})
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, "counter")
	require.NoError(t, err)
	assert.Len(t, got, writers)
}
