package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSaveLoad(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", []byte("payload"), time.Now().Add(time.Hour)))

	data, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	data, err = store.Load(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestMemoryStoreCopiesData(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	buf := []byte("original")
	require.NoError(t, store.Save(ctx, "a", buf, time.Now().Add(time.Hour)))
	buf[0] = 'X'

	data, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), data)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", []byte("x"), time.Now().Add(-time.Second)))

	data, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestMemoryStoreTouch(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", []byte("x"), time.Now().Add(10*time.Millisecond)))
	require.NoError(t, store.Touch(ctx, "a", time.Now().Add(time.Hour)))

	time.Sleep(20 * time.Millisecond)
	data, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", []byte("x"), time.Now().Add(time.Hour)))
	require.NoError(t, store.Delete(ctx, "a"))
	require.NoError(t, store.Delete(ctx, "a"))

	data, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestMemoryStoreSweep(t *testing.T) {
	store := NewMemoryStore(WithSweepInterval(5 * time.Millisecond))
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "old", []byte("x"), time.Now().Add(-time.Second)))
	require.NoError(t, store.Save(ctx, "new", []byte("y"), time.Now().Add(time.Hour)))

	assert.Eventually(t, func() bool {
		return store.Len() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryStoreClosed(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	ctx := context.Background()
	assert.Error(t, store.Save(ctx, "a", []byte("x"), time.Now().Add(time.Hour)))
	_, err := store.Load(ctx, "a")
	assert.Error(t, err)
	assert.Error(t, store.Delete(ctx, "a"))
	assert.Error(t, store.Touch(ctx, "a", time.Now()))
}
