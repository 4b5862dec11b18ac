package session

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// SQLite in-memory databases are per-connection.
	db.SetMaxOpenConns(1)

	store := NewSQLStore(db, WithSQLSweepInterval(0))
	require.NoError(t, store.EnsureSchema(context.Background()))
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLStoreSaveLoad(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", []byte("payload"), time.Now().Add(time.Hour)))

	data, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	data, err = store.Load(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestSQLStoreUpsert(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", []byte("v1"), time.Now().Add(time.Hour)))
	require.NoError(t, store.Save(ctx, "a", []byte("v2"), time.Now().Add(time.Hour)))

	data, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
}

func TestSQLStoreExpiry(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", []byte("x"), time.Now().Add(-time.Second)))

	data, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestSQLStoreTouch(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", []byte("x"), time.Now().Add(10*time.Millisecond)))
	require.NoError(t, store.Touch(ctx, "a", time.Now().Add(time.Hour)))

	time.Sleep(20 * time.Millisecond)
	data, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)
}

func TestSQLStoreDelete(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", []byte("x"), time.Now().Add(time.Hour)))
	require.NoError(t, store.Delete(ctx, "a"))
	require.NoError(t, store.Delete(ctx, "a"))

	data, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestSQLStoreCloseConcurrent(t *testing.T) {
	store := newSQLiteStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Close())
		}()
	}
	wg.Wait()
	assert.NoError(t, store.Close())
}

func TestSQLStoreWithManager(t *testing.T) {
	store := newSQLiteStore(t)
	mgr := NewManager(store, time.Hour)
	ctx := context.Background()

	sess := NewSession()
	require.NoError(t, sess.Set("user", "lin"))
	require.NoError(t, mgr.Persist(ctx, sess))

	loaded, existed, err := mgr.Resolve(ctx, sess.ID())
	require.NoError(t, err)
	require.True(t, existed)
	assert.Equal(t, "lin", loaded.GetString("user"))
}
