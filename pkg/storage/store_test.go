package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoltStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store, err := OpenBolt(ctx, filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	exerciseStore(t, store)
	require.NoError(t, store.Ping(ctx))
}

func TestBoltStoreRejectsEmptyPath(t *testing.T) {
	_, err := OpenBolt(context.Background(), "", nil)
	require.Error(t, err)
}

func TestBoltStoreHonoursCancelledContext(t *testing.T) {
	store, err := OpenBolt(context.Background(), filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = store.Get(ctx, "k")
	require.ErrorIs(t, err, context.Canceled)
}

func TestBoltStoreExpiresKeysWithTTL(t *testing.T) {
	ctx := context.Background()
	store, err := OpenBolt(ctx, filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Put(ctx, "cart:a", []byte("a"), time.Hour))
	require.NoError(t, store.Put(ctx, "cart:b", []byte("b"), 3*time.Hour))
	require.NoError(t, store.Put(ctx, "grameenMartProducts", []byte("[]"), 0))

	now = now.Add(2 * time.Hour)
	_, found, err := store.Get(ctx, "cart:a")
	require.NoError(t, err)
	assert.False(t, found)
	_, found, err = store.Get(ctx, "cart:b")
	require.NoError(t, err)
	assert.True(t, found)

	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	// rewriting without a ttl drops the deadline
	require.NoError(t, store.Put(ctx, "cart:b", []byte("b2"), 0))
	now = now.Add(24 * time.Hour)
	value, found, err := store.Get(ctx, "cart:b")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("b2"), value)

	purged, err = store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, purged)
	_, found, err = store.Get(ctx, "grameenMartProducts")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestRedisStoreNamespacesKeys(t *testing.T) {
	fake := &fakeRedis{data: map[string][]byte{}}
	store := NewRedisStore(fake)

	exerciseStore(t, store)

	require.NoError(t, store.Put(context.Background(), "grameenMartBanner", []byte(`"hello"`), time.Minute))
	assert.Contains(t, fake.data, "gm:blob:grameenMartBanner")
	assert.Equal(t, time.Minute, fake.lastTTL)
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	value, found, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, value)

	require.NoError(t, store.Put(ctx, "k", []byte("v1"), 0))
	require.NoError(t, store.Put(ctx, "k", []byte("v2"), 0))
	value, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v2"), value)

	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))
	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

type fakeRedis struct {
	data    map[string][]byte
	lastTTL time.Duration
}

func (f *fakeRedis) GetBytes(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.data[key] = append([]byte(nil), value.([]byte)...)
	f.lastTTL = ttl
	return nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeRedis) Ping(context.Context) error { return nil }

func (f *fakeRedis) BlobKey(name string) string { return "gm:blob:" + name }
