package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testEntry() Entry {
	return Entry{
		StoredAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Payload:  json.RawMessage(`{"city":"Kraków"}`),
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "k", testEntry()))
	entry, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, testEntry(), entry)
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Delete(ctx, "k"))
	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func newTestRedisStore(t *testing.T, options ...RedisOption) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreWithClient(client, options...)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)

	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "k", testEntry()))
	assert.True(t, mr.Exists("portal:k"))
	assert.Equal(t, DefaultRetention, mr.TTL("portal:k"))

	entry, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, testEntry().StoredAt.Equal(entry.StoredAt))
	assert.JSONEq(t, string(testEntry().Payload), string(entry.Payload))

	require.NoError(t, store.Delete(ctx, "k"))
	assert.False(t, mr.Exists("portal:k"))
}

func TestRedisStore_Options(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, WithPrefix("widgets:"), WithRetention(time.Hour))

	require.NoError(t, store.Set(ctx, "k", testEntry()))
	assert.True(t, mr.Exists("widgets:k"))
	assert.Equal(t, time.Hour, mr.TTL("widgets:k"))
}

func TestRedisStore_RetentionExpiresEntries(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, WithRetention(time.Minute))

	require.NoError(t, store.Set(ctx, "k", testEntry()))
	mr.FastForward(2 * time.Minute)

	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)

	require.NoError(t, mr.Set("portal:k", "{not json"))
	_, _, err := store.Get(ctx, "k")
	assert.Error(t, err)
}

func TestNewRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewRedisStore(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer store.Close()

	_, err = NewRedisStore(context.Background(), "not-a-url")
	assert.Error(t, err)
}

func TestCache_SurvivesRestartWithRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	clock := newFakeClock()

	first := New[int]("test", NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})),
		WithLogger(zaptest.NewLogger(t)), WithClock(clock.Now))
	src := &counter{}
	_, _, err := first.Get(ctx, "k", time.Minute, src.fetch, nil)
	require.NoError(t, err)

	// a new process sees the entry written by the previous one
	second := New[int]("test", NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})),
		WithLogger(zaptest.NewLogger(t)), WithClock(clock.Now))
	value, fresh, err := second.Get(ctx, "k", time.Minute, src.fetch, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, value)
	assert.False(t, fresh)
	second.Wait()
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	store, closeStore, err := OpenStore(ctx, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
	assert.NoError(t, closeStore())

	mr := miniredis.RunT(t)
	store, closeStore, err = OpenStore(ctx, "redis://"+mr.Addr(), WithPrefix("test:"))
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, store)

	require.NoError(t, store.Set(ctx, "k", testEntry()))
	assert.True(t, mr.Exists("test:k"))
	assert.NoError(t, closeStore())

	_, _, err = OpenStore(ctx, "redis://127.0.0.1:1")
	assert.Error(t, err)
}
