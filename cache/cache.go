package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Fetcher loads a fresh value from the remote source
type Fetcher[T any] func(ctx context.Context) (T, error)

// RenderFunc receives the value of a background refresh once it lands
type RenderFunc[T any] func(T)

// Stats are the hit/miss counters of a Cache
type Stats struct {
	Hits            int `json:"hits"`
	Misses          int `json:"misses"`
	RefreshFailures int `json:"refreshFailures"`
}

// Cache is a stale-while-revalidate cache in front of a remote fetch.
//
// A valid entry is returned immediately and refreshed in the background; an
// expired or missing entry is fetched synchronously. Concurrent lookups of
// the same key may fetch twice; whichever write lands last wins.
type Cache[T any] struct {
	name   string
	store  Store
	logger *zap.Logger
	now    func() time.Time

	mutex           sync.Mutex
	hitCount        int
	missCount       int
	refreshFailures int

	refreshes sync.WaitGroup
}

// New creates a cache named name on top of store
func New[T any](name string, store Store, opts ...Option) *Cache[T] {
	o := newOptions(opts)
	return &Cache[T]{
		name:   name,
		store:  store,
		logger: o.logger.With(zap.String("cache", name)),
		now:    o.now,
	}
}

// Get returns the value cached under key.
//
// If an entry younger than ttl exists it is returned with fresh=false and
// fetch runs in the background; on success the entry is overwritten and
// render (if not nil) is called with the new value, on failure the stale
// entry stays and the error is only logged.
//
// Otherwise fetch runs synchronously: its value is stored and returned with
// fresh=true, and its error is returned to the caller.
func (c *Cache[T]) Get(ctx context.Context, key string, ttl time.Duration, fetch Fetcher[T], render RenderFunc[T]) (T, bool, error) {
	if value, age, ok := c.lookup(ctx, key, ttl); ok {
		c.mutex.Lock()
		c.hitCount++
		c.mutex.Unlock()

		c.logger.Debug("Cache HIT", zap.String("key", key), zap.Duration("age", age.Round(time.Millisecond)))

		c.refresh(ctx, key, fetch, render)
		return value, false, nil
	}

	c.mutex.Lock()
	c.missCount++
	c.mutex.Unlock()

	c.logger.Debug("Cache MISS, fetching fresh data", zap.String("key", key))

	value, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, false, fmt.Errorf("%s: fetch %s: %w", c.name, key, err)
	}
	c.put(ctx, key, value)

	return value, true, nil
}

// lookup returns the cached value if it exists and is younger than ttl.
// Expired or unreadable entries are evicted.
func (c *Cache[T]) lookup(ctx context.Context, key string, ttl time.Duration) (T, time.Duration, bool) {
	var zero T

	entry, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		return zero, 0, false
	}
	if !found {
		return zero, 0, false
	}

	age := c.now().Sub(entry.StoredAt)
	if age >= ttl {
		c.evict(ctx, key)
		return zero, age, false
	}

	var value T
	if err := json.Unmarshal(entry.Payload, &value); err != nil {
		c.logger.Warn("Dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		c.evict(ctx, key)
		return zero, age, false
	}

	return value, age, true
}

// refresh fetches key in the background. It is detached from the caller's
// cancellation so that a finished request does not abort the refresh.
func (c *Cache[T]) refresh(ctx context.Context, key string, fetch Fetcher[T], render RenderFunc[T]) {
	refreshCtx := context.WithoutCancel(ctx)

	c.refreshes.Add(1)
	go func() {
		defer c.refreshes.Done()

		value, err := fetch(refreshCtx)
		if err != nil {
			c.mutex.Lock()
			c.refreshFailures++
			c.mutex.Unlock()

			c.logger.Warn("Background refresh failed, keeping stale value", zap.String("key", key), zap.Error(err))
			return
		}

		c.put(refreshCtx, key, value)
		if render != nil {
			render(value)
		}
	}()
}

func (c *Cache[T]) put(ctx context.Context, key string, value T) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Error("Failed to encode cache value", zap.String("key", key), zap.Error(err))
		return
	}

	entry := Entry{StoredAt: c.now(), Payload: payload}
	if err := c.store.Set(ctx, key, entry); err != nil {
		c.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache[T]) evict(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, key); err != nil {
		c.logger.Warn("Cache eviction failed", zap.String("key", key), zap.Error(err))
	}
}

// Wait blocks until all background refreshes started so far have finished
func (c *Cache[T]) Wait() {
	c.refreshes.Wait()
}

// Stats returns the cache's hit and miss counters
func (c *Cache[T]) Stats() Stats {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return Stats{
		Hits:            c.hitCount,
		Misses:          c.missCount,
		RefreshFailures: c.refreshFailures,
	}
}
