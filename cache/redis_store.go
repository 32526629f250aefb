package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRetention bounds how long a RedisStore keeps an entry around
const DefaultRetention = 24 * time.Hour

// RedisStore keeps entries in Redis so they survive restarts
type RedisStore struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
}

// RedisOption configures a RedisStore
type RedisOption func(*RedisStore)

// WithPrefix sets the key prefix used for every entry
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// WithRetention sets the Redis expiry of stored entries; 0 keeps them forever
func WithRetention(d time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.retention = d
	}
}

// NewRedisStore connects to the Redis server at url (redis://[:pass@]host:port/db)
func NewRedisStore(ctx context.Context, url string, options ...RedisOption) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, options...), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, options ...RedisOption) *RedisStore {
	s := &RedisStore{
		client:    client,
		prefix:    "portal:",
		retention: DefaultRetention,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *RedisStore) key(key string) string {
	return s.prefix + key
}

// Get returns the entry stored under key
func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var entry Entry
	if err := json.Unmarshal(val, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("failed to decode entry %s: %w", key, err)
	}
	return entry, true, nil
}

// Set stores the entry under key, replacing any previous one
func (s *RedisStore) Set(ctx context.Context, key string, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode entry %s: %w", key, err)
	}
	if err := s.client.Set(ctx, s.key(key), data, s.retention).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes the entry stored under key
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)

// OpenStore returns a RedisStore when redisURL is set and a MemoryStore
// otherwise. The returned close function releases the store's resources.
func OpenStore(ctx context.Context, redisURL string, options ...RedisOption) (Store, func() error, error) {
	if redisURL == "" {
		return NewMemoryStore(), func() error { return nil }, nil
	}

	store, err := NewRedisStore(ctx, redisURL, options...)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}
