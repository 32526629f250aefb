package cache

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Entry is a stored cache value with the time it was fetched
type Entry struct {
	StoredAt time.Time       `json:"stored_at"`
	Payload  json.RawMessage `json:"payload"`
}

// Store persists cache entries. Expiry is decided by the reader, so a
// Store never drops entries on its own account of TTL.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore keeps entries in process memory for the lifetime of the program
type MemoryStore struct {
	items *gocache.Cache
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	// no default expiration and no janitor: entries only go away on Delete
	return &MemoryStore{items: gocache.New(gocache.NoExpiration, 0)}
}

// Get returns the entry stored under key
func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	v, found := s.items.Get(key)
	if !found {
		return Entry{}, false, nil
	}
	return v.(Entry), true, nil
}

// Set stores the entry under key, replacing any previous one
func (s *MemoryStore) Set(_ context.Context, key string, entry Entry) error {
	s.items.Set(key, entry, gocache.NoExpiration)
	return nil
}

// Delete removes the entry stored under key
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.items.Delete(key)
	return nil
}

// Len returns the number of stored entries
func (s *MemoryStore) Len() int {
	return s.items.ItemCount()
}

var _ Store = (*MemoryStore)(nil)
