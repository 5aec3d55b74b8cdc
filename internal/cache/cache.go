package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// EvictCallback is called when an entry is evicted from the cache.
// Not all providers support eviction callbacks (e.g., Redis relies on server-side eviction).
type EvictCallback func(key string, value []byte)

// Cache defines the key-value backend shared by the result cache and the
// response cache. Implementations may use in-memory storage or external
// backends like Redis/Valkey.
type Cache interface {
	// Get retrieves a value by key. It returns ErrMiss when the key is absent;
	// any other error means the backend could not answer.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given time-to-live, overwriting any existing entry.
	// A ttl <= 0 uses the provider's configured default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Contains checks whether a key exists without refreshing it.
	Contains(ctx context.Context, key string) bool

	// Len returns the number of entries currently in the cache.
	// For external backends like Redis, this counts the keys under the provider's prefix.
	Len() int

	// Info returns the backend's operational counters keyed by their Redis INFO
	// names (keyspace_hits, keyspace_misses, total_commands_processed,
	// connected_clients, used_memory_human, ...).
	Info(ctx context.Context) (map[string]string, error)

	// Close releases any resources held by the cache (e.g., network connections).
	// For in-memory caches, this is a no-op.
	Close() error
}
