package cache

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultMemoryTTL = 24 * time.Hour

func init() {
	Register("memory", newMemoryCache)
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// memoryCache wraps hashicorp/golang-lru/v2/expirable to implement the Cache
// interface. The LRU's own TTL caps every entry; the per-Set ttl is enforced
// on read against the configured clock. Counters mirror the Redis INFO fields
// so the metrics reporter works the same against either provider.
type memoryCache struct {
	inner      *lru.LRU[string, memoryEntry]
	defaultTTL time.Duration
	now        func() time.Time

	hits     atomic.Int64
	misses   atomic.Int64
	commands atomic.Int64
}

func newMemoryCache(cfg ProviderConfig) (Cache, error) {
	maxTTL := cfg.TTL
	if maxTTL <= 0 {
		maxTTL = defaultMemoryTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	var onEvict func(string, memoryEntry)
	if cfg.OnEvict != nil {
		onEvict = func(key string, e memoryEntry) {
			cfg.OnEvict(key, e.value)
		}
	}
	return &memoryCache{
		inner:      lru.NewLRU[string, memoryEntry](cfg.Size, onEvict, maxTTL),
		defaultTTL: maxTTL,
		now:        now,
	}, nil
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.commands.Add(1)
	e, ok := m.inner.Get(key)
	if ok && !m.now().Before(e.expiresAt) {
		m.inner.Remove(key)
		ok = false
	}
	if !ok {
		m.misses.Add(1)
		return nil, ErrMiss
	}
	m.hits.Add(1)
	return e.value, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.commands.Add(1)
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	m.inner.Add(key, memoryEntry{value: value, expiresAt: m.now().Add(ttl)})
	return nil
}

func (m *memoryCache) Contains(_ context.Context, key string) bool {
	m.commands.Add(1)
	e, ok := m.inner.Peek(key)
	return ok && m.now().Before(e.expiresAt)
}

func (m *memoryCache) Len() int {
	return m.inner.Len()
}

// Info reports the same counter names Redis exposes in its INFO reply.
func (m *memoryCache) Info(_ context.Context) (map[string]string, error) {
	m.commands.Add(1)
	var used int64
	for _, key := range m.inner.Keys() {
		if e, ok := m.inner.Peek(key); ok {
			used += int64(len(key) + len(e.value))
		}
	}
	return map[string]string{
		"keyspace_hits":            strconv.FormatInt(m.hits.Load(), 10),
		"keyspace_misses":          strconv.FormatInt(m.misses.Load(), 10),
		"total_commands_processed": strconv.FormatInt(m.commands.Load(), 10),
		"connected_clients":        "1",
		"used_memory":              strconv.FormatInt(used, 10),
		"used_memory_human":        HumanBytes(used),
		"keys":                     strconv.Itoa(m.inner.Len()),
	}, nil
}

func (m *memoryCache) Close() error {
	return nil
}
