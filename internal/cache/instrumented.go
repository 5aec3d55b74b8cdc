package cache

import (
	"context"
	"errors"
	"time"
)

// instrumentedCache wraps a Cache and automatically records Prometheus metrics
// for hits, misses, backend errors, evictions, and current entry count under
// the given group label. All metric tracking lives in the cache layer so
// callers do not need to manage it.
type instrumentedCache struct {
	inner Cache
	group string
}

// newInstrumentedCache wraps inner with metric instrumentation for the given group.
// A lazy entries collector is registered that queries inner.Len() at scrape time,
// which is correct for backends (e.g., Redis) where TTL expiry removes entries
// outside the application's control.
func newInstrumentedCache(inner Cache, group string) *instrumentedCache {
	registerEntriesCollector(group, inner.Len)
	return &instrumentedCache{inner: inner, group: group}
}

func (c *instrumentedCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.inner.Get(ctx, key)
	switch {
	case err == nil:
		HitsTotal.WithLabelValues(c.group).Inc()
	case errors.Is(err, ErrMiss):
		MissesTotal.WithLabelValues(c.group).Inc()
	default:
		ErrorsTotal.WithLabelValues(c.group, "get").Inc()
	}
	return val, err
}

func (c *instrumentedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.inner.Set(ctx, key, value, ttl)
	if err != nil {
		ErrorsTotal.WithLabelValues(c.group, "set").Inc()
	}
	return err
}

func (c *instrumentedCache) Contains(ctx context.Context, key string) bool {
	return c.inner.Contains(ctx, key)
}

func (c *instrumentedCache) Len() int {
	return c.inner.Len()
}

func (c *instrumentedCache) Info(ctx context.Context) (map[string]string, error) {
	info, err := c.inner.Info(ctx)
	if err != nil {
		ErrorsTotal.WithLabelValues(c.group, "info").Inc()
	}
	return info, err
}

// Close unregisters the entries collector and closes the underlying cache.
func (c *instrumentedCache) Close() error {
	unregisterEntriesCollector(c.group)
	return c.inner.Close()
}
