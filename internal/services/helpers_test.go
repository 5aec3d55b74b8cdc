package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Belphemur/PropertyListings/internal/cache"
	"github.com/Belphemur/PropertyListings/internal/models"
	"github.com/Belphemur/PropertyListings/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func getCounterVecValue(cv *prometheus.CounterVec, labels ...string) float64 {
	c, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0
	}
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func getGaugeValue(g prometheus.Gauge) float64 {
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}

// newMemoryBackend returns a memory cache driven by clock.
func newMemoryBackend(t *testing.T, clock *testutil.Clock) cache.Cache {
	t.Helper()
	c, err := cache.New("memory", cache.ProviderConfig{Size: 100, TTL: 24 * time.Hour, Now: clock.Now})
	if err != nil {
		t.Fatalf("Failed to create memory cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// failingCache answers every command with err.
type failingCache struct {
	err error
}

func (f failingCache) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return f.err
}
func (f failingCache) Contains(context.Context, string) bool { return false }
func (f failingCache) Len() int                              { return 0 }
func (f failingCache) Info(context.Context) (map[string]string, error) {
	return nil, f.err
}
func (f failingCache) Close() error { return nil }

// staticInfoCache is a backend whose Info reply is fixed.
type staticInfoCache struct {
	failingCache
	info map[string]string
}

func (s staticInfoCache) Info(context.Context) (map[string]string, error) {
	return s.info, nil
}

// failingStore fails every query.
type failingStore struct {
	err error
}

func (f failingStore) ListAll(context.Context) ([]models.Property, error) { return nil, f.err }
func (f failingStore) Close() error                                       { return nil }

// blockingStore holds every ListAll until release is closed.
type blockingStore struct {
	props   []models.Property
	started chan struct{}
	release chan struct{}

	mu      sync.Mutex
	queries int
}

func newBlockingStore(props []models.Property) *blockingStore {
	return &blockingStore{
		props:   props,
		started: make(chan struct{}, 64),
		release: make(chan struct{}),
	}
}

func (b *blockingStore) ListAll(ctx context.Context) ([]models.Property, error) {
	b.mu.Lock()
	b.queries++
	b.mu.Unlock()
	b.started <- struct{}{}
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return append([]models.Property(nil), b.props...), nil
}

func (b *blockingStore) Queries() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queries
}

func (b *blockingStore) Close() error { return nil }
