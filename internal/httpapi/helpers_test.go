package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Belphemur/PropertyListings/internal/cache"
	"github.com/Belphemur/PropertyListings/internal/models"
	"github.com/Belphemur/PropertyListings/internal/services"
	"github.com/Belphemur/PropertyListings/internal/store"
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

// testEnv is a router over an in-memory store and cache sharing one clock.
type testEnv struct {
	clock   *testutil.Clock
	store   *store.MemoryStore
	backend cache.Cache
	handler http.Handler
}

func newTestEnv(t *testing.T, opts ...services.PropertyCacheOption) *testEnv {
	t.Helper()
	clock := testutil.NewClock(testutil.BaseTime)
	backend, err := cache.New("memory", cache.ProviderConfig{Size: 100, TTL: 24 * time.Hour, Now: clock.Now})
	if err != nil {
		t.Fatalf("Failed to create memory cache: %v", err)
	}
	t.Cleanup(func() { _ = backend.Close() })

	s := store.NewMemoryStore(testutil.SampleProperties()...)
	return &testEnv{
		clock:   clock,
		store:   s,
		backend: backend,
		handler: newTestHandler(s, backend, opts...),
	}
}

func newTestHandler(s store.PropertyStore, backend cache.Cache, opts ...services.PropertyCacheOption) http.Handler {
	srv := NewServer(
		services.NewPropertyCache(s, backend, opts...),
		services.NewCacheMetricsReporter(backend),
	)
	return NewRouter(srv, backend, DefaultCachePolicy())
}

func (e *testEnv) get(t *testing.T, path string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, e.handler, http.MethodGet, path, headers...)
}

func serve(t *testing.T, h http.Handler, method, path string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
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

// failingStore fails every query.
type failingStore struct {
	err error
}

func (f failingStore) ListAll(context.Context) ([]models.Property, error) { return nil, f.err }
func (f failingStore) Close() error                                       { return nil }
