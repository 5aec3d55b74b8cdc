package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Belphemur/PropertyListings/internal/cache"
	"github.com/Belphemur/PropertyListings/internal/metrics"
	"github.com/Belphemur/PropertyListings/internal/models"
	"github.com/Belphemur/PropertyListings/internal/services"
	"github.com/Belphemur/PropertyListings/internal/store"
	"github.com/Belphemur/PropertyListings/internal/testutil"
)

func listingIDs(t *testing.T, rec *httptest.ResponseRecorder) []int64 {
	t.Helper()
	var body models.PropertyListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	ids := make([]int64, len(body.Data))
	for i, r := range body.Data {
		ids[i] = r.ID
	}
	return ids
}

func TestCachePage_HitAfterMiss(t *testing.T) {
	env := newTestEnv(t)
	hitsBefore := getCounterVecValue(metrics.ResponseCacheLookupsTotal, "hit")

	first := env.get(t, "/properties/")
	if got := first.Header().Get(headerXCache); got != cacheMiss {
		t.Errorf("Expected X-Cache MISS on first request, got %q", got)
	}
	if got := first.Header().Get("Cache-Control"); got != "max-age=900" {
		t.Errorf("Expected Cache-Control max-age=900, got %q", got)
	}

	second := env.get(t, "/properties/")
	if got := second.Header().Get(headerXCache); got != cacheHit {
		t.Errorf("Expected X-Cache HIT on second request, got %q", got)
	}
	if got := second.Header().Get("Cache-Control"); got != "max-age=900" {
		t.Errorf("Expected Cache-Control max-age=900 on hit, got %q", got)
	}
	if got := second.Header().Get("Content-Type"); got != contentTypeJSON {
		t.Errorf("Expected stored Content-Type, got %q", got)
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("Expected identical bodies:\n%s\n%s", first.Body.String(), second.Body.String())
	}
	if got := getCounterVecValue(metrics.ResponseCacheLookupsTotal, "hit") - hitsBefore; got != 1 {
		t.Errorf("Expected 1 recorded response cache hit, got %v", got)
	}
}

func TestCachePage_RoutesAreCachedSeparately(t *testing.T) {
	env := newTestEnv(t)

	env.get(t, "/properties/")
	page := env.get(t, "/properties/page/")
	if got := page.Header().Get(headerXCache); got != cacheMiss {
		t.Errorf("Expected the HTML page to have its own entry, got X-Cache %q", got)
	}
	query := env.get(t, "/properties/?sort=price")
	if got := query.Header().Get(headerXCache); got != cacheMiss {
		t.Errorf("Expected a distinct query string to miss, got X-Cache %q", got)
	}
	if got := env.get(t, "/properties/?sort=price").Header().Get(headerXCache); got != cacheHit {
		t.Errorf("Expected the repeated query to hit, got X-Cache %q", got)
	}
}

// The response cache keeps serving its copy even after the result cache
// has re-derived fresher data, until its own TTL runs out.
func TestCachePage_LayeringWithResultCache(t *testing.T) {
	env := newTestEnv(t, services.WithResultTTL(time.Minute))

	if ids := listingIDs(t, env.get(t, "/properties/")); len(ids) != 3 {
		t.Fatalf("Expected 3 properties, got %v", ids)
	}

	env.store.Replace(testutil.SampleProperties()[:1])

	// The result cache has expired and a direct read sees the new data.
	env.clock.Advance(2 * time.Minute)
	page := env.get(t, "/properties/page/")
	if !strings.Contains(page.Body.String(), `id="total-properties">1<`) {
		t.Fatalf("Expected the HTML page to re-derive 1 property, got %s", page.Body.String())
	}

	// The JSON response is still the stored one.
	env.clock.Advance(15*time.Minute - 2*time.Minute - time.Second)
	rec := env.get(t, "/properties/")
	if rec.Header().Get(headerXCache) != cacheHit {
		t.Fatalf("Expected a response cache hit before 900s, got %q", rec.Header().Get(headerXCache))
	}
	if ids := listingIDs(t, rec); len(ids) != 3 {
		t.Errorf("Expected the stale 3-property response, got %v", ids)
	}

	env.clock.Advance(time.Second)
	rec = env.get(t, "/properties/")
	if rec.Header().Get(headerXCache) != cacheMiss {
		t.Fatalf("Expected a response cache miss at 900s, got %q", rec.Header().Get(headerXCache))
	}
	if ids := listingIDs(t, rec); len(ids) != 1 || ids[0] != 1 {
		t.Errorf("Expected the fresh listing [1], got %v", ids)
	}
}

func TestCachePage_ResultCacheOutlivesResponseCache(t *testing.T) {
	env := newTestEnv(t)

	env.get(t, "/properties/")
	env.store.Replace(nil)

	// Past the response TTL but inside the result TTL: the handler runs
	// again and is served from the result cache.
	env.clock.Advance(15 * time.Minute)
	rec := env.get(t, "/properties/")
	if rec.Header().Get(headerXCache) != cacheMiss {
		t.Fatalf("Expected a response cache miss, got %q", rec.Header().Get(headerXCache))
	}
	if ids := listingIDs(t, rec); len(ids) != 3 {
		t.Errorf("Expected the result cache snapshot of 3, got %v", ids)
	}
	if env.store.Queries() != 1 {
		t.Errorf("Expected a single store query, got %d", env.store.Queries())
	}

	env.clock.Advance(45 * time.Minute)
	rec = env.get(t, "/properties/")
	if ids := listingIDs(t, rec); len(ids) != 0 {
		t.Errorf("Expected the empty store after both TTLs, got %v", ids)
	}
}

func TestCachePage_BackendDownFailsOpen(t *testing.T) {
	s := testutil.SampleProperties()
	h := newTestHandler(store.NewMemoryStore(s...), failingCache{err: errors.New("connection refused")})
	errorsBefore := getCounterVecValue(metrics.ResponseCacheLookupsTotal, "error")

	for i := 0; i < 2; i++ {
		rec := serve(t, h, http.MethodGet, "/properties/")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200 with the cache down, got %d", rec.Code)
		}
		if got := rec.Header().Get(headerXCache); got != cacheMiss {
			t.Errorf("Expected X-Cache MISS, got %q", got)
		}
		if ids := listingIDs(t, rec); len(ids) != 3 {
			t.Errorf("Expected 3 properties, got %v", ids)
		}
	}
	if got := getCounterVecValue(metrics.ResponseCacheLookupsTotal, "error") - errorsBefore; got != 2 {
		t.Errorf("Expected 2 recorded backend errors, got %v", got)
	}
}

func TestCachePage_Middleware(t *testing.T) {
	clock := testutil.NewClock(testutil.BaseTime)
	backend, err := cache.New("memory", cache.ProviderConfig{Size: 10, TTL: time.Hour, Now: clock.Now})
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	t.Cleanup(func() { _ = backend.Close() })

	tests := []struct {
		name       string
		method     string
		status     int
		wantCalls  int
		wantStored bool
	}{
		{name: "GET 200 is cached", method: http.MethodGet, status: http.StatusOK, wantCalls: 1, wantStored: true},
		{name: "HEAD 200 is cached", method: http.MethodHead, status: http.StatusOK, wantCalls: 1, wantStored: true},
		{name: "GET 404 is not cached", method: http.MethodGet, status: http.StatusNotFound, wantCalls: 2},
		{name: "GET 500 is not cached", method: http.MethodGet, status: http.StatusInternalServerError, wantCalls: 2},
		{name: "POST bypasses the cache", method: http.MethodPost, status: http.StatusOK, wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.Header().Set("Content-Type", "text/plain")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("body"))
			})
			policy := CachePolicy{TTL: time.Minute, KeyPrefix: "test:" + tt.name + ":"}
			h := CachePage(backend, policy)(inner)

			for i := 0; i < 2; i++ {
				rec := serve(t, h, tt.method, "/resource")
				if rec.Code != tt.status {
					t.Fatalf("Expected status %d, got %d", tt.status, rec.Code)
				}
				if rec.Body.String() != "body" {
					t.Fatalf("Expected body, got %q", rec.Body.String())
				}
			}

			if calls != tt.wantCalls {
				t.Errorf("Expected %d handler calls, got %d", tt.wantCalls, calls)
			}
			key := policy.KeyPrefix + RequestCacheKey(httptest.NewRequest(tt.method, "/resource", nil))
			if got := backend.Contains(context.Background(), key); got != tt.wantStored {
				t.Errorf("Expected stored=%v, got %v", tt.wantStored, got)
			}
		})
	}
}

func TestCachePage_MaxAgeOnlyOnSuccess(t *testing.T) {
	clock := testutil.NewClock(testutil.BaseTime)
	backend, err := cache.New("memory", cache.ProviderConfig{Size: 10, TTL: time.Hour, Now: clock.Now})
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	t.Cleanup(func() { _ = backend.Close() })

	h := CachePage(backend, CachePolicy{TTL: 90 * time.Second})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	if got := serve(t, h, http.MethodGet, "/found").Header().Get("Cache-Control"); got != "max-age=90" {
		t.Errorf("Expected max-age=90 on an implicit 200, got %q", got)
	}
	if got := serve(t, h, http.MethodGet, "/missing").Header().Get("Cache-Control"); got != "" {
		t.Errorf("Expected no Cache-Control on a 404, got %q", got)
	}
}

func TestCachePage_UndecodableEntryIsAMiss(t *testing.T) {
	env := newTestEnv(t)
	key := DefaultCachePolicy().KeyPrefix + RequestCacheKey(httptest.NewRequest(http.MethodGet, "/properties/", nil))
	if err := env.backend.Set(context.Background(), key, []byte{0xc1}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	rec := env.get(t, "/properties/")
	if rec.Code != http.StatusOK || rec.Header().Get(headerXCache) != cacheMiss {
		t.Fatalf("Expected a regenerated 200 MISS, got %d %q", rec.Code, rec.Header().Get(headerXCache))
	}
	if ids := listingIDs(t, rec); len(ids) != 3 {
		t.Errorf("Expected 3 properties, got %v", ids)
	}
	if got := env.get(t, "/properties/").Header().Get(headerXCache); got != cacheHit {
		t.Errorf("Expected the entry to be rewritten, got X-Cache %q", got)
	}
}

func TestRequestCacheKey(t *testing.T) {
	get := func(target string) string {
		return RequestCacheKey(httptest.NewRequest(http.MethodGet, target, nil))
	}

	if got := get("/properties/"); got != "GET:/properties/" {
		t.Errorf("Expected GET:/properties/, got %q", got)
	}
	if get("/properties/?a=1") == get("/properties/?a=2") {
		t.Error("Expected different queries to produce different keys")
	}
	if get("/properties/?a=1") != get("/properties/?a=1") {
		t.Error("Expected the same query to produce the same key")
	}
	if RequestCacheKey(httptest.NewRequest(http.MethodHead, "/properties/", nil)) == get("/properties/") {
		t.Error("Expected the method to be part of the key")
	}
	long := get("/properties/?q=" + strings.Repeat("x", 4096))
	if len(long) > 64 {
		t.Errorf("Expected long queries to be hashed, got a %d byte key", len(long))
	}
}
