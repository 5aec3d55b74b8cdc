package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Belphemur/PropertyListings/internal/cache"
	"github.com/Belphemur/PropertyListings/internal/config"
	"github.com/Belphemur/PropertyListings/internal/metrics"
	"github.com/cespare/xxhash/v2"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	headerXCache      = "X-Cache"
	cacheHit          = "HIT"
	cacheMiss         = "MISS"
	lookupBypass      = "bypass"
	defaultPagePrefix = "page:"
)

// CachePolicy controls how CachePage stores responses.
type CachePolicy struct {
	// TTL of a stored response, counted from the miss that produced it.
	TTL time.Duration

	// KeyPrefix namespaces page entries on a backend shared with other caches.
	KeyPrefix string

	// KeyFunc derives the cache key of a request. Defaults to RequestCacheKey.
	KeyFunc func(r *http.Request) string
}

// DefaultCachePolicy caches responses for fifteen minutes.
func DefaultCachePolicy() CachePolicy {
	return CachePolicy{
		TTL:       config.DefaultResponseTTL,
		KeyPrefix: defaultPagePrefix,
		KeyFunc:   RequestCacheKey,
	}
}

// RequestCacheKey identifies a request by method, path and query string.
// The query is hashed so that arbitrary input keeps keys short.
func RequestCacheKey(r *http.Request) string {
	key := r.Method + ":" + r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + strconv.FormatUint(xxhash.Sum64String(r.URL.RawQuery), 16)
	}
	return key
}

// cachedResponse is the stored form of a response.
type cachedResponse struct {
	Status      int    `msgpack:"status"`
	ContentType string `msgpack:"content_type"`
	Body        []byte `msgpack:"body"`
}

// CachePage caches whole 200 responses to GET and HEAD requests in backend.
//
// A stored response is replayed byte for byte until its TTL runs out, without
// running next, so it can be older than the data next would produce. Backend
// failures are logged and the request is served by next.
func CachePage(backend cache.Cache, policy CachePolicy) func(http.Handler) http.Handler {
	if policy.TTL <= 0 {
		policy.TTL = config.DefaultResponseTTL
	}
	if policy.KeyFunc == nil {
		policy.KeyFunc = RequestCacheKey
	}
	maxAge := "max-age=" + strconv.Itoa(int(policy.TTL/time.Second))
	logger := config.GetLogger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				metrics.ResponseCacheLookupsTotal.WithLabelValues(lookupBypass).Inc()
				next.ServeHTTP(w, r)
				return
			}

			key := policy.KeyPrefix + policy.KeyFunc(r)
			res := cache.Lookup(r.Context(), backend, key)

			switch res.Status {
			case cache.StatusHit:
				var stored cachedResponse
				err := msgpack.Unmarshal(res.Value, &stored)
				if err == nil {
					metrics.ResponseCacheLookupsTotal.WithLabelValues(res.Status.String()).Inc()
					replay(w, stored, maxAge)
					return
				}
				logger.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cached response")
				metrics.ResponseCacheLookupsTotal.WithLabelValues(cache.StatusMiss.String()).Inc()
			case cache.StatusBackendError:
				logger.Warn().Err(res.Err).Str("key", key).Msg("Response cache unavailable, serving uncached")
				metrics.ResponseCacheLookupsTotal.WithLabelValues(res.Status.String()).Inc()
			default:
				metrics.ResponseCacheLookupsTotal.WithLabelValues(res.Status.String()).Inc()
			}

			w.Header().Set(headerXCache, cacheMiss)
			ww := middleware.NewWrapResponseWriter(&maxAgeWriter{ResponseWriter: w, maxAge: maxAge}, r.ProtoMajor)
			var body bytes.Buffer
			ww.Tee(&body)

			next.ServeHTTP(ww, r)

			if ww.Status() != http.StatusOK {
				return
			}
			data, err := msgpack.Marshal(cachedResponse{
				Status:      http.StatusOK,
				ContentType: ww.Header().Get("Content-Type"),
				Body:        body.Bytes(),
			})
			if err != nil {
				logger.Error().Err(err).Str("key", key).Msg("Failed to encode response for caching")
				return
			}
			// The response is already sent; store it even if the client went away.
			if err := backend.Set(context.WithoutCancel(r.Context()), key, data, policy.TTL); err != nil {
				logger.Warn().Err(err).Str("key", key).Msg("Failed to cache response")
			}
		})
	}
}

func replay(w http.ResponseWriter, stored cachedResponse, maxAge string) {
	h := w.Header()
	if stored.ContentType != "" {
		h.Set("Content-Type", stored.ContentType)
	}
	h.Set("Cache-Control", maxAge)
	h.Set("Content-Length", strconv.Itoa(len(stored.Body)))
	h.Set(headerXCache, cacheHit)
	status := stored.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(stored.Body)
}

// maxAgeWriter advertises the page TTL on successful responses only.
type maxAgeWriter struct {
	http.ResponseWriter
	maxAge      string
	wroteHeader bool
}

func (w *maxAgeWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		if code == http.StatusOK {
			w.Header().Set("Cache-Control", w.maxAge)
		}
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *maxAgeWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
