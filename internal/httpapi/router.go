package httpapi

import (
	"io"
	"net/http"
	"time"

	"github.com/Belphemur/PropertyListings/internal/cache"
	"github.com/Belphemur/PropertyListings/internal/observability"
	"github.com/andybalholm/brotli"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
)

const compressionLevel = 5

// NewRouter wires the API routes. Listing routes sit behind the response
// cache; compression is applied outside it so stored bodies stay plain.
func NewRouter(s *Server, backend cache.Cache, policy CachePolicy) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.HTTPMiddleware)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	r.Use(newCompressor().Handler)
	r.Use(middleware.GetHead)

	r.NotFound(s.NotFound)
	r.Get("/health", s.Health)

	r.Route("/properties", func(r chi.Router) {
		r.Get("/cache-metrics/", s.CacheMetrics)

		r.Group(func(r chi.Router) {
			r.Use(CachePage(backend, policy))
			r.Get("/", s.ListProperties)
			r.Get("/page/", s.PropertyPage)
		})
	})

	return r
}

// newCompressor negotiates br, zstd, gzip and deflate for JSON and HTML bodies.
func newCompressor() *middleware.Compressor {
	c := middleware.NewCompressor(compressionLevel, "application/json", "text/html")
	c.SetEncoder("zstd", func(w io.Writer, level int) io.Writer {
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		if err != nil {
			return nil
		}
		return enc
	})
	// Registered last so it is preferred.
	c.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})
	return c
}

// requestLogger writes one access log line per request.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Str("cache", ww.Header().Get(headerXCache)).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Msg("HTTP request")
		})
	}
}
