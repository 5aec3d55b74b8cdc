package httpapi

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/Belphemur/PropertyListings/internal/apperrors"
	"github.com/Belphemur/PropertyListings/internal/config"
	"github.com/Belphemur/PropertyListings/internal/services"
	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

var propertyListTemplate = template.Must(template.ParseFS(templateFS, "templates/property_list.html"))

const (
	contentTypeJSON = "application/json"
	contentTypeHTML = "text/html; charset=utf-8"
)

// errorResponse is the body of every failed request. Details stay in the logs.
type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// Server serves the property listing endpoints
type Server struct {
	properties services.PropertyCache
	reporter   services.CacheMetricsReporter
	logger     zerolog.Logger
}

// NewServer creates a new HTTP API server
func NewServer(properties services.PropertyCache, reporter services.CacheMetricsReporter) *Server {
	return &Server{
		properties: properties,
		reporter:   reporter,
		logger:     config.GetLogger(),
	}
}

// ListProperties returns every property as JSON, newest first
func (s *Server) ListProperties(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug().Msg("ListProperties called")

	props, err := s.properties.GetAllProperties(r.Context())
	if err != nil {
		s.internalError(w, r, err, "Failed to list properties")
		return
	}

	s.logger.Debug().Int("count", len(props)).Msg("ListProperties completed")
	writeJSON(w, http.StatusOK, convertPropertiesToListResponse(props))
}

// PropertyPage renders the property listing as an HTML document
func (s *Server) PropertyPage(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug().Msg("PropertyPage called")

	props, err := s.properties.GetAllProperties(r.Context())
	if err != nil {
		s.internalError(w, r, err, "Failed to list properties")
		return
	}

	// Render fully before writing so a template failure still yields a clean 500.
	var buf bytes.Buffer
	if err := propertyListTemplate.Execute(&buf, convertPropertiesToPage(props)); err != nil {
		s.internalError(w, r, err, "Failed to render property page")
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to write property page")
	}
}

// CacheMetrics reports the cache backend's hit ratio. It always answers 200,
// a degraded report carries its own error field.
func (s *Server) CacheMetrics(w http.ResponseWriter, r *http.Request) {
	report := s.reporter.GetCacheMetrics(r.Context())
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, report)
}

// Health is a liveness check
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NotFound answers requests for routes the router does not know.
func (s *Server) NotFound(w http.ResponseWriter, r *http.Request) {
	err := apperrors.NewNotFoundError("route", r.URL.Path)
	s.logger.Debug().
		Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("method", r.Method).
		Msg("Unknown route")

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusNotFound, errorResponse{
		Status: "error",
		Error:  err.Error(),
	})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	s.logger.Error().
		Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("path", r.URL.Path).
		Msg(msg)
	captureException(r.Context(), err)

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Status: "error",
		Error:  http.StatusText(http.StatusInternalServerError),
	})
}

func captureException(ctx context.Context, err error) {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
