package services

import (
	"context"

	"github.com/Belphemur/PropertyListings/internal/models"
)

// CacheMetricsReporter reports the cache backend's hit ratio and health
type CacheMetricsReporter interface {
	// GetCacheMetrics never fails: backend errors produce a report with HealthError
	GetCacheMetrics(ctx context.Context) models.CacheMetricsReport
}
