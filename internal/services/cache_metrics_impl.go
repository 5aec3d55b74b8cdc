package services

import (
	"context"
	"math"
	"strconv"

	"github.com/Belphemur/PropertyListings/internal/cache"
	"github.com/Belphemur/PropertyListings/internal/config"
	"github.com/Belphemur/PropertyListings/internal/metrics"
	"github.com/Belphemur/PropertyListings/internal/models"
	"github.com/Belphemur/PropertyListings/internal/observability"
	"github.com/rs/zerolog"
)

// DefaultCacheMetricsReporter derives reports from the backend's Info counters
type DefaultCacheMetricsReporter struct {
	cache  cache.Cache
	logger zerolog.Logger
}

// NewCacheMetricsReporter creates a reporter for the given backend
func NewCacheMetricsReporter(c cache.Cache) CacheMetricsReporter {
	return &DefaultCacheMetricsReporter{
		cache:  c,
		logger: config.GetLogger(),
	}
}

// GetCacheMetrics implements CacheMetricsReporter
func (r *DefaultCacheMetricsReporter) GetCacheMetrics(ctx context.Context) models.CacheMetricsReport {
	ctx, span := observability.StartSpan(ctx, "CacheMetricsReporter.GetCacheMetrics")
	defer span.End()

	info, err := r.cache.Info(ctx)
	if err != nil {
		observability.SetSpanError(span, err)
		r.logger.Error().Err(err).Msg("Failed to read cache metrics")
		metrics.CacheMetricsReportsTotal.WithLabelValues(models.HealthError.String()).Inc()
		return models.CacheMetricsReport{
			Health: models.HealthError,
			Error:  err.Error(),
		}
	}

	report := BuildCacheMetricsReport(info)

	r.logger.Info().
		Int64("hits", report.Hits).
		Int64("misses", report.Misses).
		Float64("hit_percentage", report.HitPercentage).
		Str("health", report.Health.String()).
		Msg("Cache metrics")

	metrics.CacheMetricsReportsTotal.WithLabelValues(report.Health.String()).Inc()
	metrics.CacheBackendHitRatio.Set(report.HitRatio)
	return report
}

// BuildCacheMetricsReport turns Redis INFO fields into a report. Missing or
// non-numeric counters count as zero.
func BuildCacheMetricsReport(info map[string]string) models.CacheMetricsReport {
	hits := infoInt(info, "keyspace_hits")
	misses := infoInt(info, "keyspace_misses")
	total := hits + misses

	var ratio float64
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}

	return models.CacheMetricsReport{
		Hits:                   hits,
		Misses:                 misses,
		TotalOperations:        total,
		HitRatio:               roundTo(ratio, 4),
		HitPercentage:          roundTo(ratio*100, 2),
		Health:                 models.ClassifyHitRatio(ratio),
		TotalCommandsProcessed: infoInt(info, "total_commands_processed"),
		ConnectedClients:       infoInt(info, "connected_clients"),
		UsedMemory:             info["used_memory_human"],
	}
}

func infoInt(info map[string]string, field string) int64 {
	n, err := strconv.ParseInt(info[field], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
