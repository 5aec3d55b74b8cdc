package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Property listing metrics
var (
	// StoreQueriesTotal counts property store reads by outcome (success, error).
	StoreQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "property_store_queries_total",
			Help: "Total number of property store queries.",
		},
		[]string{"status"},
	)

	// ResultCacheLookupsTotal counts result cache reads by outcome (hit, miss, error).
	ResultCacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "property_result_cache_lookups_total",
			Help: "Total number of property result cache lookups.",
		},
		[]string{"result"},
	)

	// ResponseCacheLookupsTotal counts page cache reads by outcome (hit, miss, error, bypass).
	ResponseCacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_cache_lookups_total",
			Help: "Total number of full-response cache lookups.",
		},
		[]string{"result"},
	)

	// CacheMetricsReportsTotal counts generated cache metrics reports by health label.
	CacheMetricsReportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_metrics_reports_total",
			Help: "Total number of cache metrics reports by health.",
		},
		[]string{"health"},
	)

	// CacheBackendHitRatio is the hit ratio seen in the most recent report.
	CacheBackendHitRatio = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_backend_hit_ratio",
			Help: "Backend-wide keyspace hit ratio from the latest cache metrics report.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		StoreQueriesTotal,
		ResultCacheLookupsTotal,
		ResponseCacheLookupsTotal,
		CacheMetricsReportsTotal,
		CacheBackendHitRatio,
	)
}
