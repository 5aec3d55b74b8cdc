package cache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Process-side view of cache traffic. Every series carries a "cache" label set
// from ProviderConfig.Group. These counters only see this process; the
// backend-wide counters come from Info.
var (
	// HitsTotal counts lookups answered by the backend.
	HitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits.",
		},
		[]string{"cache"},
	)

	// MissesTotal counts lookups for absent or expired keys.
	MissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses.",
		},
		[]string{"cache"},
	)

	// ErrorsTotal counts backend failures per group and operation.
	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_backend_errors_total",
			Help: "Total number of cache operations that failed in the backend.",
		},
		[]string{"cache", "op"},
	)

	// EvictionsTotal counts entries removed by capacity or expiry.
	EvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of entries evicted from the cache.",
		},
		[]string{"cache"},
	)
)

func init() {
	prometheus.MustRegister(
		HitsTotal,
		MissesTotal,
		ErrorsTotal,
		EvictionsTotal,
	)
}

// entriesCollector reports the entry count of one group by calling lenFunc
// at scrape time, so Redis-side expiry is reflected without bookkeeping.
type entriesCollector struct {
	desc    *prometheus.Desc
	lenFunc func() int
}

func (c *entriesCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *entriesCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(c.lenFunc()))
}

var (
	entriesCollectorMu sync.Mutex
	entriesCollectors  = make(map[string]*entriesCollector)
	// entriesReg is swapped for an isolated registry in tests.
	entriesReg prometheus.Registerer = prometheus.DefaultRegisterer
)

// registerEntriesCollector installs the entries gauge for group, replacing
// any collector left behind by an earlier instance of the same group.
func registerEntriesCollector(group string, lenFunc func() int) *entriesCollector {
	desc := prometheus.NewDesc(
		"cache_entries",
		"Current number of entries in the cache.",
		nil,
		prometheus.Labels{"cache": group},
	)
	c := &entriesCollector{desc: desc, lenFunc: lenFunc}

	entriesCollectorMu.Lock()
	defer entriesCollectorMu.Unlock()

	if old, ok := entriesCollectors[group]; ok {
		entriesReg.Unregister(old)
	}
	entriesCollectors[group] = c
	_ = entriesReg.Register(c)
	return c
}

func unregisterEntriesCollector(group string) {
	entriesCollectorMu.Lock()
	defer entriesCollectorMu.Unlock()

	if c, ok := entriesCollectors[group]; ok {
		entriesReg.Unregister(c)
		delete(entriesCollectors, group)
	}
}
