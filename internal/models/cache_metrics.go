package models

// CacheMetricsReport is a point-in-time view of the cache backend's counters.
// It is derived on every request and never cached itself.
type CacheMetricsReport struct {
	Hits                   int64   `json:"hits"`
	Misses                 int64   `json:"misses"`
	TotalOperations        int64   `json:"total_operations"`
	HitRatio               float64 `json:"hit_ratio"`
	HitPercentage          float64 `json:"hit_percentage"`
	Health                 Health  `json:"health"`
	TotalCommandsProcessed int64   `json:"total_commands_processed"`
	ConnectedClients       int64   `json:"connected_clients"`
	UsedMemory             string  `json:"used_memory"`
	Error                  string  `json:"error,omitempty"`
}

// Degraded reports whether the report was produced after a backend failure.
func (r CacheMetricsReport) Degraded() bool {
	return r.Health == HealthError
}
