package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultPort = 9090

// NewHTTPServer creates the side server that exposes Prometheus metrics at
// /metrics, separate from the public listing API.
func NewHTTPServer(address string, port int) *http.Server {
	if port == 0 {
		port = defaultPort
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", address, port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
