package main

import (
	"encoding/json"
	"os"

	"github.com/Belphemur/PropertyListings/internal/config"
	"github.com/Belphemur/PropertyListings/internal/services"
	"github.com/spf13/cobra"
)

func metricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Print the cache metrics report",
		Long:  "Read the cache backend's counters once and print the hit ratio report as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := openCache(config.GetConfig())
			if err != nil {
				return err
			}
			defer func() { _ = backend.Close() }()

			report := services.NewCacheMetricsReporter(backend).GetCacheMetrics(cmd.Context())

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
}
