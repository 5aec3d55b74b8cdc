package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Belphemur/PropertyListings/internal/config"
	"github.com/Belphemur/PropertyListings/internal/httpapi"
	"github.com/Belphemur/PropertyListings/internal/metrics"
	"github.com/Belphemur/PropertyListings/internal/observability"
	"github.com/Belphemur/PropertyListings/internal/services"
	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Run the property listing HTTP API and, when enabled, the Prometheus metrics server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := config.GetLogger()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			cfg := a.cfg

			if seed {
				if _, err := seedProperties(ctx, a.store); err != nil {
					return err
				}
			}

			if err := initTracing(ctx, cfg); err != nil {
				return err
			}
			defer func() {
				if err := observability.Shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("Failed to flush traces")
				}
			}()

			sentryEnabled, err := initSentry(cfg)
			if err != nil {
				return err
			}
			if sentryEnabled {
				defer sentry.Flush(2 * time.Second)
			}

			logger.Info().
				Str("store", cfg.Store.Provider).
				Str("cache", cfg.Cache.Provider).
				Str("cache_group", cfg.Cache.Group).
				Bool("coalesce_misses", cfg.Cache.CoalesceMisses).
				Int("server_port", cfg.Server.Port).
				Str("server_address", cfg.Server.Address).
				Msg("Application started with configuration")

			policy := httpapi.DefaultCachePolicy()
			policy.TTL = a.responseTTL()
			srv := httpapi.NewServer(a.propertyCache(), services.NewCacheMetricsReporter(a.backend))

			httpServer := &http.Server{
				Addr:              fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port),
				Handler:           httpapi.NewRouter(srv, a.backend, policy),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 2)

			if cfg.Metrics.Enabled {
				metricsServer := metrics.NewHTTPServer(cfg.Server.Address, cfg.Metrics.Port)
				go func() {
					logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
					if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						errCh <- fmt.Errorf("metrics server: %w", err)
					}
				}()
				defer func() {
					if err := metricsServer.Shutdown(context.Background()); err != nil {
						logger.Error().Err(err).Msg("Failed to shutdown metrics server")
					}
				}()
			}

			go func() {
				logger.Info().Str("address", httpServer.Addr).Msg("Starting HTTP server")
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- fmt.Errorf("http server: %w", err)
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			select {
			case sig := <-sigCh:
				logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			case err := <-errCh:
				return err
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown http server: %w", err)
			}

			logger.Info().Msg("Server stopped gracefully")
			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "Insert sample properties before serving (useful with the memory store)")

	return cmd
}
