package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Belphemur/PropertyListings/internal/cache"
	"github.com/Belphemur/PropertyListings/internal/config"
	"github.com/Belphemur/PropertyListings/internal/observability"
	"github.com/Belphemur/PropertyListings/internal/services"
	"github.com/Belphemur/PropertyListings/internal/store"
	"github.com/getsentry/sentry-go"
)

// app holds the collaborators shared by every command.
type app struct {
	cfg     *config.Config
	store   store.PropertyStore
	backend cache.Cache
}

func openApp(ctx context.Context) (*app, error) {
	cfg := config.GetConfig()

	s, err := store.Open(ctx, store.Config{
		Provider: cfg.Store.Provider,
		DSN:      cfg.Store.DSN,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	backend, err := openCache(cfg)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("open cache: %w", err)
	}

	return &app{cfg: cfg, store: s, backend: backend}, nil
}

func openCache(cfg *config.Config) (cache.Cache, error) {
	logger := config.GetLogger()
	return cache.New(cfg.Cache.Provider, cache.ProviderConfig{
		Size:                    cfg.Cache.Size,
		TTL:                     config.ParseDuration("cache.max_ttl", cfg.Cache.MaxTTL, 24*time.Hour),
		Logger:                  &logger,
		RedisAddress:            cfg.Cache.Redis.Address,
		RedisPassword:           cfg.Cache.Redis.Password,
		RedisDB:                 cfg.Cache.Redis.DB,
		KeyPrefix:               cfg.Cache.KeyPrefix,
		BreakerFailureThreshold: cfg.Cache.Breaker.FailureThreshold,
		BreakerDelay:            config.ParseDuration("cache.breaker.delay", cfg.Cache.Breaker.Delay, 10*time.Second),
		Group:                   cfg.Cache.Group,
	})
}

func (a *app) propertyCache() services.PropertyCache {
	opts := []services.PropertyCacheOption{
		services.WithResultTTL(config.ParseDuration("cache.result_ttl", a.cfg.Cache.ResultTTL, config.DefaultResultTTL)),
	}
	if a.cfg.Cache.CoalesceMisses {
		opts = append(opts, services.WithMissCoalescing())
	}
	return services.NewPropertyCache(a.store, a.backend, opts...)
}

func (a *app) responseTTL() time.Duration {
	return config.ParseDuration("cache.response_ttl", a.cfg.Cache.ResponseTTL, config.DefaultResponseTTL)
}

func (a *app) Close() {
	logger := config.GetLogger()
	if err := a.backend.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close cache")
	}
	if err := a.store.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close store")
	}
}

// initSentry enables error reporting when a DSN is configured.
func initSentry(cfg *config.Config) (bool, error) {
	if cfg.Sentry.DSN == "" {
		return false, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
	})
	if err != nil {
		return false, fmt.Errorf("init sentry: %w", err)
	}
	return true, nil
}

func initTracing(ctx context.Context, cfg *config.Config) error {
	return observability.Init(ctx, observability.Config{
		Enabled:    cfg.Tracing.Enabled,
		Endpoint:   cfg.Tracing.Endpoint,
		SampleRate: cfg.Tracing.SampleRate,
	})
}
