package services

import (
	"context"
	"time"

	"github.com/Belphemur/PropertyListings/internal/apperrors"
	"github.com/Belphemur/PropertyListings/internal/cache"
	"github.com/Belphemur/PropertyListings/internal/config"
	"github.com/Belphemur/PropertyListings/internal/metrics"
	"github.com/Belphemur/PropertyListings/internal/models"
	"github.com/Belphemur/PropertyListings/internal/observability"
	"github.com/Belphemur/PropertyListings/internal/store"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"
)

// PropertyCacheOption configures a DefaultPropertyCache.
type PropertyCacheOption func(*DefaultPropertyCache)

// WithResultTTL overrides the snapshot lifetime.
func WithResultTTL(ttl time.Duration) PropertyCacheOption {
	return func(c *DefaultPropertyCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMissCoalescing makes concurrent misses share a single store query.
func WithMissCoalescing() PropertyCacheOption {
	return func(c *DefaultPropertyCache) {
		c.group = &singleflight.Group{}
	}
}

// DefaultPropertyCache implements PropertyCache on top of a cache backend.
//
// Snapshots are never invalidated on writes; staleness is bounded by the TTL.
// Without miss coalescing, N concurrent misses run N store queries and write
// the same key N times, the last write's TTL winning.
type DefaultPropertyCache struct {
	store  store.PropertyStore
	cache  cache.Cache
	ttl    time.Duration
	group  *singleflight.Group
	logger zerolog.Logger
}

// NewPropertyCache creates a PropertyCache with a one-hour snapshot TTL.
func NewPropertyCache(s store.PropertyStore, c cache.Cache, opts ...PropertyCacheOption) PropertyCache {
	pc := &DefaultPropertyCache{
		store:  s,
		cache:  c,
		ttl:    config.DefaultResultTTL,
		logger: config.GetLogger(),
	}
	for _, opt := range opts {
		opt(pc)
	}
	return pc
}

// GetAllProperties implements PropertyCache.
func (c *DefaultPropertyCache) GetAllProperties(ctx context.Context) ([]models.Property, error) {
	ctx, span := observability.StartSpan(ctx, "PropertyCache.GetAllProperties",
		observability.AttrCacheKey.String(AllPropertiesKey))
	defer span.End()

	res := cache.Lookup(ctx, c.cache, AllPropertiesKey)
	span.SetAttributes(observability.AttrCacheResult.String(res.Status.String()))
	metrics.ResultCacheLookupsTotal.WithLabelValues(res.Status.String()).Inc()

	switch res.Status {
	case cache.StatusHit:
		props, err := decodeSnapshot(res.Value)
		if err == nil {
			c.logger.Debug().Int("count", len(props)).Msg("Property listing served from cache")
			return props, nil
		}
		c.logger.Warn().Err(err).Str("key", AllPropertiesKey).Msg("Discarding undecodable cached snapshot")
	case cache.StatusBackendError:
		// Fail open: an unreachable backend must not take the listing down.
		c.logger.Warn().Err(res.Err).Str("key", AllPropertiesKey).Msg("Cache backend unavailable, reading from store")
	}

	props, err := c.load(ctx)
	if err != nil {
		observability.SetSpanError(span, err)
		return nil, err
	}
	span.SetAttributes(observability.AttrResultCount.Int(len(props)))
	return props, nil
}

func (c *DefaultPropertyCache) load(ctx context.Context) ([]models.Property, error) {
	if c.group == nil {
		return c.fetchAndStore(ctx)
	}
	// The shared load must outlive any single caller; each caller still
	// stops waiting when its own context ends.
	ch := c.group.DoChan(AllPropertiesKey, func() (interface{}, error) {
		return c.fetchAndStore(context.WithoutCancel(ctx))
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}
	props := res.Val.([]models.Property)
	if res.Shared {
		// Each caller gets its own slice.
		props = append([]models.Property(nil), props...)
	}
	return props, nil
}

func (c *DefaultPropertyCache) fetchAndStore(ctx context.Context) ([]models.Property, error) {
	props, err := c.store.ListAll(ctx)
	if err != nil {
		metrics.StoreQueriesTotal.WithLabelValues("error").Inc()
		return nil, apperrors.NewStoreUnavailableError("list all", err)
	}
	metrics.StoreQueriesTotal.WithLabelValues("success").Inc()
	if props == nil {
		props = []models.Property{}
	}

	data, err := msgpack.Marshal(props)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to encode property snapshot")
		return props, nil
	}
	if err := c.cache.Set(ctx, AllPropertiesKey, data, c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("key", AllPropertiesKey).Msg("Failed to cache property snapshot")
		return props, nil
	}

	c.logger.Debug().
		Int("count", len(props)).
		Dur("ttl", c.ttl).
		Msg("Property listing cached")
	return props, nil
}

// decodeSnapshot restores a cached listing. Timestamps come back in UTC, as the store returns them.
func decodeSnapshot(data []byte) ([]models.Property, error) {
	var props []models.Property
	if err := msgpack.Unmarshal(data, &props); err != nil {
		return nil, err
	}
	if props == nil {
		props = []models.Property{}
	}
	for i := range props {
		props[i].CreatedAt = props[i].CreatedAt.UTC()
	}
	return props, nil
}
