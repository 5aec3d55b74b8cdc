package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Belphemur/PropertyListings/internal/apperrors"
	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// defaultKeyPrefix namespaces all cache keys in Redis to avoid collisions.
	defaultKeyPrefix = "plcache:"

	defaultRedisTTL = time.Hour
	commandTimeout  = 2 * time.Second
	scanBatch       = 256
)

func init() {
	Register("redis", newRedisCache)
}

// redisCache implements the Cache interface with one Redis key per entry,
// expiring through SET ... EX. Server-side keyspace_hits/keyspace_misses
// therefore count exactly the lookups this service makes.
//
// When a breaker is configured, consecutive failures open it and further
// commands fail immediately with an ErrCacheBackend until the delay elapses,
// so callers that fail open do not wait on a dead server for every request.
type redisCache struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
	breaker    circuitbreaker.CircuitBreaker[any]
	logger     *zerolog.Logger
}

func newRedisCache(cfg ProviderConfig) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Verify connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return newRedisCacheFromClient(client, cfg), nil
}

// newRedisCacheFromClient builds the provider around an existing client.
func newRedisCacheFromClient(client *redis.Client, cfg ProviderConfig) *redisCache {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}

	var breaker circuitbreaker.CircuitBreaker[any]
	if cfg.BreakerFailureThreshold > 0 {
		delay := cfg.BreakerDelay
		if delay <= 0 {
			delay = 10 * time.Second
		}
		breaker = circuitbreaker.NewBuilder[any]().
			WithFailureThreshold(cfg.BreakerFailureThreshold).
			WithDelay(delay).
			Build()
	}

	return &redisCache{
		client:     client,
		prefix:     prefix,
		defaultTTL: ttl,
		breaker:    breaker,
		logger:     cfg.Logger,
	}
}

func (r *redisCache) key(k string) string {
	return r.prefix + k
}

func (r *redisCache) logError(msg string, err error) {
	if r.logger != nil {
		r.logger.Error().Err(err).Msg(msg)
	}
}

// run executes fn through the breaker when one is configured.
func (r *redisCache) run(fn func() error) error {
	if r.breaker == nil {
		return fn()
	}
	return failsafe.With[any](r.breaker).Run(fn)
}

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	var (
		val   []byte
		found bool
	)
	err := r.run(func() error {
		b, err := r.client.Get(ctx, r.key(key)).Bytes()
		if errors.Is(err, redis.Nil) {
			// A miss is a healthy answer and must not trip the breaker.
			return nil
		}
		if err != nil {
			return err
		}
		val, found = b, true
		return nil
	})
	if err != nil {
		r.logError("redis cache Get failed", err)
		return nil, apperrors.NewCacheBackendError("get", key, err)
	}
	if !found {
		return nil, ErrMiss
	}
	return val, nil
}

func (r *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	err := r.run(func() error {
		return r.client.Set(ctx, r.key(key), value, ttl).Err()
	})
	if err != nil {
		r.logError("redis cache Set failed", err)
		return apperrors.NewCacheBackendError("set", key, err)
	}
	return nil
}

func (r *redisCache) Contains(ctx context.Context, key string) bool {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	var n int64
	err := r.run(func() error {
		var err error
		n, err = r.client.Exists(ctx, r.key(key)).Result()
		return err
	})
	if err != nil {
		r.logError("redis cache Contains failed", err)
	}
	return err == nil && n > 0
}

// Len counts the keys under the provider's prefix with SCAN.
func (r *redisCache) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	n := 0
	iter := r.client.Scan(ctx, 0, r.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		r.logError("redis cache Len failed", err)
		return 0
	}
	return n
}

// Info returns the server's default INFO sections, which include the stats,
// clients and memory fields the metrics reporter reads.
func (r *redisCache) Info(ctx context.Context) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	var raw string
	err := r.run(func() error {
		var err error
		raw, err = r.client.Info(ctx).Result()
		return err
	})
	if err != nil {
		return nil, apperrors.NewCacheBackendError("info", "", err)
	}
	return ParseInfo(raw), nil
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
