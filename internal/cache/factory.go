package cache

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ProviderConfig is everything a provider may need. Each provider reads the
// fields that apply to it and ignores the rest.
type ProviderConfig struct {
	// Size bounds the entry count of the memory provider.
	Size int

	// TTL applies when Set gets ttl <= 0. The memory provider also never keeps
	// an entry longer than this.
	TTL time.Duration

	// OnEvict, when set, sees every entry the memory provider drops.
	OnEvict EvictCallback

	// Logger gets backend failures. Nil means they are only returned.
	Logger *zerolog.Logger

	// Now is the memory provider's clock; tests pass a fake one.
	Now func() time.Time

	// Redis connection settings.
	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// KeyPrefix is prepended to every Redis key ("plcache:" when empty).
	KeyPrefix string

	// BreakerFailureThreshold consecutive Redis failures open the breaker for
	// BreakerDelay. Zero turns the breaker off.
	BreakerFailureThreshold uint
	BreakerDelay            time.Duration

	// Group labels this backend's Prometheus series. Empty means no instrumentation.
	Group string
}

// Provider builds a Cache from a ProviderConfig.
type Provider func(cfg ProviderConfig) (Cache, error)

type registry struct {
	sync.RWMutex
	providers map[string]Provider
}

var defaultRegistry = &registry{providers: map[string]Provider{}}

// Register makes a provider available to New under name. Registering nil or
// reusing a name panics; providers register themselves from init.
func Register(name string, p Provider) {
	defaultRegistry.Lock()
	defer defaultRegistry.Unlock()

	switch {
	case p == nil:
		panic("cache: nil provider for " + name)
	case defaultRegistry.providers[name] != nil:
		panic(fmt.Sprintf("cache: provider %q registered twice", name))
	}
	defaultRegistry.providers[name] = p
}

func (r *registry) lookup(name string) (Provider, bool) {
	r.RLock()
	defer r.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// New builds a cache with the named provider. A non-empty cfg.Group wraps the
// result so hits, misses, backend errors, evictions and the live entry count
// are exported under cache=<Group>.
func New(name string, cfg ProviderConfig) (Cache, error) {
	p, ok := defaultRegistry.lookup(name)
	if !ok {
		return nil, fmt.Errorf("cache: no provider named %q, have %v", name, RegisteredProviders())
	}
	if cfg.Group == "" {
		return p(cfg)
	}

	group, userEvict := cfg.Group, cfg.OnEvict
	cfg.OnEvict = func(key string, value []byte) {
		EvictionsTotal.WithLabelValues(group).Inc()
		if userEvict != nil {
			userEvict(key, value)
		}
	}

	c, err := p(cfg)
	if err != nil {
		return nil, err
	}
	return newInstrumentedCache(c, group), nil
}

// RegisteredProviders lists provider names in sorted order.
func RegisteredProviders() []string {
	defaultRegistry.RLock()
	defer defaultRegistry.RUnlock()
	return slices.Sorted(maps.Keys(defaultRegistry.providers))
}
