package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Belphemur/PropertyListings/internal/models"
)

// PropertyStore is the source of truth for property records.
type PropertyStore interface {
	// ListAll returns every property ordered by created_at, newest first.
	ListAll(ctx context.Context) ([]models.Property, error)

	// Close releases the store's connections.
	Close() error
}

// PropertyWriter is implemented by stores that accept new records.
type PropertyWriter interface {
	Insert(ctx context.Context, p models.Property) (models.Property, error)
}

// Config selects and configures a store provider.
type Config struct {
	Provider string // "postgres" or "memory"
	DSN      string
}

// Open creates the store named by cfg.Provider.
func Open(ctx context.Context, cfg Config) (PropertyStore, error) {
	switch cfg.Provider {
	case "postgres", "":
		return NewPostgresStore(ctx, cfg.DSN)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("store: unknown provider %q", cfg.Provider)
	}
}

// sortNewestFirst orders props by CreatedAt descending. Equal timestamps keep
// their insertion order.
func sortNewestFirst(props []models.Property) {
	sort.SliceStable(props, func(i, j int) bool {
		return props[i].CreatedAt.After(props[j].CreatedAt)
	})
}

// MemoryStore keeps properties in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	props   []models.Property
	queries int
}

// NewMemoryStore creates an empty MemoryStore seeded with props.
func NewMemoryStore(props ...models.Property) *MemoryStore {
	s := &MemoryStore{}
	s.props = append(s.props, props...)
	return s
}

// Insert appends p to the store.
func (s *MemoryStore) Insert(_ context.Context, p models.Property) (models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = int64(len(s.props) + 1)
	}
	s.props = append(s.props, p)
	return p, nil
}

// Replace swaps the whole data set, simulating writes made behind the cache.
func (s *MemoryStore) Replace(props []models.Property) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.props = append([]models.Property(nil), props...)
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]models.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.queries++
	out := append([]models.Property(nil), s.props...)
	s.mu.Unlock()

	sortNewestFirst(out)
	return out, nil
}

// Queries returns how many times ListAll has run.
func (s *MemoryStore) Queries() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queries
}

func (s *MemoryStore) Close() error {
	return nil
}
