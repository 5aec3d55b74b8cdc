package store

import (
	"context"
	"fmt"

	"github.com/Belphemur/PropertyListings/internal/models"
	"github.com/Belphemur/PropertyListings/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore reads properties from a PostgreSQL table through a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	s := &PostgresStore{pool: pool}

	if err := s.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if s.pool == nil {
		return fmt.Errorf("postgres not initialized")
	}
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS properties (
			id BIGSERIAL PRIMARY KEY,
			title VARCHAR(200) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price NUMERIC(10, 2) NOT NULL,
			location VARCHAR(100) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_properties_created_at ON properties (created_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// ListAll reads price through its text form so the column's scale is kept exactly.
func (s *PostgresStore) ListAll(ctx context.Context) ([]models.Property, error) {
	ctx, span := observability.StartSpan(ctx, "PostgresStore.ListAll")
	defer span.End()

	rows, err := s.pool.Query(ctx, `
		SELECT id, title, description, price::text, location, created_at
		FROM properties
		ORDER BY created_at DESC`)
	if err != nil {
		observability.SetSpanError(span, err)
		return nil, fmt.Errorf("list properties: %w", err)
	}

	props, err := pgx.CollectRows(rows, scanProperty)
	if err != nil {
		observability.SetSpanError(span, err)
		return nil, fmt.Errorf("scan properties: %w", err)
	}
	span.SetAttributes(observability.AttrResultCount.Int(len(props)))
	return props, nil
}

func scanProperty(row pgx.CollectableRow) (models.Property, error) {
	var (
		p     models.Property
		price string
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &price, &p.Location, &p.CreatedAt); err != nil {
		return p, err
	}
	parsed, err := models.ParsePrice(price)
	if err != nil {
		return p, err
	}
	p.Price = parsed
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

// Insert adds p and returns it with its generated ID. A zero CreatedAt uses the server clock.
func (s *PostgresStore) Insert(ctx context.Context, p models.Property) (models.Property, error) {
	var (
		createdAt any
		price     string
	)
	if !p.CreatedAt.IsZero() {
		createdAt = p.CreatedAt
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO properties (title, description, price, location, created_at)
		VALUES ($1, $2, $3::numeric, $4, COALESCE($5::timestamptz, now()))
		RETURNING id, price::text, created_at`,
		p.Title, p.Description, p.Price.String(), p.Location, createdAt,
	).Scan(&p.ID, &price, &p.CreatedAt)
	if err != nil {
		return p, fmt.Errorf("insert property: %w", err)
	}
	// NUMERIC(10, 2) may have rescaled the value.
	if p.Price, err = models.ParsePrice(price); err != nil {
		return p, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}
