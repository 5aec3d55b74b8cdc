package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Belphemur/PropertyListings/internal/config"
	"github.com/Belphemur/PropertyListings/internal/models"
	"github.com/Belphemur/PropertyListings/internal/store"
	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample properties",
		Long:  "Insert a handful of sample properties into the configured store. Cached listings are not invalidated.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()
			_, err := runSeed(cmd.Context(), store.Config{
				Provider: cfg.Store.Provider,
				DSN:      cfg.Store.DSN,
			})
			return err
		},
	}
}

// runSeed opens the configured store and inserts the sample properties.
func runSeed(ctx context.Context, cfg store.Config) (int, error) {
	s, err := store.Open(ctx, cfg)
	if err != nil {
		return 0, fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = s.Close() }()

	n, err := seedProperties(ctx, s)
	if err != nil {
		return n, err
	}
	logger := config.GetLogger()
	logger.Info().Str("store", cfg.Provider).Int("count", n).Msg("Seeded properties")
	return n, nil
}

func seedProperties(ctx context.Context, s store.PropertyStore) (int, error) {
	w, ok := s.(store.PropertyWriter)
	if !ok {
		return 0, fmt.Errorf("store %T does not accept writes", s)
	}

	now := time.Now().UTC().Truncate(time.Second)
	samples := []models.Property{
		{Title: "Garden flat", Description: "Two bedrooms with a private garden.", Price: models.MustParsePrice("1234.50"), Location: "Nairobi", CreatedAt: now.Add(-2 * time.Hour)},
		{Title: "City loft", Description: "Open plan loft close to the station.", Price: models.MustParsePrice("250000.00"), Location: "Lagos", CreatedAt: now.Add(-time.Hour)},
		{Title: "Beach house", Description: "Sea views and a long deck.", Price: models.MustParsePrice("99.99"), Location: "Mombasa", CreatedAt: now},
	}

	for i, p := range samples {
		if _, err := w.Insert(ctx, p); err != nil {
			return i, fmt.Errorf("insert %q: %w", p.Title, err)
		}
	}
	return len(samples), nil
}
