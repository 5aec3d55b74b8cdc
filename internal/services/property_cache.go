package services

import (
	"context"

	"github.com/Belphemur/PropertyListings/internal/models"
)

// AllPropertiesKey is the fixed result-cache key for the full listing.
const AllPropertiesKey = "all_properties"

// PropertyCache defines the read-through cache in front of the property store
type PropertyCache interface {
	// GetAllProperties returns every property, newest first, from the cache when
	// a snapshot is present and from the store otherwise
	GetAllProperties(ctx context.Context) ([]models.Property, error)
}
