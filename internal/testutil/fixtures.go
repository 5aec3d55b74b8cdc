package testutil

import (
	"time"

	"github.com/Belphemur/PropertyListings/internal/models"
)

// BaseTime is the creation time of the oldest fixture property.
var BaseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// SampleProperties returns three properties created one hour apart, oldest first.
// This is a test helper and should not be used in production code.
func SampleProperties() []models.Property {
	return []models.Property{
		{
			ID:          1,
			Title:       "Garden flat",
			Description: "Two bedrooms with a private garden.",
			Price:       models.MustParsePrice("1234.50"),
			Location:    "Nairobi",
			CreatedAt:   BaseTime,
		},
		{
			ID:          2,
			Title:       "City loft",
			Description: "Open plan loft close to the station.",
			Price:       models.MustParsePrice("250000.00"),
			Location:    "Lagos",
			CreatedAt:   BaseTime.Add(time.Hour),
		},
		{
			ID:          3,
			Title:       "Beach house",
			Description: "Sea views & a long deck <3",
			Price:       models.MustParsePrice("99.99"),
			Location:    "Mombasa",
			CreatedAt:   BaseTime.Add(2 * time.Hour),
		},
	}
}

// PropertyIDs returns the IDs of props in order.
func PropertyIDs(props []models.Property) []int64 {
	ids := make([]int64, len(props))
	for i, p := range props {
		ids[i] = p.ID
	}
	return ids
}

// SameProperties reports whether a and b hold the same properties in the same order.
// Timestamps are compared with time.Time.Equal.
func SameProperties(a, b []models.Property) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.ID != y.ID || x.Title != y.Title || x.Description != y.Description ||
			x.Price != y.Price || x.Location != y.Location || !x.CreatedAt.Equal(y.CreatedAt) {
			return false
		}
	}
	return true
}
