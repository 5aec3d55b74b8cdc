package models

import "time"

// Property is a single listing as stored in the properties table.
type Property struct {
	ID          int64     `json:"id" msgpack:"id"`
	Title       string    `json:"title" msgpack:"title"`
	Description string    `json:"description" msgpack:"description"`
	Price       Price     `json:"price" msgpack:"price"`
	Location    string    `json:"location" msgpack:"location"`
	CreatedAt   time.Time `json:"created_at" msgpack:"created_at"`
}

// PropertyRecord is the wire shape of a Property in listing responses.
type PropertyRecord struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Location    string `json:"location"`
	CreatedAt   string `json:"created_at"`
}

// PropertyListResponse is the JSON body returned by the listing endpoint.
type PropertyListResponse struct {
	Data   []PropertyRecord `json:"data"`
	Count  int              `json:"count"`
	Status string           `json:"status"`
}

// ToRecord converts a Property into its response shape.
func (p Property) ToRecord() PropertyRecord {
	return PropertyRecord{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price.String(),
		Location:    p.Location,
		CreatedAt:   FormatISO8601(p.CreatedAt),
	}
}

// FormatISO8601 formats t with second precision, a microsecond fraction when
// one is present, and a numeric UTC offset (e.g. 2024-01-01T00:00:00+00:00).
func FormatISO8601(t time.Time) string {
	if t.Nanosecond()/int(time.Microsecond) != 0 {
		return t.Format("2006-01-02T15:04:05.000000-07:00")
	}
	return t.Format("2006-01-02T15:04:05-07:00")
}
