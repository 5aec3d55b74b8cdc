package models

import "strings"

// Health is the qualitative classification of a cache hit ratio.
type Health int

const (
	HealthPoor Health = iota
	HealthGood
	HealthExcellent
	HealthError // the backend could not be queried
)

// String returns the label used in reports and logs.
func (h Health) String() string {
	switch h {
	case HealthExcellent:
		return "Excellent"
	case HealthGood:
		return "Good"
	case HealthError:
		return "Error"
	default:
		return "Poor"
	}
}

// ParseHealth converts a label back to Health. Unknown labels map to HealthPoor.
func ParseHealth(s string) Health {
	switch strings.ToLower(s) {
	case "excellent":
		return HealthExcellent
	case "good":
		return HealthGood
	case "error":
		return HealthError
	default:
		return HealthPoor
	}
}

// ClassifyHitRatio maps a hit ratio onto a Health tier. Both thresholds are
// exclusive, so exactly 0.8 is Good and exactly 0.6 is Poor.
func ClassifyHitRatio(ratio float64) Health {
	switch {
	case ratio > 0.8:
		return HealthExcellent
	case ratio > 0.6:
		return HealthGood
	default:
		return HealthPoor
	}
}

// MarshalJSON implements json.Marshaler interface
func (h Health) MarshalJSON() ([]byte, error) {
	return []byte(`"` + h.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler interface
func (h *Health) UnmarshalJSON(data []byte) error {
	*h = ParseHealth(strings.Trim(string(data), `"`))
	return nil
}
