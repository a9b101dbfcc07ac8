package models

// Status is the availability label derived from a product's name text.
type Status string

const (
	StatusAvailable Status = "available"
	StatusSoldOut   Status = "sold out"
	StatusLowStock  Status = "low stock"
	StatusUnknown   Status = "unknown"
)

// Product is one candidate observation extracted from a single page visit.
//
// Identity is the case-insensitive (Name, URL) pair; see catalog.KeyOf.
type Product struct {
	// Name is the whitespace-normalised product text.
	Name string `json:"name"`

	// URL is absolute, resolved against the page URL. Empty when the
	// structured data carried no url/@id.
	URL string `json:"url"`

	// Score is the heuristic prominence score (never negative).
	Score float64 `json:"score"`

	Status Status `json:"status"`

	// Price and Currency are only populated from structured data.
	Price    string `json:"price,omitempty"`
	Currency string `json:"currency,omitempty"`
}
