// internal/models/combo.go
package models

import "time"

// ComboFrequency is a persisted pairwise counter: how often a complementary
// item was purchased together with a main item. Rows are mutated only through
// an atomic increment-upsert; popularity is recomputed from frequency right
// after each increment and is advisory.
type ComboFrequency struct {
	MainItemID          string    `json:"mainItemId"`
	ComplementaryItemID string    `json:"complementaryItemId"`
	Frequency           int       `json:"frequency"`
	Popularity          int       `json:"popularity"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// Combo suggestion reasons.
const (
	ReasonPopularTogether    = "popular_together"
	ReasonSameVendorFallback = "same_vendor_fallback"
)

// ComboSuggestion is one complementary item recommendation. Frequency and
// Popularity are only present for popular_together results.
type ComboSuggestion struct {
	Item             CatalogItem `json:"item"`
	Reason           string      `json:"reason"`
	Frequency        *int        `json:"frequency,omitempty"`
	Popularity       *int        `json:"popularity,omitempty"`
	PopularityScore  float64     `json:"popularityScore"`
	NutritionalScore float64     `json:"nutritionalScore"`
}
