// internal/models/criteria.go
package models

// Canonical nutrient field names used across criteria, predicates and the
// catalog index mapping.
const (
	FieldCalories = "calories"
	FieldProtein  = "protein"
	FieldFat      = "fat"
	FieldCarbs    = "carbohydrates"
	FieldSugar    = "sugar"
	FieldSodium   = "sodium"

	FieldItemName    = "itemName"
	FieldVendorName  = "vendorName"
	FieldIngredients = "ingredients"
)

// NutrientRange holds inclusive bounds for one nutrient. Either side may be
// absent.
type NutrientRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Criteria is the structured representation of user intent: nutrient bounds,
// an optional item-name substring and an optional sort directive. The sort
// value is a presentation instruction and must never be compiled as a filter.
type Criteria struct {
	Nutrients map[string]NutrientRange `json:"nutrients,omitempty"`
	Name      string                   `json:"name,omitempty"`
	Sort      string                   `json:"sort,omitempty"`
}

// Sort directive values accepted in Criteria.Sort.
const (
	SortUnset     = ""
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// SortDirective is the compiled presentation instruction extracted from
// criteria (or derived by the default-sort precedence).
type SortDirective struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending"`
}

// IsZero reports whether no sort was requested or derived.
func (s SortDirective) IsZero() bool { return s.Field == "" }

// Preferences are optional dietary flags honored by the compatibility score.
type Preferences struct {
	LowSugar  bool `json:"lowSugar,omitempty"`
	LowSodium bool `json:"lowSodium,omitempty"`
}
