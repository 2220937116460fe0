// internal/models/catalog.go
package models

// CatalogItem is a food item from the nutrition catalog. Macro fields are
// pointers because imported records frequently omit them; a nil value means
// "not stored", not zero.
type CatalogItem struct {
	ID          string   `json:"id"`
	VendorName  string   `json:"vendorName"`
	ItemName    string   `json:"itemName"`
	Calories    *float64 `json:"calories,omitempty"`
	Protein     *float64 `json:"protein,omitempty"`
	Fat         *float64 `json:"fat,omitempty"`
	Carbs       *float64 `json:"carbohydrates,omitempty"`
	Sugar       *float64 `json:"sugar,omitempty"`
	Sodium      *float64 `json:"sodium,omitempty"`
	Ingredients []string `json:"ingredients"`
	Price       *float64 `json:"price,omitempty"`
}

// RankedItem is a per-request view of a catalog item with its computed
// ingredient match score and display price.
type RankedItem struct {
	CatalogItem
	MatchScore int     `json:"matchScore"`
	Price      float64 `json:"price"`
}
