// internal/workers/ingestion/track-combo-frequency/models.go
package trackcombofrequency

type Input struct {
	MainItemID          string   `json:"mainItemId,omitempty"`
	ComplementaryItemID string   `json:"complementaryItemId,omitempty"`
	OrderItems          []string `json:"orderItems,omitempty"`
}

type Output struct {
	Updated int `json:"updated"`
}
