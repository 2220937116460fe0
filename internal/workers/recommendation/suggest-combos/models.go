// internal/workers/recommendation/suggest-combos/models.go
package suggestcombos

import (
	"encoding/json"

	"nutrition-workers/internal/models"
)

type Input struct {
	MainItemID string `json:"mainItemId"`
	Limit      int    `json:"limit,omitempty"`
	// Preferences is kept raw so a malformed block degrades to no
	// preferences instead of failing the whole job.
	Preferences json.RawMessage `json:"preferences,omitempty"`
}

type Output struct {
	Count       int                      `json:"count"`
	Suggestions []models.ComboSuggestion `json:"suggestions"`
}
