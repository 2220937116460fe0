// internal/workers/recommendation/recommend-by-ingredients/models.go
package recommendbyingredients

import "nutrition-workers/internal/models"

type Input struct {
	Include string `json:"include,omitempty"`
	Exclude string `json:"exclude,omitempty"`
	Page    int    `json:"page,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// EchoedCriteria mirrors the normalized include/exclude terms back to the
// process so downstream steps see what was actually matched.
type EchoedCriteria struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
}

type Output struct {
	Criteria EchoedCriteria      `json:"criteria"`
	Items    []models.RankedItem `json:"items"`
	Count    int                 `json:"count"`
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	Limit    int                 `json:"limit"`
}
