// internal/workers/recommendation/recommend-by-query/models.go
package recommendbyquery

import "nutrition-workers/internal/models"

type Input struct {
	Query            string           `json:"query"`
	PreviousCriteria *models.Criteria `json:"previousCriteria,omitempty"`
}

type Output struct {
	Criteria        models.Criteria     `json:"criteria"`
	Recommendations []models.RankedItem `json:"recommendations"`
	Count           int                 `json:"count"`
	Message         string              `json:"message"`
	UsedFallback    bool                `json:"usedFallback"`
}
