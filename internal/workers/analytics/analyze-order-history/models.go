// internal/workers/analytics/analyze-order-history/models.go
package analyzeorderhistory

import "nutrition-workers/internal/models"

type Input struct {
	UserID    string `json:"userId"`
	TimeRange string `json:"timeRange,omitempty"`
	Period    string `json:"period,omitempty"`
}

type Output struct {
	Patterns        models.NutritionPatterns `json:"patterns"`
	Trends          []models.TrendPoint      `json:"trends"`
	Recommendations []models.Recommendation  `json:"recommendations"`
}
