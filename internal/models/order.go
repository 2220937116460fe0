// internal/models/order.go
package models

import "time"

// Order statuses. Only completed orders contribute to analytics.
const (
	OrderStatusCompleted = "completed"
	OrderStatusPending   = "pending"
	OrderStatusCancelled = "cancelled"
)

// OrderLine is a vendor/item entry on a historical order.
type OrderLine struct {
	VendorName string `json:"vendorName"`
	ItemName   string `json:"itemName"`
	Quantity   int    `json:"quantity"`
}

// OrderRecord is a historical purchase with its nutrition snapshot, read-only
// from the analytics aggregator's perspective.
type OrderRecord struct {
	ID            string      `json:"id"`
	UserID        string      `json:"userId"`
	Status        string      `json:"status"`
	TotalCalories float64     `json:"totalCalories"`
	TotalProtein  float64     `json:"totalProtein"`
	TotalFat      float64     `json:"totalFat"`
	TotalCarbs    float64     `json:"totalCarbohydrates"`
	Lines         []OrderLine `json:"lines,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// Analytics time windows and trend granularities.
const (
	TimeRangeWeek  = "week"
	TimeRangeMonth = "month"
	TimeRangeYear  = "year"
	TimeRangeAll   = "all"

	PeriodDay   = "day"
	PeriodMonth = "month"
)

// NameCount is a frequency entry in a top-N list. Ties keep first-seen order.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MacroDistribution summarizes one macro field across the analyzed window.
type MacroDistribution struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

// NutritionPatterns is the aggregate view of a user's completed orders inside
// a time window.
type NutritionPatterns struct {
	TimeRange              string                       `json:"timeRange"`
	TotalOrders            int                          `json:"totalOrders"`
	AverageCalories        float64                      `json:"averageCalories"`
	AverageProtein         float64                      `json:"averageProtein"`
	AverageFat             float64                      `json:"averageFat"`
	AverageCarbs           float64                      `json:"averageCarbohydrates"`
	MostOrderedRestaurants []NameCount                  `json:"mostOrderedRestaurants"`
	MostOrderedItems       []NameCount                  `json:"mostOrderedItems"`
	NutritionDistribution  map[string]MacroDistribution `json:"nutritionDistribution"`
}

// TrendPoint is one bucket in the chronological trend series. Date is the
// truncated bucket key ("2006-01-02" for day, "2006-01" for month).
type TrendPoint struct {
	Date            string  `json:"date"`
	Orders          int     `json:"orders"`
	TotalCalories   float64 `json:"totalCalories"`
	TotalProtein    float64 `json:"totalProtein"`
	TotalFat        float64 `json:"totalFat"`
	TotalCarbs      float64 `json:"totalCarbohydrates"`
	AverageCalories float64 `json:"averageCalories"`
}

// Recommendation types produced by the rule engine. The set is fixed so
// workflows (and tests) can enumerate it.
const (
	RecommendationProteinIncrease  = "protein_increase"
	RecommendationDiversity        = "diversity"
	RecommendationCalorieReduction = "calorie_reduction"
	RecommendationCalorieIncrease  = "calorie_increase"
)

// Recommendation is one rule-based dietary suggestion.
type Recommendation struct {
	Type    string  `json:"type"`
	Message string  `json:"message"`
	Current float64 `json:"current,omitempty"`
	Target  float64 `json:"target,omitempty"`
}
