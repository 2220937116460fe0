package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrition-workers/internal/models"
)

var testNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func order(id string, daysAgo int, status string, calories, protein float64, lines ...models.OrderLine) models.OrderRecord {
	return models.OrderRecord{
		ID:            id,
		UserID:        "user-1",
		Status:        status,
		TotalCalories: calories,
		TotalProtein:  protein,
		Lines:         lines,
		CreatedAt:     testNow.AddDate(0, 0, -daysAgo),
	}
}

func TestAnalyzePatterns(t *testing.T) {
	orders := []models.OrderRecord{
		order("o1", 1, models.OrderStatusCompleted, 800, 40,
			models.OrderLine{VendorName: "Green Bowl", ItemName: "Salad", Quantity: 1}),
		order("o2", 2, models.OrderStatusCompleted, 600, 30,
			models.OrderLine{VendorName: "Green Bowl", ItemName: "Salad", Quantity: 1},
			models.OrderLine{VendorName: "Pasta Hut", ItemName: "Pasta", Quantity: 1}),
		order("o3", 3, models.OrderStatusPending, 9000, 0),
		order("o4", 60, models.OrderStatusCompleted, 1000, 80),
	}

	patterns := AnalyzePatterns(orders, testNow, models.TimeRangeMonth)

	assert.Equal(t, models.TimeRangeMonth, patterns.TimeRange)
	// The pending order and the one outside the window are excluded.
	assert.Equal(t, 2, patterns.TotalOrders)
	assert.InDelta(t, 700, patterns.AverageCalories, 0.0001)
	assert.InDelta(t, 35, patterns.AverageProtein, 0.0001)

	require.NotEmpty(t, patterns.MostOrderedRestaurants)
	assert.Equal(t, models.NameCount{Name: "Green Bowl", Count: 2}, patterns.MostOrderedRestaurants[0])
	assert.Equal(t, models.NameCount{Name: "Salad", Count: 2}, patterns.MostOrderedItems[0])

	calories := patterns.NutritionDistribution[models.FieldCalories]
	assert.InDelta(t, 600, calories.Min, 0.0001)
	assert.InDelta(t, 800, calories.Max, 0.0001)
	assert.InDelta(t, 700, calories.Average, 0.0001)
}

func TestAnalyzePatterns_Windows(t *testing.T) {
	orders := []models.OrderRecord{
		order("d3", 3, models.OrderStatusCompleted, 500, 20),
		order("d20", 20, models.OrderStatusCompleted, 500, 20),
		order("d200", 200, models.OrderStatusCompleted, 500, 20),
	}

	tests := []struct {
		timeRange string
		expected  int
	}{
		{timeRange: models.TimeRangeWeek, expected: 1},
		{timeRange: models.TimeRangeMonth, expected: 2},
		{timeRange: models.TimeRangeYear, expected: 3},
		{timeRange: models.TimeRangeAll, expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.timeRange, func(t *testing.T) {
			assert.Equal(t, tt.expected, AnalyzePatterns(orders, testNow, tt.timeRange).TotalOrders)
		})
	}
}

func TestAnalyzePatterns_Empty(t *testing.T) {
	patterns := AnalyzePatterns(nil, testNow, models.TimeRangeMonth)

	assert.Zero(t, patterns.TotalOrders)
	assert.Zero(t, patterns.AverageCalories)
	assert.NotNil(t, patterns.MostOrderedRestaurants)
	assert.NotNil(t, patterns.NutritionDistribution)
	assert.Empty(t, patterns.MostOrderedRestaurants)
}

func TestTopCounts_TieOrder(t *testing.T) {
	orders := []models.OrderRecord{
		order("o1", 1, models.OrderStatusCompleted, 0, 0,
			models.OrderLine{VendorName: "B-first", ItemName: "x"},
			models.OrderLine{VendorName: "A-second", ItemName: "y"}),
	}

	patterns := AnalyzePatterns(orders, testNow, models.TimeRangeAll)

	// Equal counts keep first-seen order, not alphabetical.
	require.Len(t, patterns.MostOrderedRestaurants, 2)
	assert.Equal(t, "B-first", patterns.MostOrderedRestaurants[0].Name)
	assert.Equal(t, "A-second", patterns.MostOrderedRestaurants[1].Name)
}

func TestTrends(t *testing.T) {
	t.Run("daily buckets sort ascending", func(t *testing.T) {
		orders := []models.OrderRecord{
			order("new", 1, models.OrderStatusCompleted, 700, 30),
			order("old", 10, models.OrderStatusCompleted, 500, 30),
			order("mid", 5, models.OrderStatusCompleted, 600, 30),
			order("skip", 2, models.OrderStatusCancelled, 9000, 0),
		}

		series := Trends(orders, models.PeriodDay)

		require.Len(t, series, 3)
		for i := 1; i < len(series); i++ {
			assert.Less(t, series[i-1].Date, series[i].Date)
		}
		assert.Equal(t, testNow.AddDate(0, 0, -10).Format("2006-01-02"), series[0].Date)
	})

	t.Run("monthly buckets aggregate", func(t *testing.T) {
		sameMonth := testNow.AddDate(0, 0, -1)
		orders := []models.OrderRecord{
			{ID: "a", Status: models.OrderStatusCompleted, TotalCalories: 500, CreatedAt: sameMonth},
			{ID: "b", Status: models.OrderStatusCompleted, TotalCalories: 700, CreatedAt: sameMonth},
		}

		series := Trends(orders, models.PeriodMonth)

		require.Len(t, series, 1)
		assert.Equal(t, sameMonth.Format("2006-01"), series[0].Date)
		assert.Equal(t, 2, series[0].Orders)
		assert.InDelta(t, 1200, series[0].TotalCalories, 0.0001)
		assert.InDelta(t, 600, series[0].AverageCalories, 0.0001)
	})

	t.Run("no completed orders yields an empty series", func(t *testing.T) {
		orders := []models.OrderRecord{
			order("p", 1, models.OrderStatusPending, 100, 0),
		}
		assert.Empty(t, Trends(orders, models.PeriodDay))
	})
}

func TestRecommendations(t *testing.T) {
	t.Run("protein below target", func(t *testing.T) {
		orders := []models.OrderRecord{
			order("o1", 1, models.OrderStatusCompleted, 600, 20),
			order("o2", 2, models.OrderStatusCompleted, 650, 30),
		}

		recs := Recommendations(orders)

		require.Len(t, recs, 1)
		assert.Equal(t, models.RecommendationProteinIncrease, recs[0].Type)
		assert.InDelta(t, 25, recs[0].Current, 0.0001)
		assert.InDelta(t, 50, recs[0].Target, 0.0001)
	})

	t.Run("protein at target stays quiet", func(t *testing.T) {
		orders := []models.OrderRecord{
			order("o1", 1, models.OrderStatusCompleted, 600, 50),
		}
		assert.Empty(t, Recommendations(orders))
	})

	t.Run("vendor concentration", func(t *testing.T) {
		var orders []models.OrderRecord
		for i := 0; i < 9; i++ {
			orders = append(orders, order(
				fmt.Sprintf("o%d", i), i, models.OrderStatusCompleted, 700, 60,
				models.OrderLine{VendorName: "Green Bowl", ItemName: "Salad"},
			))
		}

		recs := Recommendations(orders)

		require.Len(t, recs, 1)
		assert.Equal(t, models.RecommendationDiversity, recs[0].Type)
		assert.InDelta(t, 1, recs[0].Current, 0.0001)
		assert.InDelta(t, 3, recs[0].Target, 0.0001)
	})

	t.Run("few orders never trigger diversity", func(t *testing.T) {
		var orders []models.OrderRecord
		for i := 0; i < 5; i++ {
			orders = append(orders, order(
				fmt.Sprintf("o%d", i), i, models.OrderStatusCompleted, 700, 60,
				models.OrderLine{VendorName: "Green Bowl", ItemName: "Salad"},
			))
		}
		assert.Empty(t, Recommendations(orders))
	})

	t.Run("rising calories", func(t *testing.T) {
		orders := []models.OrderRecord{
			order("o4", 2, models.OrderStatusCompleted, 950, 60),
			order("o1", 8, models.OrderStatusCompleted, 500, 60),
			order("o3", 4, models.OrderStatusCompleted, 900, 60),
			order("o2", 6, models.OrderStatusCompleted, 520, 60),
		}

		recs := Recommendations(orders)

		require.Len(t, recs, 1)
		assert.Equal(t, models.RecommendationCalorieReduction, recs[0].Type)
		assert.InDelta(t, 925, recs[0].Current, 0.0001)
		assert.InDelta(t, 510, recs[0].Target, 0.0001)
	})

	t.Run("falling calories", func(t *testing.T) {
		orders := []models.OrderRecord{
			order("o1", 8, models.OrderStatusCompleted, 900, 60),
			order("o2", 6, models.OrderStatusCompleted, 950, 60),
			order("o3", 4, models.OrderStatusCompleted, 500, 60),
			order("o4", 2, models.OrderStatusCompleted, 520, 60),
		}

		recs := Recommendations(orders)

		require.Len(t, recs, 1)
		assert.Equal(t, models.RecommendationCalorieIncrease, recs[0].Type)
	})

	t.Run("drift inside the band stays quiet", func(t *testing.T) {
		orders := []models.OrderRecord{
			order("o1", 8, models.OrderStatusCompleted, 700, 60),
			order("o2", 6, models.OrderStatusCompleted, 700, 60),
			order("o3", 4, models.OrderStatusCompleted, 730, 60),
			order("o4", 2, models.OrderStatusCompleted, 740, 60),
		}
		assert.Empty(t, Recommendations(orders))
	})

	t.Run("zero baseline skips the trend rule", func(t *testing.T) {
		orders := []models.OrderRecord{
			order("o1", 8, models.OrderStatusCompleted, 0, 60),
			order("o2", 6, models.OrderStatusCompleted, 0, 60),
			order("o3", 4, models.OrderStatusCompleted, 800, 60),
			order("o4", 2, models.OrderStatusCompleted, 850, 60),
		}
		assert.Empty(t, Recommendations(orders))
	})

	t.Run("no completed orders", func(t *testing.T) {
		orders := []models.OrderRecord{
			order("p", 1, models.OrderStatusPending, 100, 0),
		}
		recs := Recommendations(orders)
		assert.NotNil(t, recs)
		assert.Empty(t, recs)
	})
}
