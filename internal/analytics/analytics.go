// Package analytics aggregates a user's completed order history into
// nutrition patterns, chronological trends and rule-based dietary
// recommendations. Everything here is a pure transformation over rows the
// worker already fetched; only orders with status "completed" ever
// contribute.
package analytics

import (
	"sort"
	"time"

	"nutrition-workers/internal/models"
)

const (
	topListSize         = 5
	proteinTargetG      = 50
	diversityMinOrders  = 6
	calorieTrendBand    = 0.10
	calorieTrendMinimum = 4
)

// windowStart returns the inclusive lower bound for a time range. The second
// return is false for the unbounded "all" window.
func windowStart(now time.Time, timeRange string) (time.Time, bool) {
	switch timeRange {
	case models.TimeRangeWeek:
		return now.AddDate(0, 0, -7), true
	case models.TimeRangeMonth:
		return now.AddDate(0, 0, -30), true
	case models.TimeRangeYear:
		return now.AddDate(0, 0, -365), true
	default:
		return time.Time{}, false
	}
}

// completedWithin filters to completed orders inside the window, preserving
// input order.
func completedWithin(orders []models.OrderRecord, now time.Time, timeRange string) []models.OrderRecord {
	start, bounded := windowStart(now, timeRange)

	included := make([]models.OrderRecord, 0, len(orders))
	for _, o := range orders {
		if o.Status != models.OrderStatusCompleted {
			continue
		}
		if bounded && o.CreatedAt.Before(start) {
			continue
		}
		included = append(included, o)
	}
	return included
}

// AnalyzePatterns summarizes the completed orders inside the window: totals,
// arithmetic means, top-5 vendors and items, and per-macro min/max/average.
func AnalyzePatterns(orders []models.OrderRecord, now time.Time, timeRange string) models.NutritionPatterns {
	included := completedWithin(orders, now, timeRange)

	patterns := models.NutritionPatterns{
		TimeRange:              timeRange,
		TotalOrders:            len(included),
		MostOrderedRestaurants: []models.NameCount{},
		MostOrderedItems:       []models.NameCount{},
		NutritionDistribution:  map[string]models.MacroDistribution{},
	}

	if len(included) == 0 {
		return patterns
	}

	var calories, protein, fat, carbs []float64
	for _, o := range included {
		calories = append(calories, o.TotalCalories)
		protein = append(protein, o.TotalProtein)
		fat = append(fat, o.TotalFat)
		carbs = append(carbs, o.TotalCarbs)
	}

	patterns.AverageCalories = mean(calories)
	patterns.AverageProtein = mean(protein)
	patterns.AverageFat = mean(fat)
	patterns.AverageCarbs = mean(carbs)

	patterns.MostOrderedRestaurants = topCounts(included, func(l models.OrderLine) string { return l.VendorName })
	patterns.MostOrderedItems = topCounts(included, func(l models.OrderLine) string { return l.ItemName })

	patterns.NutritionDistribution = map[string]models.MacroDistribution{
		models.FieldCalories: distribution(calories),
		models.FieldProtein:  distribution(protein),
		models.FieldFat:      distribution(fat),
		models.FieldCarbs:    distribution(carbs),
	}

	return patterns
}

// topCounts builds the frequency top-N for one line attribute. Ties keep the
// order the name was first seen in.
func topCounts(orders []models.OrderRecord, key func(models.OrderLine) string) []models.NameCount {
	counts := make(map[string]int)
	var firstSeen []string

	for _, o := range orders {
		for _, line := range o.Lines {
			name := key(line)
			if name == "" {
				continue
			}
			if _, seen := counts[name]; !seen {
				firstSeen = append(firstSeen, name)
			}
			counts[name]++
		}
	}

	ranked := make([]models.NameCount, 0, len(firstSeen))
	for _, name := range firstSeen {
		ranked = append(ranked, models.NameCount{Name: name, Count: counts[name]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > topListSize {
		ranked = ranked[:topListSize]
	}
	return ranked
}

// Trends buckets completed orders by truncated date and reduces each bucket
// to aggregate nutrition. The series is sorted ascending by bucket key; the
// key formats make lexicographic and chronological order coincide.
func Trends(orders []models.OrderRecord, period string) []models.TrendPoint {
	layout := "2006-01-02"
	if period == models.PeriodMonth {
		layout = "2006-01"
	}

	buckets := make(map[string]*models.TrendPoint)
	for _, o := range orders {
		if o.Status != models.OrderStatusCompleted {
			continue
		}
		key := o.CreatedAt.Format(layout)
		point, ok := buckets[key]
		if !ok {
			point = &models.TrendPoint{Date: key}
			buckets[key] = point
		}
		point.Orders++
		point.TotalCalories += o.TotalCalories
		point.TotalProtein += o.TotalProtein
		point.TotalFat += o.TotalFat
		point.TotalCarbs += o.TotalCarbs
	}

	series := make([]models.TrendPoint, 0, len(buckets))
	for _, point := range buckets {
		if point.Orders > 0 {
			point.AverageCalories = point.TotalCalories / float64(point.Orders)
		}
		series = append(series, *point)
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Date < series[j].Date
	})
	return series
}

// Recommendations evaluates the fixed rule set over all completed orders, in
// deterministic order: protein target, vendor diversity, calorie direction.
func Recommendations(orders []models.OrderRecord) []models.Recommendation {
	completed := make([]models.OrderRecord, 0, len(orders))
	for _, o := range orders {
		if o.Status == models.OrderStatusCompleted {
			completed = append(completed, o)
		}
	}

	recommendations := []models.Recommendation{}
	if len(completed) == 0 {
		return recommendations
	}

	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].CreatedAt.Before(completed[j].CreatedAt)
	})

	if rec, ok := proteinRule(completed); ok {
		recommendations = append(recommendations, rec)
	}
	if rec, ok := diversityRule(completed); ok {
		recommendations = append(recommendations, rec)
	}
	if rec, ok := calorieTrendRule(completed); ok {
		recommendations = append(recommendations, rec)
	}
	return recommendations
}

func proteinRule(completed []models.OrderRecord) (models.Recommendation, bool) {
	var total float64
	for _, o := range completed {
		total += o.TotalProtein
	}
	avg := total / float64(len(completed))
	if avg >= proteinTargetG {
		return models.Recommendation{}, false
	}
	return models.Recommendation{
		Type:    models.RecommendationProteinIncrease,
		Message: "Average protein per order is below the recommended target; consider adding protein-rich items.",
		Current: avg,
		Target:  proteinTargetG,
	}, true
}

func diversityRule(completed []models.OrderRecord) (models.Recommendation, bool) {
	if len(completed) < diversityMinOrders {
		return models.Recommendation{}, false
	}

	vendors := make(map[string]bool)
	for _, o := range completed {
		for _, line := range o.Lines {
			if line.VendorName != "" {
				vendors[line.VendorName] = true
			}
		}
	}

	threshold := len(completed) / 3
	if len(vendors) >= threshold {
		return models.Recommendation{}, false
	}
	return models.Recommendation{
		Type:    models.RecommendationDiversity,
		Message: "Orders are concentrated on a few restaurants; trying new vendors widens nutritional variety.",
		Current: float64(len(vendors)),
		Target:  float64(threshold),
	}, true
}

// calorieTrendRule compares the recent half of the history against the first
// half and flags drifts beyond the +/-10% band.
func calorieTrendRule(completed []models.OrderRecord) (models.Recommendation, bool) {
	if len(completed) < calorieTrendMinimum {
		return models.Recommendation{}, false
	}

	mid := len(completed) / 2
	baseline := meanCalories(completed[:mid])
	recent := meanCalories(completed[mid:])
	if baseline == 0 {
		return models.Recommendation{}, false
	}

	switch {
	case recent > baseline*(1+calorieTrendBand):
		return models.Recommendation{
			Type:    models.RecommendationCalorieReduction,
			Message: "Calorie intake per order is trending up; consider lighter options.",
			Current: recent,
			Target:  baseline,
		}, true
	case recent < baseline*(1-calorieTrendBand):
		return models.Recommendation{
			Type:    models.RecommendationCalorieIncrease,
			Message: "Calorie intake per order is trending down; make sure meals stay substantial enough.",
			Current: recent,
			Target:  baseline,
		}, true
	}
	return models.Recommendation{}, false
}

func meanCalories(orders []models.OrderRecord) float64 {
	if len(orders) == 0 {
		return 0
	}
	var total float64
	for _, o := range orders {
		total += o.TotalCalories
	}
	return total / float64(len(orders))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func distribution(values []float64) models.MacroDistribution {
	if len(values) == 0 {
		return models.MacroDistribution{}
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return models.MacroDistribution{Min: min, Max: max, Average: mean(values)}
}
