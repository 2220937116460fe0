package nutrition

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"nutrition-workers/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected Profile
	}{
		{
			name: "catalog item with pointers",
			input: models.CatalogItem{
				Calories: floatPtr(500),
				Protein:  floatPtr(30),
				Sodium:   floatPtr(800),
			},
			expected: Profile{Calories: 500, ProteinG: 30, SodiumMG: 800},
		},
		{
			name:     "nil catalog item pointer",
			input:    (*models.CatalogItem)(nil),
			expected: Profile{},
		},
		{
			name: "map with alias keys",
			input: map[string]interface{}{
				"kcal":    600.0,
				"carbs":   "55.5",
				"protein": 20,
			},
			expected: Profile{Calories: 600, CarbsG: 55.5, ProteinG: 20},
		},
		{
			name: "nested nutrition object",
			input: map[string]interface{}{
				"nutrition": map[string]interface{}{
					"calories": 450.0,
					"sugar":    12.0,
				},
			},
			expected: Profile{Calories: 450, SugarG: 12},
		},
		{
			name: "non-numeric strings coerce to zero",
			input: map[string]interface{}{
				"calories": "lots",
				"protein":  true,
			},
			expected: Profile{},
		},
		{
			name:     "NaN and Inf sanitize to zero",
			input:    Profile{Calories: math.NaN(), ProteinG: math.Inf(1)},
			expected: Profile{},
		},
		{
			name:     "unknown shape is the zero profile",
			input:    42,
			expected: Profile{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestCompatibility_Bounds(t *testing.T) {
	profiles := []Profile{
		{},
		{Calories: 650, ProteinG: 32, CarbsG: 45, SugarG: 8, SodiumMG: 900},
		{Calories: math.Inf(1), ProteinG: math.NaN()},
		{Calories: -500, ProteinG: -10, SugarG: 1e9},
	}
	prefSets := []models.Preferences{
		{},
		{LowSugar: true},
		{LowSodium: true},
		{LowSugar: true, LowSodium: true},
	}

	for _, main := range profiles {
		for _, candidate := range profiles {
			for _, prefs := range prefSets {
				score := Compatibility(sanitize(main), sanitize(candidate), prefs)
				assert.GreaterOrEqual(t, score, 0.0)
				assert.LessOrEqual(t, score, 1.0)
				assert.False(t, math.IsNaN(score))
			}
		}
	}
}

func TestCompatibility_Penalties(t *testing.T) {
	main := Profile{Calories: 600, CarbsG: 40, SugarG: 20}

	t.Run("shared sugar halves the sugar term", func(t *testing.T) {
		sugary := Profile{Calories: 600, ProteinG: 10, SugarG: 20}
		mild := Profile{Calories: 600, ProteinG: 10, SugarG: 5}
		assert.Greater(t, Compatibility(main, mild, models.Preferences{}), Compatibility(main, sugary, models.Preferences{}))
	})

	t.Run("low sodium preference penalizes salty candidates", func(t *testing.T) {
		salty := Profile{Calories: 600, ProteinG: 10, SodiumMG: 900}
		without := Compatibility(main, salty, models.Preferences{})
		with := Compatibility(main, salty, models.Preferences{LowSodium: true})
		assert.InDelta(t, without*0.6, with, 0.0001)
	})

	t.Run("low sugar preference multiplies after clamping", func(t *testing.T) {
		sweet := Profile{Calories: 600, ProteinG: 10, SugarG: 9}
		without := Compatibility(main, sweet, models.Preferences{})
		with := Compatibility(main, sweet, models.Preferences{LowSugar: true})
		assert.InDelta(t, without*0.7, with, 0.0001)
	})

	t.Run("zero-carb main divides protein by ten", func(t *testing.T) {
		noCarbs := Profile{Calories: 600}
		candidate := Profile{Calories: 600, ProteinG: 5}
		// proteinScore = clamp01(5/10*2) = 1.0
		score := Compatibility(noCarbs, candidate, models.Preferences{})
		assert.InDelta(t, 0.45+0.4+0.15, score, 0.0001)
	})
}

func TestPrice(t *testing.T) {
	tests := []struct {
		name     string
		calories float64
		expected float64
	}{
		{name: "floor for zero", calories: 0, expected: 2.00},
		{name: "floor for negative", calories: -100, expected: 2.00},
		{name: "floor for tiny", calories: 150, expected: 2.00},
		{name: "one cent per calorie", calories: 550, expected: 5.50},
		{name: "ceiling", calories: 2000, expected: 15.00},
		{name: "NaN prices at the floor", calories: math.NaN(), expected: 2.00},
		{name: "Inf prices at the floor", calories: math.Inf(1), expected: 2.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Price(tt.calories), 0.0001)
		})
	}
}

func TestDisplayPrice(t *testing.T) {
	t.Run("stored price wins", func(t *testing.T) {
		item := models.CatalogItem{Price: floatPtr(8.75), Calories: floatPtr(550)}
		assert.InDelta(t, 8.75, DisplayPrice(item), 0.0001)
	})

	t.Run("non-positive stored price falls back to calories", func(t *testing.T) {
		item := models.CatalogItem{Price: floatPtr(0), Calories: floatPtr(550)}
		assert.InDelta(t, 5.50, DisplayPrice(item), 0.0001)
	})

	t.Run("no price and no calories is the floor", func(t *testing.T) {
		assert.InDelta(t, 2.00, DisplayPrice(models.CatalogItem{}), 0.0001)
	})
}
