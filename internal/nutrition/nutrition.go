// internal/nutrition/nutrition.go

// Package nutrition holds the pure scoring utilities shared by the
// recommendation workers: record normalization, the item-pair compatibility
// heuristic and derived pricing. Every function tolerates malformed input by
// coercing to zero; none of them return errors.
package nutrition

import (
	"encoding/json"
	"math"
	"strconv"

	"nutrition-workers/internal/models"
)

// Profile is the fixed-shape nutrition record every heterogeneous input
// normalizes into.
type Profile struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	FatG     float64 `json:"fat_g"`
	CarbsG   float64 `json:"carbs_g"`
	SugarG   float64 `json:"sugar_g"`
	SodiumMG float64 `json:"sodium_mg"`
}

// Key aliases seen across catalog import sources. First match wins.
var nutrientAliases = map[string][]string{
	"calories": {"calories", "kcal", "energy_kcal", "energy"},
	"protein":  {"protein", "protein_g", "proteins", "totalProtein"},
	"fat":      {"fat", "fat_g", "total_fat", "totalFat"},
	"carbs":    {"carbohydrates", "carbs", "carbs_g", "total_carbohydrate", "totalCarbohydrates"},
	"sugar":    {"sugar", "sugar_g", "sugars"},
	"sodium":   {"sodium", "sodium_mg"},
}

// Normalize converts a catalog item, a raw storage row or any map-shaped
// record into a Profile. Missing and non-numeric values become 0. It never
// panics: unknown shapes yield the zero profile.
func Normalize(v interface{}) Profile {
	switch rec := v.(type) {
	case Profile:
		return sanitize(rec)
	case *Profile:
		if rec == nil {
			return Profile{}
		}
		return sanitize(*rec)
	case models.CatalogItem:
		return fromItem(rec)
	case *models.CatalogItem:
		if rec == nil {
			return Profile{}
		}
		return fromItem(*rec)
	case map[string]interface{}:
		return fromMap(rec)
	default:
		return Profile{}
	}
}

func fromItem(item models.CatalogItem) Profile {
	return sanitize(Profile{
		Calories: deref(item.Calories),
		ProteinG: deref(item.Protein),
		FatG:     deref(item.Fat),
		CarbsG:   deref(item.Carbs),
		SugarG:   deref(item.Sugar),
		SodiumMG: deref(item.Sodium),
	})
}

func fromMap(rec map[string]interface{}) Profile {
	// Storage rows may nest the macros under a "nutrition" object.
	if nested, ok := rec["nutrition"].(map[string]interface{}); ok {
		rec = nested
	}
	return Profile{
		Calories: lookup(rec, "calories"),
		ProteinG: lookup(rec, "protein"),
		FatG:     lookup(rec, "fat"),
		CarbsG:   lookup(rec, "carbs"),
		SugarG:   lookup(rec, "sugar"),
		SodiumMG: lookup(rec, "sodium"),
	}
}

func lookup(rec map[string]interface{}, nutrient string) float64 {
	for _, key := range nutrientAliases[nutrient] {
		if raw, ok := rec[key]; ok {
			return coerce(raw)
		}
	}
	return 0
}

// coerce turns any value into a finite float64, defaulting to 0.
func coerce(raw interface{}) float64 {
	switch v := raw.(type) {
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return finite(f)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return finite(f)
	case *float64:
		if v == nil {
			return 0
		}
		return finite(*v)
	default:
		return 0
	}
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func sanitize(p Profile) Profile {
	return Profile{
		Calories: finite(p.Calories),
		ProteinG: finite(p.ProteinG),
		FatG:     finite(p.FatG),
		CarbsG:   finite(p.CarbsG),
		SugarG:   finite(p.SugarG),
		SodiumMG: finite(p.SodiumMG),
	}
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Clamp01 bounds a score to [0,1], mapping NaN and infinities to 0.
func Clamp01(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Compatibility scores how well a candidate item complements a main item.
// Calorie parity weighs 45%, protein complement 40%, the shared-sugar penalty
// 15%; preference penalties multiply the weighted sum. The result is always
// in [0,1] regardless of input quality.
func Compatibility(main, candidate Profile, prefs models.Preferences) float64 {
	calBalance := Clamp01(1 - math.Abs(main.Calories-candidate.Calories)/math.Max(1, main.Calories))

	var proteinRatio float64
	if main.CarbsG > 0 {
		proteinRatio = candidate.ProteinG / main.CarbsG
	} else {
		proteinRatio = candidate.ProteinG / 10
	}
	proteinScore := Clamp01(proteinRatio * 2)

	sugarPenalty := 1.0
	if main.SugarG > 15 && candidate.SugarG > 15 {
		sugarPenalty = 0.5
	}

	raw := 0.45*calBalance + 0.4*proteinScore + 0.15*sugarPenalty

	sodiumPenalty := 1.0
	if prefs.LowSodium && candidate.SodiumMG > 700 {
		sodiumPenalty = 0.6
	}
	score := Clamp01(raw * sodiumPenalty)

	if prefs.LowSugar && candidate.SugarG > 8 {
		score = Clamp01(score * 0.7)
	}

	return score
}

// Price bounds for the calorie-derived price.
const (
	minPrice = 2.00
	maxPrice = 15.00
)

// Price derives a display price from calories: one cent per calorie, clamped
// to [2.00, 15.00]. Missing or non-positive calories price at the floor.
func Price(calories float64) float64 {
	if math.IsNaN(calories) || math.IsInf(calories, 0) || calories <= 0 {
		return minPrice
	}
	p := calories * 0.01
	if p < minPrice {
		return minPrice
	}
	if p > maxPrice {
		return maxPrice
	}
	return p
}

// DisplayPrice prefers an explicitly stored price when it is a positive
// finite number, falling back to the calorie-derived price.
func DisplayPrice(item models.CatalogItem) float64 {
	if item.Price != nil {
		if p := finite(*item.Price); p > 0 {
			return p
		}
	}
	return Price(deref(item.Calories))
}
