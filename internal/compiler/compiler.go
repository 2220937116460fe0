// Package compiler maps structured criteria onto the filter-predicate
// vocabulary and extracts the sort directive. Storage adapters take it from
// there; nothing here knows about any concrete store.
package compiler

import (
	"fmt"

	"nutrition-workers/internal/common/errors"
	"nutrition-workers/internal/models"
	"nutrition-workers/internal/predicate"
)

// filterableFields are the nutrient names a Range leaf may target.
var filterableFields = map[string]bool{
	models.FieldCalories: true,
	models.FieldProtein:  true,
	models.FieldFat:      true,
	models.FieldCarbs:    true,
	models.FieldSugar:    true,
	models.FieldSodium:   true,
}

// Compile turns criteria into a predicate tree and the explicit sort
// directive. A sort token smuggled in as a nutrient criterion is an
// INVALID_CRITERIA_SHAPE error: sort is presentation, never a filter leaf.
func Compile(c models.Criteria) (predicate.Node, models.SortDirective, error) {
	var children []predicate.Node

	for field, bounds := range c.Nutrients {
		if field == "sort" || field == models.SortPriceAsc || field == models.SortPriceDesc {
			return predicate.Node{}, models.SortDirective{},
				errors.NewInvalidCriteriaShapeError(fmt.Sprintf("sort directive %q compiled as a field filter", field))
		}
		if !filterableFields[field] {
			return predicate.Node{}, models.SortDirective{},
				errors.NewInvalidCriteriaShapeError(fmt.Sprintf("unknown criteria field %q", field))
		}
		if bounds.Min == nil && bounds.Max == nil {
			continue
		}
		children = append(children, predicate.Range(field, bounds.Min, bounds.Max))
	}

	if c.Name != "" {
		children = append(children, predicate.ContainsCI(models.FieldItemName, c.Name))
	}

	sort, err := sortDirective(c.Sort)
	if err != nil {
		return predicate.Node{}, models.SortDirective{}, err
	}

	if len(children) == 0 {
		return predicate.MatchAll(), sort, nil
	}
	return predicate.And(children...), sort, nil
}

func sortDirective(token string) (models.SortDirective, error) {
	switch token {
	case models.SortUnset:
		return models.SortDirective{}, nil
	case models.SortPriceAsc:
		return models.SortDirective{Field: "price"}, nil
	case models.SortPriceDesc:
		return models.SortDirective{Field: "price", Descending: true}, nil
	default:
		return models.SortDirective{},
			errors.NewInvalidCriteriaShapeError(fmt.Sprintf("unknown sort directive %q", token))
	}
}

// DefaultSort derives a sort when the criteria carry none: a protein floor
// sorts protein-rich items first; otherwise a calorie cap sorts lightest
// first; otherwise a fat cap sorts leanest first.
func DefaultSort(c models.Criteria) models.SortDirective {
	if bounds, ok := c.Nutrients[models.FieldProtein]; ok && bounds.Min != nil {
		return models.SortDirective{Field: models.FieldProtein, Descending: true}
	}
	if bounds, ok := c.Nutrients[models.FieldCalories]; ok && bounds.Max != nil {
		return models.SortDirective{Field: models.FieldCalories}
	}
	if bounds, ok := c.Nutrients[models.FieldFat]; ok && bounds.Max != nil {
		return models.SortDirective{Field: models.FieldFat}
	}
	return models.SortDirective{}
}
