// Package combo recommends complementary items for a main item. Persisted
// co-occurrence counters drive the primary path; items never ordered together
// with anything fall back to vendor-mates. An unknown main item is not an
// error, it yields an empty suggestion list.
package combo

import (
	"context"

	"nutrition-workers/internal/common/logger"
	"nutrition-workers/internal/models"
	"nutrition-workers/internal/nutrition"
)

// FrequencyStore reads persisted co-occurrence counters.
type FrequencyStore interface {
	TopForItem(ctx context.Context, mainItemID string, limit int) ([]models.ComboFrequency, error)
}

// CatalogStore reads catalog items. GetItem returns (nil, nil) for an unknown
// id.
type CatalogStore interface {
	GetItem(ctx context.Context, id string) (*models.CatalogItem, error)
	ItemsByVendor(ctx context.Context, vendor, excludeID string, limit int) ([]models.CatalogItem, error)
}

type Recommender struct {
	frequencies FrequencyStore
	catalog     CatalogStore
	logger      logger.Logger
}

func NewRecommender(frequencies FrequencyStore, catalog CatalogStore, log logger.Logger) *Recommender {
	return &Recommender{
		frequencies: frequencies,
		catalog:     catalog,
		logger: log.With(map[string]interface{}{
			"component": "combo-recommender",
		}),
	}
}

// Recommend returns up to limit scored suggestions for the main item.
func (r *Recommender) Recommend(ctx context.Context, mainItemID string, limit int, prefs models.Preferences) ([]models.ComboSuggestion, error) {
	main, err := r.catalog.GetItem(ctx, mainItemID)
	if err != nil {
		return nil, err
	}
	if main == nil {
		return []models.ComboSuggestion{}, nil
	}

	mainProfile := nutrition.Normalize(*main)

	rows, err := r.frequencies.TopForItem(ctx, mainItemID, limit)
	if err != nil {
		return nil, err
	}

	if len(rows) > 0 {
		return r.fromFrequencies(ctx, mainProfile, rows, prefs)
	}
	return r.sameVendorFallback(ctx, main, mainProfile, limit, prefs)
}

func (r *Recommender) fromFrequencies(ctx context.Context, main nutrition.Profile, rows []models.ComboFrequency, prefs models.Preferences) ([]models.ComboSuggestion, error) {
	suggestions := make([]models.ComboSuggestion, 0, len(rows))
	for _, row := range rows {
		item, err := r.catalog.GetItem(ctx, row.ComplementaryItemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			// Counter survived a catalog delete; skip it.
			r.logger.Debug("skipping counter with missing complementary item", map[string]interface{}{
				"complementaryItemId": row.ComplementaryItemID,
			})
			continue
		}

		frequency := row.Frequency
		popularity := row.Popularity
		suggestions = append(suggestions, models.ComboSuggestion{
			Item:             *item,
			Reason:           models.ReasonPopularTogether,
			Frequency:        &frequency,
			Popularity:       &popularity,
			PopularityScore:  popularityScore(row.Popularity),
			NutritionalScore: nutrition.Compatibility(main, nutrition.Normalize(*item), prefs),
		})
	}
	return suggestions, nil
}

func (r *Recommender) sameVendorFallback(ctx context.Context, main *models.CatalogItem, mainProfile nutrition.Profile, limit int, prefs models.Preferences) ([]models.ComboSuggestion, error) {
	items, err := r.catalog.ItemsByVendor(ctx, main.VendorName, main.ID, limit)
	if err != nil {
		return nil, err
	}

	suggestions := make([]models.ComboSuggestion, 0, len(items))
	for _, item := range items {
		suggestions = append(suggestions, models.ComboSuggestion{
			Item:             item,
			Reason:           models.ReasonSameVendorFallback,
			PopularityScore:  0,
			NutritionalScore: nutrition.Compatibility(mainProfile, nutrition.Normalize(item), prefs),
		})
	}
	return suggestions, nil
}

// popularityScore normalizes a raw popularity counter into [0,1] against a
// 1000-order ceiling.
func popularityScore(popularity int) float64 {
	score := float64(popularity) / 1000
	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}
