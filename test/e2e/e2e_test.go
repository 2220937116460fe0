// test/e2e/e2e_test.go
//
// End-to-end pipeline tests running every worker's Execute surface against
// shared in-memory stores: catalog items flow through query and ingredient
// recommendations, order ingestion feeds combo suggestions, and order history
// feeds analytics. No broker or database is required.
package e2e

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrition-workers/internal/combo"
	"nutrition-workers/internal/common/logger"
	"nutrition-workers/internal/models"
	"nutrition-workers/internal/resolver"
	"nutrition-workers/internal/storage/catalog"
	analyzeorderhistory "nutrition-workers/internal/workers/analytics/analyze-order-history"
	trackcombofrequency "nutrition-workers/internal/workers/ingestion/track-combo-frequency"
	recommendbyingredients "nutrition-workers/internal/workers/recommendation/recommend-by-ingredients"
	recommendbyquery "nutrition-workers/internal/workers/recommendation/recommend-by-query"
	suggestcombos "nutrition-workers/internal/workers/recommendation/suggest-combos"
)

const testUserID = "0d1f7f6e-9f4a-4c3b-8f21-6a5d2e9b7c10"

func floatPtr(v float64) *float64 { return &v }

// scriptedParser stands in for the language service.
type scriptedParser struct {
	criteria *models.Criteria
	err      error
}

func (p *scriptedParser) ParseCriteria(ctx context.Context, query string, previous *models.Criteria) (*models.Criteria, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.criteria, nil
}

// memFrequencies is an in-memory counter store serving both the ingestion
// writer and the combo reader.
type memFrequencies struct {
	counts map[string]map[string]int
	order  map[string][]string
}

func newMemFrequencies() *memFrequencies {
	return &memFrequencies{
		counts: map[string]map[string]int{},
		order:  map[string][]string{},
	}
}

func (m *memFrequencies) Increment(ctx context.Context, mainItemID, complementaryItemID string) error {
	if m.counts[mainItemID] == nil {
		m.counts[mainItemID] = map[string]int{}
	}
	if m.counts[mainItemID][complementaryItemID] == 0 {
		m.order[mainItemID] = append(m.order[mainItemID], complementaryItemID)
	}
	m.counts[mainItemID][complementaryItemID]++
	return nil
}

func (m *memFrequencies) TopForItem(ctx context.Context, mainItemID string, limit int) ([]models.ComboFrequency, error) {
	ids := append([]string(nil), m.order[mainItemID]...)
	sort.SliceStable(ids, func(i, j int) bool {
		return m.counts[mainItemID][ids[i]] > m.counts[mainItemID][ids[j]]
	})
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	rows := make([]models.ComboFrequency, 0, len(ids))
	for _, id := range ids {
		freq := m.counts[mainItemID][id]
		rows = append(rows, models.ComboFrequency{
			MainItemID:          mainItemID,
			ComplementaryItemID: id,
			Frequency:           freq,
			Popularity:          freq,
		})
	}
	return rows, nil
}

// memOrders serves a fixed order history.
type memOrders struct {
	records []models.OrderRecord
}

func (m *memOrders) ListCompleted(ctx context.Context, userID string) ([]models.OrderRecord, error) {
	var out []models.OrderRecord
	for _, r := range m.records {
		if r.UserID == userID && r.Status == models.OrderStatusCompleted {
			out = append(out, r)
		}
	}
	return out, nil
}

func seedCatalog() *catalog.MemoryStore {
	return catalog.NewMemoryStore(
		models.CatalogItem{
			ID: "burger", VendorName: "Grill House", ItemName: "Classic Burger",
			Calories: floatPtr(650), Protein: floatPtr(32), Carbs: floatPtr(45),
			Sugar: floatPtr(8), Sodium: floatPtr(900),
			Ingredients: []string{"beef", "bun", "lettuce"},
		},
		models.CatalogItem{
			ID: "fries", VendorName: "Grill House", ItemName: "Crispy Fries",
			Calories: floatPtr(380), Protein: floatPtr(5), Carbs: floatPtr(48),
			Sugar: floatPtr(1), Sodium: floatPtr(400),
			Ingredients: []string{"potato", "oil", "salt"},
		},
		models.CatalogItem{
			ID: "shake", VendorName: "Grill House", ItemName: "Vanilla Shake",
			Calories: floatPtr(520), Protein: floatPtr(8), Carbs: floatPtr(70),
			Sugar:       floatPtr(55),
			Ingredients: []string{"milk", "ice cream", "vanilla"},
		},
		models.CatalogItem{
			ID: "salad", VendorName: "Green Bowl", ItemName: "Garden Salad",
			Calories: floatPtr(220), Protein: floatPtr(6), Carbs: floatPtr(18),
			Sugar:       floatPtr(5),
			Ingredients: []string{"lettuce", "tomato", "cucumber"},
		},
		models.CatalogItem{
			ID: "quinoa", VendorName: "Green Bowl", ItemName: "Quinoa Bowl",
			Calories: floatPtr(430), Protein: floatPtr(14), Carbs: floatPtr(52),
			Ingredients: []string{"quinoa", "avocado", "chickpeas"},
		},
	)
}

func TestQueryRecommendationFlow(t *testing.T) {
	log := logger.NewTestLogger(t)
	store := seedCatalog()

	t.Run("service criteria", func(t *testing.T) {
		parser := &scriptedParser{criteria: &models.Criteria{
			Nutrients: map[string]models.NutrientRange{
				models.FieldProtein: {Min: floatPtr(30)},
			},
		}}
		handler := recommendbyquery.NewHandler(
			recommendbyquery.LoadConfig(), resolver.New(parser, log), store, log)

		output, err := handler.Execute(context.Background(), &recommendbyquery.Input{Query: "high protein"})

		require.NoError(t, err)
		assert.False(t, output.UsedFallback)
		require.Equal(t, 1, output.Count)
		assert.Equal(t, "burger", output.Recommendations[0].ID)
		assert.InDelta(t, 6.50, output.Recommendations[0].Price, 0.001)
	})

	t.Run("keyword fallback", func(t *testing.T) {
		parser := &scriptedParser{err: assert.AnError}
		handler := recommendbyquery.NewHandler(
			recommendbyquery.LoadConfig(), resolver.New(parser, log), store, log)

		output, err := handler.Execute(context.Background(), &recommendbyquery.Input{Query: "fries"})

		require.NoError(t, err)
		assert.True(t, output.UsedFallback)
		require.Equal(t, 1, output.Count)
		assert.Equal(t, "fries", output.Recommendations[0].ID)
	})
}

func TestIngredientRecommendationFlow(t *testing.T) {
	log := logger.NewTestLogger(t)
	handler := recommendbyingredients.NewHandler(
		recommendbyingredients.LoadConfig(), seedCatalog(), log)

	output, err := handler.Execute(context.Background(), &recommendbyingredients.Input{
		Include: "lettuce",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, output.Total)
	require.Len(t, output.Items, 2)
	// Equal match scores, so the lower-calorie item leads.
	assert.Equal(t, "salad", output.Items[0].ID)
	assert.Equal(t, "burger", output.Items[1].ID)
}

func TestComboIngestionToSuggestionFlow(t *testing.T) {
	log := logger.NewTestLogger(t)
	store := seedCatalog()
	frequencies := newMemFrequencies()
	ctx := context.Background()

	tracker := trackcombofrequency.NewHandler(
		trackcombofrequency.LoadConfig(), frequencies, log)

	out, err := tracker.Execute(ctx, &trackcombofrequency.Input{
		OrderItems: []string{"burger", "fries", "shake"},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, out.Updated)

	out, err = tracker.Execute(ctx, &trackcombofrequency.Input{
		OrderItems: []string{"burger", "fries"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Updated)

	recommender := combo.NewRecommender(frequencies, store, log)
	suggester := suggestcombos.NewHandler(
		suggestcombos.LoadConfig(), recommender, nil, log)

	t.Run("ingested counters drive suggestions", func(t *testing.T) {
		output, err := suggester.Execute(ctx, &suggestcombos.Input{MainItemID: "burger"})

		require.NoError(t, err)
		require.Equal(t, 2, output.Count)

		first := output.Suggestions[0]
		assert.Equal(t, "fries", first.Item.ID)
		assert.Equal(t, models.ReasonPopularTogether, first.Reason)
		require.NotNil(t, first.Frequency)
		assert.Equal(t, 2, *first.Frequency)
		assert.InDelta(t, 0.002, first.PopularityScore, 0.0001)

		second := output.Suggestions[1]
		assert.Equal(t, "shake", second.Item.ID)
		require.NotNil(t, second.Frequency)
		assert.Equal(t, 1, *second.Frequency)
	})

	t.Run("uncounted item falls back to vendor mates", func(t *testing.T) {
		output, err := suggester.Execute(ctx, &suggestcombos.Input{MainItemID: "salad"})

		require.NoError(t, err)
		require.Equal(t, 1, output.Count)
		assert.Equal(t, "quinoa", output.Suggestions[0].Item.ID)
		assert.Equal(t, models.ReasonSameVendorFallback, output.Suggestions[0].Reason)
		assert.Nil(t, output.Suggestions[0].Frequency)
	})
}

func TestOrderHistoryAnalyticsFlow(t *testing.T) {
	log := logger.NewTestLogger(t)
	now := time.Now().UTC()

	orders := &memOrders{records: []models.OrderRecord{
		{
			ID: "o1", UserID: testUserID, Status: models.OrderStatusCompleted,
			TotalCalories: 650, TotalProtein: 32, TotalFat: 30, TotalCarbs: 45,
			Lines:     []models.OrderLine{{VendorName: "Grill House", ItemName: "Classic Burger", Quantity: 1}},
			CreatedAt: now.Add(-72 * time.Hour),
		},
		{
			ID: "o2", UserID: testUserID, Status: models.OrderStatusCompleted,
			TotalCalories: 380, TotalProtein: 5, TotalFat: 18, TotalCarbs: 48,
			Lines:     []models.OrderLine{{VendorName: "Grill House", ItemName: "Crispy Fries", Quantity: 1}},
			CreatedAt: now.Add(-48 * time.Hour),
		},
		{
			ID: "o3", UserID: testUserID, Status: models.OrderStatusPending,
			TotalCalories: 900,
			CreatedAt:     now.Add(-24 * time.Hour),
		},
	}}

	handler := analyzeorderhistory.NewHandler(
		analyzeorderhistory.LoadConfig(), orders, log)

	output, err := handler.Execute(context.Background(), &analyzeorderhistory.Input{
		UserID:    testUserID,
		TimeRange: models.TimeRangeMonth,
		Period:    models.PeriodDay,
	})

	require.NoError(t, err)

	// Pending orders never reach the aggregator via ListCompleted.
	assert.Equal(t, 2, output.Patterns.TotalOrders)
	assert.InDelta(t, 515, output.Patterns.AverageCalories, 0.001)
	require.NotEmpty(t, output.Patterns.MostOrderedRestaurants)
	assert.Equal(t, "Grill House", output.Patterns.MostOrderedRestaurants[0].Name)

	require.Len(t, output.Trends, 2)
	assert.Less(t, output.Trends[0].Date, output.Trends[1].Date)

	var types []string
	for _, rec := range output.Recommendations {
		types = append(types, rec.Type)
	}
	assert.Contains(t, types, models.RecommendationProteinIncrease)
}
