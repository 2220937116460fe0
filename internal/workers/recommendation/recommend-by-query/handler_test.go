package recommendbyquery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "nutrition-workers/internal/common/errors"
	"nutrition-workers/internal/common/logger"
	"nutrition-workers/internal/models"
	"nutrition-workers/internal/resolver"
	"nutrition-workers/internal/storage/catalog"
)

// ==========================
// Test Helper Functions
// ==========================

type stubParser struct {
	criteria *models.Criteria
	err      error
}

func (s *stubParser) ParseCriteria(ctx context.Context, query string, previous *models.Criteria) (*models.Criteria, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.criteria, nil
}

func createTestConfig() *Config {
	return &Config{
		MaxResults: 50,
		Timeout:    5 * time.Second,
	}
}

func floatPtr(v float64) *float64 { return &v }

func createTestCatalog() *catalog.MemoryStore {
	return catalog.NewMemoryStore(
		models.CatalogItem{
			ID:         "item-1",
			VendorName: "Green Bowl",
			ItemName:   "Grilled Chicken Salad",
			Calories:   floatPtr(420),
			Protein:    floatPtr(38),
			Ingredients: []string{
				"chicken", "lettuce", "tomato",
			},
		},
		models.CatalogItem{
			ID:         "item-2",
			VendorName: "Pasta Hut",
			ItemName:   "Creamy Alfredo",
			Calories:   floatPtr(980),
			Protein:    floatPtr(22),
			Ingredients: []string{
				"pasta", "cream", "parmesan",
			},
		},
		models.CatalogItem{
			ID:         "item-3",
			VendorName: "Green Bowl",
			ItemName:   "Tofu Power Bowl",
			Calories:   floatPtr(510),
			Protein:    floatPtr(30),
			Ingredients: []string{
				"tofu", "rice", "broccoli",
			},
		},
	)
}

func createTestHandler(t *testing.T, parser *stubParser) *Handler {
	log := logger.NewTestLogger(t)
	res := resolver.New(parser, log)
	return NewHandler(createTestConfig(), res, createTestCatalog(), log)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		parser         *stubParser
		input          *Input
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name: "structured criteria filter items",
			parser: &stubParser{
				criteria: &models.Criteria{
					Nutrients: map[string]models.NutrientRange{
						"protein": {Min: floatPtr(30)},
					},
				},
			},
			input: &Input{Query: "high protein meals"},
			validateOutput: func(t *testing.T, output *Output) {
				assert.False(t, output.UsedFallback)
				assert.Equal(t, 2, output.Count)
				require.Len(t, output.Recommendations, 2)
				// Default sort for a protein floor is protein descending.
				assert.Equal(t, "item-1", output.Recommendations[0].ID)
				assert.Equal(t, "item-3", output.Recommendations[1].ID)
			},
		},
		{
			name: "calorie ceiling with default sort ascending",
			parser: &stubParser{
				criteria: &models.Criteria{
					Nutrients: map[string]models.NutrientRange{
						"calories": {Max: floatPtr(600)},
					},
				},
			},
			input: &Input{Query: "something light"},
			validateOutput: func(t *testing.T, output *Output) {
				require.Equal(t, 2, output.Count)
				assert.Equal(t, "item-1", output.Recommendations[0].ID)
				assert.Equal(t, "item-3", output.Recommendations[1].ID)
			},
		},
		{
			name: "name criteria matches item name",
			parser: &stubParser{
				criteria: &models.Criteria{Name: "alfredo"},
			},
			input: &Input{Query: "alfredo"},
			validateOutput: func(t *testing.T, output *Output) {
				require.Equal(t, 1, output.Count)
				assert.Equal(t, "item-2", output.Recommendations[0].ID)
			},
		},
		{
			name:   "service failure falls back to keywords",
			parser: &stubParser{err: errors.New("boom")},
			input:  &Input{Query: "Chicken"},
			validateOutput: func(t *testing.T, output *Output) {
				assert.True(t, output.UsedFallback)
				require.Equal(t, 1, output.Count)
				assert.Equal(t, "item-1", output.Recommendations[0].ID)
				assert.Equal(t, "chicken", output.Criteria.Name)
			},
		},
		{
			name: "every recommendation carries a display price",
			parser: &stubParser{
				criteria: &models.Criteria{},
			},
			input: &Input{Query: "anything"},
			validateOutput: func(t *testing.T, output *Output) {
				require.Equal(t, 3, output.Count)
				for _, rec := range output.Recommendations {
					assert.GreaterOrEqual(t, rec.Price, 2.00)
					assert.LessOrEqual(t, rec.Price, 15.00)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, tt.parser)

			output, err := handler.Execute(context.Background(), tt.input)

			require.NoError(t, err)
			require.NotNil(t, output)
			assert.Equal(t, output.Count, len(output.Recommendations))
			tt.validateOutput(t, output)
		})
	}
}

// ==========================
// Edge Case Tests
// ==========================

func TestHandler_EdgeCases(t *testing.T) {
	t.Run("empty query is a validation error, not a fallback", func(t *testing.T) {
		handler := createTestHandler(t, &stubParser{err: errors.New("should not matter")})

		output, err := handler.Execute(context.Background(), &Input{Query: "   "})

		require.Error(t, err)
		assert.Nil(t, output)
		var stdErr *commonerrors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, commonerrors.ErrCodeValidationFailed, stdErr.Code)
	})

	t.Run("unknown criteria field is rejected", func(t *testing.T) {
		handler := createTestHandler(t, &stubParser{
			criteria: &models.Criteria{
				Nutrients: map[string]models.NutrientRange{
					"caffeine": {Min: floatPtr(1)},
				},
			},
		})

		output, err := handler.Execute(context.Background(), &Input{Query: "buzzy"})

		require.Error(t, err)
		assert.Nil(t, output)
	})

	t.Run("fallback with no matching keywords yields empty result", func(t *testing.T) {
		handler := createTestHandler(t, &stubParser{err: errors.New("down")})

		output, err := handler.Execute(context.Background(), &Input{Query: "zzzz qqqq"})

		require.NoError(t, err)
		assert.True(t, output.UsedFallback)
		assert.Equal(t, 0, output.Count)
		assert.Empty(t, output.Recommendations)
	})

	t.Run("result set is capped at MaxResults", func(t *testing.T) {
		log := logger.NewTestLogger(t)
		store := catalog.NewMemoryStore()
		for i := 0; i < 10; i++ {
			store.Put(models.CatalogItem{
				ID:       string(rune('a' + i)),
				ItemName: "bowl",
			})
		}
		res := resolver.New(&stubParser{criteria: &models.Criteria{}}, log)
		cfg := createTestConfig()
		cfg.MaxResults = 3
		handler := NewHandler(cfg, res, store, log)

		output, err := handler.Execute(context.Background(), &Input{Query: "bowl"})

		require.NoError(t, err)
		assert.Equal(t, 3, output.Count)
	})
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkHandler_Execute(b *testing.B) {
	log := logger.NewNoOpLogger()
	res := resolver.New(&stubParser{criteria: &models.Criteria{}}, log)
	h := NewHandler(createTestConfig(), res, createTestCatalog(), log)
	input := &Input{Query: "anything"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = h.Execute(context.Background(), input)
	}
}
