// internal/storage/catalog/memory.go
package catalog

import (
	"context"
	"sort"

	"nutrition-workers/internal/models"
	"nutrition-workers/internal/nutrition"
	"nutrition-workers/internal/predicate"
)

// MemoryStore is an in-memory catalog sharing the store interface, used by
// tests and local development. Predicates run through the in-memory Eval so
// both stores agree on filter semantics.
type MemoryStore struct {
	items map[string]models.CatalogItem
}

func NewMemoryStore(items ...models.CatalogItem) *MemoryStore {
	m := &MemoryStore{items: make(map[string]models.CatalogItem, len(items))}
	for _, item := range items {
		m.items[item.ID] = item
	}
	return m
}

func (m *MemoryStore) Put(item models.CatalogItem) {
	m.items[item.ID] = item
}

func (m *MemoryStore) Search(ctx context.Context, filter predicate.Node, sortDir models.SortDirective) ([]models.CatalogItem, error) {
	matched := make([]models.CatalogItem, 0, len(m.items))
	for _, item := range m.items {
		if filter.Eval(itemDoc(item)) {
			matched = append(matched, item)
		}
	}

	// Deterministic base order regardless of map iteration.
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	if !sortDir.IsZero() {
		field := sortDir.Field
		sort.SliceStable(matched, func(i, j int) bool {
			a, aok := numericField(matched[i], field)
			b, bok := numericField(matched[j], field)
			if aok != bok {
				return aok // items missing the field sort last
			}
			if !aok {
				return false
			}
			if sortDir.Descending {
				return a > b
			}
			return a < b
		})
	}
	return matched, nil
}

func (m *MemoryStore) GetItem(ctx context.Context, id string) (*models.CatalogItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (m *MemoryStore) ItemsByVendor(ctx context.Context, vendor, excludeID string, limit int) ([]models.CatalogItem, error) {
	matched := make([]models.CatalogItem, 0)
	for _, item := range m.items {
		if item.VendorName == vendor && item.ID != excludeID {
			matched = append(matched, item)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// itemDoc flattens an item into the document shape predicates evaluate over.
func itemDoc(item models.CatalogItem) map[string]interface{} {
	return map[string]interface{}{
		"id":                 item.ID,
		models.FieldVendorName:  item.VendorName,
		models.FieldItemName:    item.ItemName,
		models.FieldCalories:    item.Calories,
		models.FieldProtein:     item.Protein,
		models.FieldFat:         item.Fat,
		models.FieldCarbs:       item.Carbs,
		models.FieldSugar:       item.Sugar,
		models.FieldSodium:      item.Sodium,
		models.FieldIngredients: item.Ingredients,
	}
}

func numericField(item models.CatalogItem, field string) (float64, bool) {
	var p *float64
	switch field {
	case models.FieldCalories:
		p = item.Calories
	case models.FieldProtein:
		p = item.Protein
	case models.FieldFat:
		p = item.Fat
	case models.FieldCarbs:
		p = item.Carbs
	case models.FieldSugar:
		p = item.Sugar
	case models.FieldSodium:
		p = item.Sodium
	case "price":
		// Price sorts on the same display price the workers return.
		return nutrition.DisplayPrice(item), true
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}
