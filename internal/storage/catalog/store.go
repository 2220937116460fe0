// Package catalog is the Elasticsearch adapter for the food item index. It
// owns the predicate-to-DSL translation and the full-set fetch the ranking
// pipeline needs; pagination never happens at the store for ranked queries.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	commonerrors "nutrition-workers/internal/common/errors"
	"nutrition-workers/internal/common/logger"
	"nutrition-workers/internal/models"
	"nutrition-workers/internal/predicate"
)

// DefaultFetchCeiling bounds the full-set fetch behind rank-then-paginate.
const DefaultFetchCeiling = 10000

type Store struct {
	client       *elasticsearch.Client
	index        string
	fetchCeiling int
	logger       logger.Logger
}

func NewStore(client *elasticsearch.Client, index string, log logger.Logger) *Store {
	return &Store{
		client:       client,
		index:        index,
		fetchCeiling: DefaultFetchCeiling,
		logger: log.With(map[string]interface{}{
			"component": "catalog-store",
			"index":     index,
		}),
	}
}

// Search returns every item matching the predicate, up to the fetch ceiling,
// optionally sorted by the directive. Callers rank and paginate in memory.
func (s *Store) Search(ctx context.Context, filter predicate.Node, sort models.SortDirective) ([]models.CatalogItem, error) {
	body := map[string]interface{}{
		"query": Compile(filter),
		"size":  s.fetchCeiling,
	}
	if !sort.IsZero() {
		order := "asc"
		if sort.Descending {
			order = "desc"
		}
		body["sort"] = []interface{}{
			map[string]interface{}{
				sort.Field: map[string]interface{}{
					"order":         order,
					"unmapped_type": "float",
				},
			},
		}
	}

	raw, _ := json.Marshal(body)
	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(raw)),
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, commonerrors.NewCatalogTimeoutError()
		}
		return nil, commonerrors.NewCatalogQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, commonerrors.NewCatalogQueryFailedError(fmt.Errorf("search returned %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.CatalogItem `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, commonerrors.NewCatalogQueryFailedError(fmt.Errorf("decode search response: %w", err))
	}

	items := make([]models.CatalogItem, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		items = append(items, hit.Source)
	}

	s.logger.Debug("catalog search", map[string]interface{}{
		"hits": len(items),
	})
	return items, nil
}

// GetItem fetches one item by document id. An unknown id returns (nil, nil).
func (s *Store) GetItem(ctx context.Context, id string) (*models.CatalogItem, error) {
	req := esapi.GetRequest{
		Index:      s.index,
		DocumentID: id,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, commonerrors.NewCatalogTimeoutError()
		}
		return nil, commonerrors.NewCatalogQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, nil
	}
	if res.IsError() {
		return nil, commonerrors.NewCatalogQueryFailedError(fmt.Errorf("get returned %s", res.Status()))
	}

	var parsed struct {
		Found  bool               `json:"found"`
		Source models.CatalogItem `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, commonerrors.NewCatalogQueryFailedError(fmt.Errorf("decode get response: %w", err))
	}
	if !parsed.Found {
		return nil, nil
	}
	return &parsed.Source, nil
}

// ItemsByVendor returns up to limit items from the same vendor, excluding the
// given id. Order is catalog-native.
func (s *Store) ItemsByVendor(ctx context.Context, vendor, excludeID string, limit int) ([]models.CatalogItem, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{
						"term": map[string]interface{}{
							"vendorName.keyword": vendor,
						},
					},
				},
				"must_not": []interface{}{
					map[string]interface{}{
						"ids": map[string]interface{}{
							"values": []string{excludeID},
						},
					},
				},
			},
		},
		"size": limit,
	}

	raw, _ := json.Marshal(body)
	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(raw)),
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, commonerrors.NewCatalogTimeoutError()
		}
		return nil, commonerrors.NewCatalogQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, commonerrors.NewCatalogQueryFailedError(fmt.Errorf("vendor search returned %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.CatalogItem `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, commonerrors.NewCatalogQueryFailedError(fmt.Errorf("decode vendor response: %w", err))
	}

	items := make([]models.CatalogItem, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		items = append(items, hit.Source)
	}
	return items, nil
}
