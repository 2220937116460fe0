// Package resolver turns a natural-language query into structured criteria
// plus a compiled filter. It first attempts the language-understanding
// service; on any service failure it degrades to deterministic keyword
// matching. The branch taken is explicit in the result so callers and tests
// never have to infer it from side effects.
package resolver

import (
	"context"
	"strings"

	"nutrition-workers/internal/common/errors"
	"nutrition-workers/internal/common/logger"
	"nutrition-workers/internal/compiler"
	"nutrition-workers/internal/models"
	"nutrition-workers/internal/predicate"
)

// Parser is the language-understanding collaborator.
type Parser interface {
	ParseCriteria(ctx context.Context, query string, previous *models.Criteria) (*models.Criteria, error)
}

// Resolution is the two-branch result: either the service's criteria compiled
// to a filter, or the keyword fallback with UsedFallback set.
type Resolution struct {
	Criteria     models.Criteria
	Filter       predicate.Node
	Sort         models.SortDirective
	UsedFallback bool
}

type Resolver struct {
	parser Parser
	logger logger.Logger
}

func New(parser Parser, log logger.Logger) *Resolver {
	return &Resolver{
		parser: parser,
		logger: log.With(map[string]interface{}{
			"component": "criteria-resolver",
		}),
	}
}

// Resolve validates the query, attempts the language service, and falls back
// to keyword tokenization on any service error. An empty query is a terminal
// validation error; the fallback is never attempted for it.
func (r *Resolver) Resolve(ctx context.Context, query string, previous *models.Criteria) (*Resolution, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, errors.NewValidationFailedError("query must be a non-empty string")
	}

	criteria, err := r.parser.ParseCriteria(ctx, trimmed, previous)
	if err != nil {
		r.logger.Warn("language service unavailable, using keyword fallback", map[string]interface{}{
			"error": err.Error(),
		})
		return r.fallback(trimmed), nil
	}

	filter, sort, err := compiler.Compile(*criteria)
	if err != nil {
		return nil, err
	}
	if sort.IsZero() {
		sort = compiler.DefaultSort(*criteria)
	}

	return &Resolution{
		Criteria: *criteria,
		Filter:   filter,
		Sort:     sort,
	}, nil
}

// fallback builds the keyword filter: every case-folded whitespace token must
// match the vendor name, the item name or an ingredient. Previous criteria
// are deliberately not consulted on this path.
func (r *Resolver) fallback(query string) *Resolution {
	keywords := strings.Fields(strings.ToLower(query))

	children := make([]predicate.Node, 0, len(keywords))
	for _, kw := range keywords {
		children = append(children, predicate.Or(
			predicate.ContainsCI(models.FieldVendorName, kw),
			predicate.ContainsCI(models.FieldItemName, kw),
			predicate.ContainsCI(models.FieldIngredients, kw),
		))
	}

	return &Resolution{
		Criteria:     models.Criteria{Name: strings.Join(keywords, " ")},
		Filter:       predicate.And(children...),
		UsedFallback: true,
	}
}
