// Package ranker implements ingredient-match ranking. The query predicate
// matches by substring, while the score counts exact ingredient membership;
// an item can match the query yet score zero. The asymmetry is part of the
// contract. Ranking always runs over the entire matching set before
// pagination so concatenated pages reproduce the single global ranking.
package ranker

import (
	"sort"
	"strings"

	"nutrition-workers/internal/models"
	"nutrition-workers/internal/nutrition"
	"nutrition-workers/internal/predicate"
)

// Tokenize splits a raw comma/whitespace-delimited term list, case-folds and
// deduplicates while preserving first-seen order.
func Tokenize(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})

	seen := make(map[string]bool, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		t := strings.ToLower(strings.TrimSpace(f))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		terms = append(terms, t)
	}
	return terms
}

// NormalizeTerms tokenizes both lists and drops excluded terms that also
// appear in include: a term the caller asks for wins over its own exclusion.
func NormalizeTerms(includeRaw, excludeRaw string) (include, exclude []string) {
	include = Tokenize(includeRaw)
	exclude = Tokenize(excludeRaw)

	included := make(map[string]bool, len(include))
	for _, t := range include {
		included[t] = true
	}

	kept := exclude[:0]
	for _, t := range exclude {
		if !included[t] {
			kept = append(kept, t)
		}
	}
	return include, kept
}

// BuildIngredientQuery builds the catalog filter: every include term must
// appear as an ingredient substring and no exclude term may. Both empty means
// match everything.
func BuildIngredientQuery(include, exclude []string) predicate.Node {
	if len(include) == 0 && len(exclude) == 0 {
		return predicate.MatchAll()
	}

	children := make([]predicate.Node, 0, len(include)+len(exclude))
	for _, t := range include {
		children = append(children, predicate.ContainsCI(models.FieldIngredients, t))
	}
	for _, t := range exclude {
		children = append(children, predicate.NotContainsCI(models.FieldIngredients, t))
	}
	return predicate.And(children...)
}

// MatchScore counts include terms exactly present (case-insensitive) in the
// item's ingredient list. Substring hits do not count.
func MatchScore(item models.CatalogItem, include []string) int {
	if len(include) == 0 {
		return 0
	}
	present := make(map[string]bool, len(item.Ingredients))
	for _, ing := range item.Ingredients {
		present[strings.ToLower(strings.TrimSpace(ing))] = true
	}

	score := 0
	for _, t := range include {
		if present[t] {
			score++
		}
	}
	return score
}

// Rank scores every candidate, sorts the full set and slices out one page.
// Order: match score descending, calories ascending with missing calories
// last, item id as the final deterministic tiebreak. Returns the page and the
// total count of the full ranked set.
func Rank(items []models.CatalogItem, include []string, page, limit int) ([]models.RankedItem, int) {
	ranked := make([]models.RankedItem, 0, len(items))
	for _, item := range items {
		ranked = append(ranked, models.RankedItem{
			CatalogItem: item,
			MatchScore:  MatchScore(item, include),
			Price:       nutrition.DisplayPrice(item),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.MatchScore != b.MatchScore {
			return a.MatchScore > b.MatchScore
		}
		switch {
		case a.Calories == nil && b.Calories == nil:
			return a.ID < b.ID
		case a.Calories == nil:
			return false
		case b.Calories == nil:
			return true
		case *a.Calories != *b.Calories:
			return *a.Calories < *b.Calories
		}
		return a.ID < b.ID
	})

	total := len(ranked)

	skip := (page - 1) * limit
	if skip < 0 {
		skip = 0
	}
	if skip >= total {
		return []models.RankedItem{}, total
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return ranked[skip:end], total
}
