// internal/storage/catalog/compile.go
package catalog

// Compile translates a filter-predicate tree into an Elasticsearch query
// fragment. This is the only place in the repository where the predicate
// vocabulary meets the ES DSL.

import (
	"nutrition-workers/internal/predicate"
)

func Compile(n predicate.Node) map[string]interface{} {
	switch n.Kind {
	case predicate.KindMatchAll:
		return map[string]interface{}{"match_all": map[string]interface{}{}}

	case predicate.KindAnd:
		if len(n.Children) == 0 {
			return map[string]interface{}{"match_all": map[string]interface{}{}}
		}
		must := make([]interface{}, 0, len(n.Children))
		for _, c := range n.Children {
			must = append(must, Compile(c))
		}
		return map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		}

	case predicate.KindOr:
		should := make([]interface{}, 0, len(n.Children))
		for _, c := range n.Children {
			should = append(should, Compile(c))
		}
		return map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
			},
		}

	case predicate.KindNot:
		mustNot := make([]interface{}, 0, len(n.Children))
		for _, c := range n.Children {
			mustNot = append(mustNot, Compile(c))
		}
		return map[string]interface{}{
			"bool": map[string]interface{}{"must_not": mustNot},
		}

	case predicate.KindRange:
		bounds := map[string]interface{}{}
		if n.Min != nil {
			bounds["gte"] = *n.Min
		}
		if n.Max != nil {
			bounds["lte"] = *n.Max
		}
		return map[string]interface{}{
			"range": map[string]interface{}{n.Field: bounds},
		}

	case predicate.KindContainsCI:
		return wildcardQuery(n.Field, n.Substring)

	case predicate.KindNotContainsCI:
		return map[string]interface{}{
			"bool": map[string]interface{}{
				"must_not": []interface{}{wildcardQuery(n.Field, n.Substring)},
			},
		}

	default:
		// Unknown nodes match nothing rather than everything.
		return map[string]interface{}{"match_none": map[string]interface{}{}}
	}
}

// wildcardQuery implements case-insensitive substring containment. On
// list-valued fields the wildcard runs per element, matching the in-memory
// Eval semantics.
func wildcardQuery(field, substring string) map[string]interface{} {
	return map[string]interface{}{
		"wildcard": map[string]interface{}{
			field: map[string]interface{}{
				"value":            "*" + substring + "*",
				"case_insensitive": true,
			},
		},
	}
}
