// internal/predicate/predicate.go

// Package predicate defines the storage-agnostic filter tree compiled from
// criteria and ingredient queries. Storage adapters own the translation to
// their native query language; Eval gives an in-memory reference semantics
// used by tests and the memory-backed catalog store.
package predicate

import "strings"

// Kind discriminates predicate nodes.
type Kind string

const (
	KindAnd           Kind = "and"
	KindOr            Kind = "or"
	KindNot           Kind = "not"
	KindRange         Kind = "range"
	KindContainsCI    Kind = "contains_ci"
	KindNotContainsCI Kind = "not_contains_ci"
	KindMatchAll      Kind = "match_all"
)

// Node is one node of the filter tree. Leaf fields are only meaningful for
// the leaf kinds; Children only for and/or/not.
type Node struct {
	Kind      Kind     `json:"kind"`
	Children  []Node   `json:"children,omitempty"`
	Field     string   `json:"field,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Substring string   `json:"substring,omitempty"`
}

// MatchAll matches every document.
func MatchAll() Node { return Node{Kind: KindMatchAll} }

// And matches documents satisfying every child. With no children it matches
// everything.
func And(children ...Node) Node { return Node{Kind: KindAnd, Children: children} }

// Or matches documents satisfying at least one child.
func Or(children ...Node) Node { return Node{Kind: KindOr, Children: children} }

// Not inverts a single child.
func Not(child Node) Node { return Node{Kind: KindNot, Children: []Node{child}} }

// Range matches a numeric field inside inclusive bounds; a nil side is open.
func Range(field string, min, max *float64) Node {
	return Node{Kind: KindRange, Field: field, Min: min, Max: max}
}

// ContainsCI matches when the field contains the substring, case-insensitive.
// For list-valued fields the substring may match any element.
func ContainsCI(field, substring string) Node {
	return Node{Kind: KindContainsCI, Field: field, Substring: substring}
}

// NotContainsCI is the negation of ContainsCI.
func NotContainsCI(field, substring string) Node {
	return Node{Kind: KindNotContainsCI, Field: field, Substring: substring}
}

// IsMatchAll reports whether the node filters nothing (MatchAll or an empty
// And).
func (n Node) IsMatchAll() bool {
	return n.Kind == KindMatchAll || (n.Kind == KindAnd && len(n.Children) == 0)
}

// Eval applies the predicate to a flat document. Field values may be numbers,
// strings or string lists.
func (n Node) Eval(doc map[string]interface{}) bool {
	switch n.Kind {
	case KindMatchAll:
		return true
	case KindAnd:
		for _, c := range n.Children {
			if !c.Eval(doc) {
				return false
			}
		}
		return true
	case KindOr:
		for _, c := range n.Children {
			if c.Eval(doc) {
				return true
			}
		}
		return len(n.Children) == 0
	case KindNot:
		if len(n.Children) != 1 {
			return false
		}
		return !n.Children[0].Eval(doc)
	case KindRange:
		val, ok := numericValue(doc[n.Field])
		if !ok {
			return false
		}
		if n.Min != nil && val < *n.Min {
			return false
		}
		if n.Max != nil && val > *n.Max {
			return false
		}
		return true
	case KindContainsCI:
		return containsCI(doc[n.Field], n.Substring)
	case KindNotContainsCI:
		return !containsCI(doc[n.Field], n.Substring)
	default:
		return false
	}
}

func numericValue(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case *float64:
		if v == nil {
			return 0, false
		}
		return *v, true
	default:
		return 0, false
	}
}

func containsCI(raw interface{}, substring string) bool {
	needle := strings.ToLower(substring)
	switch v := raw.(type) {
	case string:
		return strings.Contains(strings.ToLower(v), needle)
	case []string:
		for _, s := range v {
			if strings.Contains(strings.ToLower(s), needle) {
				return true
			}
		}
		return false
	case []interface{}:
		for _, e := range v {
			if s, ok := e.(string); ok && strings.Contains(strings.ToLower(s), needle) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
