// Package filter sorts and fuzzy-filters panel rows by index, leaving the
// underlying snapshot collections untouched.
package filter

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Column is implemented by each panel's sort column enum.
type Column[C any] interface {
	comparable
	Next() C
	Label() string
	DefaultAscending() bool
}

// Cycle advances to the next column. Moving to a different column resets the
// direction to that column's default; a single-column cycle toggles it.
func Cycle[C Column[C]](current C, ascending bool) (C, bool) {
	next := current.Next()
	if next == current {
		return current, !ascending
	}
	return next, next.DefaultAscending()
}

// Key is a sort key extracted from one row.
type Key struct {
	num  float64
	str  string
	text bool
}

// Num builds a numeric key.
func Num[N ~int | ~int32 | ~int64 | ~float64](v N) Key {
	return Key{num: float64(v)}
}

// Text builds a string key.
func Text(s string) Key {
	return Key{str: s, text: true}
}

// OptText builds a string key from a nullable column; NULL sorts as "".
func OptText(s *string) Key {
	if s == nil {
		return Text("")
	}
	return Text(*s)
}

// Compare orders two keys. Incomparable floats (NaN) compare equal.
func Compare(a, b Key) int {
	if a.text || b.text {
		return strings.Compare(a.str, b.str)
	}
	if math.IsNaN(a.num) || math.IsNaN(b.num) {
		return 0
	}
	return cmp.Compare(a.num, b.num)
}

// Table describes how one panel's rows are keyed and searched.
type Table[T any, C Column[C]] struct {
	// Key extracts the sort key for col. A nil Key leaves rows in query order.
	Key func(item *T, col C) Key
	// Search synthesizes the text matched by the fuzzy filter.
	Search func(item *T) string
}

// Indices returns the positions of items that match query, ordered by col.
// An empty query keeps every row.
func (t Table[T, C]) Indices(items []T, col C, ascending bool, query string) []int {
	indices := Match(items, t.Search, query)
	if t.Key == nil {
		return indices
	}
	slices.SortStableFunc(indices, func(a, b int) int {
		c := Compare(t.Key(&items[a], col), t.Key(&items[b], col))
		if !ascending {
			c = -c
		}
		return c
	})
	return indices
}

type source[T any] struct {
	items  []T
	search func(*T) string
}

func (s source[T]) String(i int) string { return strings.ToLower(s.search(&s.items[i])) }
func (s source[T]) Len() int            { return len(s.items) }

// Match keeps, in collection order, the items whose search text contains every
// whitespace-separated term of query as a case-insensitive subsequence.
func Match[T any](items []T, search func(*T) string, query string) []int {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 || search == nil {
		indices := make([]int, len(items))
		for i := range indices {
			indices[i] = i
		}
		return indices
	}

	src := source[T]{items: items, search: search}
	hits := make([]int, len(items))
	for _, term := range terms {
		for _, m := range fuzzy.FindFrom(term, src) {
			hits[m.Index]++
		}
	}

	indices := make([]int, 0, len(items))
	for i, n := range hits {
		if n == len(terms) {
			indices = append(indices, i)
		}
	}
	return indices
}

// Highlights returns the byte offsets of text matched by query, for rendering.
func Highlights(text, query string) []int {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil
	}
	lowered := strings.ToLower(text)
	var offsets []int
	for _, term := range terms {
		matches := fuzzy.Find(term, []string{lowered})
		if len(matches) == 0 {
			return nil
		}
		offsets = append(offsets, matches[0].MatchedIndexes...)
	}
	slices.Sort(offsets)
	return slices.Compact(offsets)
}
