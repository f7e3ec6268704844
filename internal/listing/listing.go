// Package listing filters and orders in-memory snapshots of fetched rows.
package listing

import (
	"cmp"
	"slices"
	"strings"
)

// Field extracts one display value of a row for matching.
type Field[E any] func(E) string

// Filter keeps rows where term is a case-insensitive substring of any field.
// A blank term keeps every row. The input is never modified.
func Filter[E any](rows []E, term string, fields ...Field[E]) []E {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return slices.Clone(rows)
	}

	out := make([]E, 0, len(rows))
	for _, row := range rows {
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field(row)), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// SortBy returns a copy ordered by key, descending when desc is set.
// Equal keys keep their snapshot order.
func SortBy[E any, K cmp.Ordered](rows []E, key func(E) K, desc bool) []E {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b E) int {
		c := cmp.Compare(key(a), key(b))
		if desc {
			return -c
		}
		return c
	})
	return out
}

// Top returns at most n leading rows.
func Top[E any](rows []E, n int) []E {
	if n < 0 || len(rows) <= n {
		return rows
	}
	return rows[:n]
}

// Snapshot is the most recent full list result held by a screen.
// Replace swaps the whole collection; there is no merge.
type Snapshot[E any] struct {
	rows   []E
	fields []Field[E]
}

func NewSnapshot[E any](fields ...Field[E]) *Snapshot[E] {
	return &Snapshot[E]{fields: fields}
}

func (s *Snapshot[E]) Replace(rows []E) {
	s.rows = slices.Clone(rows)
}

func (s *Snapshot[E]) Rows() []E {
	return slices.Clone(s.rows)
}

func (s *Snapshot[E]) Len() int {
	return len(s.rows)
}

// Filter applies the snapshot's configured fields.
func (s *Snapshot[E]) Filter(term string) []E {
	return Filter(s.rows, term, s.fields...)
}
