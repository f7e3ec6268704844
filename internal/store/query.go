package store

import "strings"

// Order is a single ORDER BY term on the repository's own table.
type Order struct {
	Column string
	Desc   bool
}

func Asc(column string) Order  { return Order{Column: column} }
func Desc(column string) Order { return Order{Column: column, Desc: true} }

type filter struct {
	column string
	value  any
}

// Query collects the optional parts of a list call.
type Query struct {
	filters       []filter
	search        string
	searchColumns []string
	order         []Order
	limit         int
}

type Option func(*Query)

// Where adds an equality filter on column.
func Where(column string, value any) Option {
	return func(q *Query) {
		q.filters = append(q.filters, filter{column: column, value: value})
	}
}

// Search matches term as a case-insensitive substring of any of columns.
// A blank term is ignored.
func Search(term string, columns ...string) Option {
	return func(q *Query) {
		q.search = strings.TrimSpace(term)
		q.searchColumns = columns
	}
}

// OrderBy replaces the table's default ordering.
func OrderBy(order ...Order) Option {
	return func(q *Query) {
		q.order = order
	}
}

// Limit caps the number of returned rows. Zero means unlimited.
func Limit(n int) Option {
	return func(q *Query) {
		q.limit = n
	}
}

func buildQuery(defaults []Order, opts []Option) Query {
	q := Query{order: defaults}
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns user input into an ILIKE pattern matching it literally.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
