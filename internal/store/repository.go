package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"institute-service/common/metrics"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrLimitReached = errors.New("limit reached")
)

// Record is implemented by every owner-scoped model.
type Record interface {
	PrimaryKey() uuid.UUID
	// Assign sets the primary key and the owner reference.
	Assign(id, owner uuid.UUID)
}

// toucher is implemented by models that keep an updated_at column.
type toucher interface {
	Touch(now time.Time)
}

// Table describes how one entity is stored.
type Table struct {
	Name        string
	OwnerColumn string
	Order       []Order
	Editable    []string
	Relations   []string
}

// Repository is the owner-scoped CRUD layer shared by every entity.
// Each call filters on the owner column, so rows of other owners are invisible:
// they are never listed, and updating or deleting them reports ErrNotFound.
type Repository[E Record] struct {
	db      bun.IDB
	table   Table
	newRow  func() E
	metrics *metrics.Metrics
}

func New[E Record](db bun.IDB, table Table, newRow func() E, m *metrics.Metrics) *Repository[E] {
	if table.OwnerColumn == "" {
		table.OwnerColumn = "user_id"
	}
	return &Repository[E]{
		db:      db,
		table:   table,
		newRow:  newRow,
		metrics: m,
	}
}

// WithTx returns a copy of the repository bound to tx.
func (r *Repository[E]) WithTx(tx bun.IDB) *Repository[E] {
	clone := *r
	clone.db = tx
	return &clone
}

func (r *Repository[E]) Table() Table {
	return r.table
}

// List returns the owner's rows in the table's order unless opts override it.
func (r *Repository[E]) List(ctx context.Context, owner uuid.UUID, opts ...Option) ([]E, error) {
	return r.list(ctx, &owner, opts)
}

// ListAcrossOwners runs the same query without the owner filter.
// Only public lookups and explicitly configured shared feeds use it.
func (r *Repository[E]) ListAcrossOwners(ctx context.Context, opts ...Option) ([]E, error) {
	return r.list(ctx, nil, opts)
}

func (r *Repository[E]) list(ctx context.Context, owner *uuid.UUID, opts []Option) ([]E, error) {
	start := time.Now()
	q := buildQuery(r.table.Order, opts)

	rows := make([]E, 0)
	sel := r.db.NewSelect().Model(&rows)
	for _, rel := range r.table.Relations {
		sel = sel.Relation(rel)
	}
	if owner != nil {
		sel = r.whereOwner(sel, *owner)
	}
	sel = applyQuery(sel, q)

	err := sel.Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", r.table.Name, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table.Name, err)
	}
	r.metrics.Database.RecordRows(ctx, r.table.Name, len(rows))
	return rows, nil
}

func (r *Repository[E]) Get(ctx context.Context, owner, id uuid.UUID) (E, error) {
	start := time.Now()
	row := r.newRow()
	sel := r.db.NewSelect().Model(row)
	for _, rel := range r.table.Relations {
		sel = sel.Relation(rel)
	}
	err := r.whereOwner(sel, owner).
		Where("?TableAlias.id = ?", id).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", r.table.Name, time.Since(start), err)

	if err != nil {
		var zero E
		if errors.Is(err, sql.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, fmt.Errorf("get %s: %w", r.table.Name, err)
	}
	return row, nil
}

// First returns the owner's first row in table order, or ErrNotFound.
func (r *Repository[E]) First(ctx context.Context, owner uuid.UUID) (E, error) {
	rows, err := r.List(ctx, owner, Limit(1))
	if err != nil {
		var zero E
		return zero, err
	}
	if len(rows) == 0 {
		var zero E
		return zero, ErrNotFound
	}
	return rows[0], nil
}

// Insert assigns a fresh id and the owner, then stores row.
// Server-side defaults are read back into row.
func (r *Repository[E]) Insert(ctx context.Context, owner uuid.UUID, row E) (E, error) {
	start := time.Now()
	row.Assign(uuid.New(), owner)

	_, err := r.db.NewInsert().Model(row).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", r.table.Name, time.Since(start), err)

	if err != nil {
		var zero E
		return zero, fmt.Errorf("insert %s: %w", r.table.Name, err)
	}
	return row, nil
}

// InsertCapped inserts row only while the owner holds fewer than limit rows.
// A per-owner advisory lock serialises concurrent inserts for the same table.
func (r *Repository[E]) InsertCapped(ctx context.Context, owner uuid.UUID, row E, limit int) (E, error) {
	var created E
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext(?))", r.table.Name+":"+owner.String()); err != nil {
			return fmt.Errorf("lock %s: %w", r.table.Name, err)
		}

		txRepo := r.WithTx(tx)
		n, err := txRepo.Count(ctx, owner)
		if err != nil {
			return err
		}
		if n >= limit {
			return ErrLimitReached
		}

		created, err = txRepo.Insert(ctx, owner, row)
		return err
	})
	return created, err
}

// InsertSingleton creates the owner's only row unless one already exists,
// then returns whichever row is stored. The table needs a unique owner index.
func (r *Repository[E]) InsertSingleton(ctx context.Context, owner uuid.UUID, row E) (E, error) {
	start := time.Now()
	row.Assign(uuid.New(), owner)

	_, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (?) DO NOTHING", bun.Ident(r.table.OwnerColumn)).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", r.table.Name, time.Since(start), err)

	if err != nil {
		var zero E
		return zero, fmt.Errorf("insert %s: %w", r.table.Name, err)
	}
	return r.First(ctx, owner)
}

// Update overwrites the table's editable columns of an owned row.
func (r *Repository[E]) Update(ctx context.Context, owner uuid.UUID, row E) (E, error) {
	start := time.Now()
	row.Assign(row.PrimaryKey(), owner)
	if t, ok := any(row).(toucher); ok {
		t.Touch(time.Now())
	}

	q := r.db.NewUpdate().Model(row)
	if len(r.table.Editable) > 0 {
		q = q.Column(r.table.Editable...)
	}
	result, err := q.
		WherePK().
		Where("?TableAlias.? = ?", bun.Ident(r.table.OwnerColumn), owner).
		Returning("*").
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", r.table.Name, time.Since(start), err)

	var zero E
	if err != nil {
		return zero, fmt.Errorf("update %s: %w", r.table.Name, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return zero, err
	}
	if rowsAffected == 0 {
		return zero, ErrNotFound
	}
	return row, nil
}

// Delete removes an owned row. Deleting a missing or foreign row is ErrNotFound.
func (r *Repository[E]) Delete(ctx context.Context, owner, id uuid.UUID) error {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model(r.newRow()).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.? = ?", bun.Ident(r.table.OwnerColumn), owner).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", r.table.Name, time.Since(start), err)

	if err != nil {
		return fmt.Errorf("delete %s: %w", r.table.Name, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository[E]) Count(ctx context.Context, owner uuid.UUID) (int, error) {
	start := time.Now()
	n, err := r.whereOwner(r.db.NewSelect().Model(r.newRow()), owner).Count(ctx)

	r.metrics.Database.RecordQuery(ctx, "count", r.table.Name, time.Since(start), err)

	if err != nil {
		return 0, fmt.Errorf("count %s: %w", r.table.Name, err)
	}
	return n, nil
}

// Distinct returns the owner's distinct non-empty values of column, sorted.
func (r *Repository[E]) Distinct(ctx context.Context, owner uuid.UUID, column string) ([]string, error) {
	start := time.Now()
	values := make([]string, 0)
	err := r.whereOwner(r.db.NewSelect().Model(r.newRow()), owner).
		ColumnExpr("DISTINCT ?TableAlias.? AS value", bun.Ident(column)).
		Where("?TableAlias.? IS NOT NULL", bun.Ident(column)).
		Where("?TableAlias.? <> ''", bun.Ident(column)).
		OrderExpr("value ASC").
		Scan(ctx, &values)

	r.metrics.Database.RecordQuery(ctx, "select", r.table.Name, time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("distinct %s.%s: %w", r.table.Name, column, err)
	}
	return values, nil
}

func (r *Repository[E]) whereOwner(q *bun.SelectQuery, owner uuid.UUID) *bun.SelectQuery {
	return q.Where("?TableAlias.? = ?", bun.Ident(r.table.OwnerColumn), owner)
}

func applyQuery(sel *bun.SelectQuery, q Query) *bun.SelectQuery {
	for _, f := range q.filters {
		sel = sel.Where("?TableAlias.? = ?", bun.Ident(f.column), f.value)
	}
	if q.search != "" && len(q.searchColumns) > 0 {
		pattern := containsPattern(q.search)
		sel = sel.WhereGroup(" AND ", func(g *bun.SelectQuery) *bun.SelectQuery {
			for _, col := range q.searchColumns {
				g = g.WhereOr("?TableAlias.? ILIKE ?", bun.Ident(col), pattern)
			}
			return g
		})
	}
	for _, o := range q.order {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		sel = sel.OrderExpr("?TableAlias.? "+dir, bun.Ident(o.Column))
	}
	if q.limit > 0 {
		sel = sel.Limit(q.limit)
	}
	return sel
}
