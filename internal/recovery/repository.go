package recovery

import (
	"context"
	"database/sql"
	"time"

	"institute-service/common/metrics"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const tableName = "recovery_codes"

type Repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) *Repository {
	return &Repository{
		db:      db,
		metrics: m,
	}
}

// Replace drops the account's unconsumed codes and stores code, so only the newest code works.
func (r *Repository) Replace(ctx context.Context, code *Code) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		start := time.Now()
		_, err := tx.NewDelete().
			Model((*Code)(nil)).
			Where("account_id = ?", code.AccountID).
			Where("consumed_at IS NULL").
			Exec(ctx)
		r.metrics.Database.RecordQuery(ctx, "delete", tableName, time.Since(start), err)
		if err != nil {
			return err
		}

		start = time.Now()
		_, err = tx.NewInsert().Model(code).Returning("*").Exec(ctx)
		r.metrics.Database.RecordQuery(ctx, "insert", tableName, time.Since(start), err)
		return err
	})
}

// Active returns the account's newest unexpired code that has not been verified yet.
func (r *Repository) Active(ctx context.Context, accountID uuid.UUID, now time.Time) (*Code, error) {
	start := time.Now()
	code := &Code{}
	err := r.db.NewSelect().
		Model(code).
		Where("account_id = ?", accountID).
		Where("consumed_at IS NULL").
		Where("verified_at IS NULL").
		Where("expires_at > ?", now).
		OrderExpr("created_at DESC").
		Limit(1).
		Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", tableName, time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return code, nil
}

func (r *Repository) RecordAttempt(ctx context.Context, id int64) error {
	start := time.Now()
	_, err := r.db.NewUpdate().
		Model((*Code)(nil)).
		Set("attempts = attempts + 1").
		Where("id = ?", id).
		Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "update", tableName, time.Since(start), err)
	return err
}

// Grant spends the code and attaches the grant token. A code that was already verified
// yields sql.ErrNoRows.
func (r *Repository) Grant(ctx context.Context, id int64, token string, expiresAt, now time.Time) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model((*Code)(nil)).
		Set("grant_token = ?", token).
		Set("grant_expires_at = ?", expiresAt).
		Set("verified_at = ?", now).
		Where("id = ?", id).
		Where("verified_at IS NULL").
		Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "update", tableName, time.Since(start), err)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Consume marks the code behind a live grant token as used and returns it.
// A token can be consumed once.
func (r *Repository) Consume(ctx context.Context, token string, now time.Time) (*Code, error) {
	start := time.Now()
	code := &Code{}
	err := r.db.NewUpdate().
		Model(code).
		Set("consumed_at = ?", now).
		Where("grant_token = ?", token).
		Where("grant_expires_at > ?", now).
		Where("consumed_at IS NULL").
		Returning("*").
		Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "update", tableName, time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return code, nil
}

// Release undoes Consume when the password change itself failed.
func (r *Repository) Release(ctx context.Context, id int64) error {
	start := time.Now()
	_, err := r.db.NewUpdate().
		Model((*Code)(nil)).
		Set("consumed_at = NULL").
		Where("id = ?", id).
		Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "update", tableName, time.Since(start), err)
	return err
}

// DeleteExpired removes codes whose code and grant have both lapsed, or that were used.
func (r *Repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*Code)(nil)).
		WhereGroup(" AND ", func(q *bun.DeleteQuery) *bun.DeleteQuery {
			return q.
				WhereOr("consumed_at IS NOT NULL").
				WhereOr("(expires_at < ? AND (grant_expires_at IS NULL OR grant_expires_at < ?))", now, now)
		}).
		Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "delete", tableName, time.Since(start), err)

	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
