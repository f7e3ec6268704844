package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"institute-service/common/metrics"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

var errDuplicate = errors.New("duplicate key")

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

// DB exposes the handle so account creation can share a transaction with other tables.
func (r *Repository) DB() bun.IDB {
	return r.db
}

func (r *Repository) WithTx(tx bun.IDB) *Repository {
	return &Repository{db: tx, metrics: r.metrics}
}

func (r *Repository) CreateAccount(ctx context.Context, account *Account) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(account).Returning("*").Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "insert", "accounts", time.Since(start), err)

	if isUniqueViolation(err) {
		return errDuplicate
	}
	return err
}

func (r *Repository) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	start := time.Now()
	account := &Account{}
	err := r.db.NewSelect().
		Model(account).
		Where("lower(email) = lower(?)", strings.TrimSpace(email)).
		Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "accounts", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return account, nil
}

func (r *Repository) GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	start := time.Now()
	account := &Account{}
	err := r.db.NewSelect().Model(account).Where("id = ?", id).Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "accounts", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return account, nil
}

func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model((*Account)(nil)).
		Set("password = ?", hash).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "update", "accounts", time.Since(start), err)

	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateRefreshToken stores a new refresh token
func (r *Repository) CreateRefreshToken(ctx context.Context, token *RefreshToken) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(token).Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "refresh_tokens", time.Since(start), err)

	return err
}

// GetRefreshToken retrieves an unexpired refresh token by token string
func (r *Repository) GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	start := time.Now()
	refreshToken := &RefreshToken{}
	err := r.db.NewSelect().
		Model(refreshToken).
		Where("token = ?", token).
		Where("expires_at > ?", time.Now()).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "refresh_tokens", time.Since(start), err)

	if err != nil {
		return nil, err
	}

	return refreshToken, nil
}

// DeleteRefreshToken removes a refresh token and reports the session it belonged to.
func (r *Repository) DeleteRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	start := time.Now()
	deleted := &RefreshToken{}
	err := r.db.NewDelete().
		Model(deleted).
		Where("token = ?", token).
		Returning("*").
		Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "delete", "refresh_tokens", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// DeleteSessionTokens removes every refresh token issued to one session.
func (r *Repository) DeleteSessionTokens(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*RefreshToken)(nil)).
		Where("session_id = ?", sessionID).
		Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "delete", "refresh_tokens", time.Since(start), err)

	if err != nil {
		return 0, fmt.Errorf("delete tokens of session %s: %w", sessionID, err)
	}
	return result.RowsAffected()
}

// DeleteExpiredTokens removes all expired refresh tokens (cleanup)
func (r *Repository) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*RefreshToken)(nil)).
		Where("expires_at < ?", time.Now()).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "refresh_tokens", time.Since(start), err)

	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteAllAccountTokens removes every refresh token of an account and returns the distinct sessions they held.
func (r *Repository) DeleteAllAccountTokens(ctx context.Context, accountID uuid.UUID) ([]uuid.UUID, error) {
	start := time.Now()
	var deleted []RefreshToken
	err := r.db.NewDelete().
		Model(&deleted).
		Where("account_id = ?", accountID).
		Returning("session_id").
		Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "delete", "refresh_tokens", time.Since(start), err)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("delete tokens of %s: %w", accountID, err)
	}

	seen := make(map[uuid.UUID]bool, len(deleted))
	sessions := make([]uuid.UUID, 0, len(deleted))
	for _, t := range deleted {
		if !seen[t.SessionID] {
			seen[t.SessionID] = true
			sessions = append(sessions, t.SessionID)
		}
	}
	return sessions, nil
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}
