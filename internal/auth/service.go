package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"institute-service/internal/metrics"
	"institute-service/internal/session"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailExists         = errors.New("email already exists")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrAccountNotFound     = errors.New("account not found")
)

// AccountInitializer creates the rows that belong to a new account.
// It runs inside the registration transaction.
type AccountInitializer interface {
	InitializeAccount(ctx context.Context, tx bun.IDB, account *Account, req RegisterRequest) error
}

type Service struct {
	repo        *Repository
	tokens      *Tokens
	terminator  *session.Terminator
	initializer AccountInitializer
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// NewService accepts a nil initializer when accounts need no extra rows.
func NewService(repo *Repository, tokens *Tokens, terminator *session.Terminator, initializer AccountInitializer, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:        repo,
		tokens:      tokens,
		terminator:  terminator,
		initializer: initializer,
		logger:      logger,
		metrics:     m,
	}
}

func (s *Service) Tokens() *Tokens {
	return s.tokens
}

// Register creates a new account and signs it in
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account := &Account{
		ID:       uuid.New(),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: string(hashedPassword),
	}

	err = s.repo.DB().RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.repo.WithTx(tx).CreateAccount(ctx, account); err != nil {
			if errors.Is(err, errDuplicate) {
				return ErrEmailExists
			}
			return err
		}
		if s.initializer != nil {
			return s.initializer.InitializeAccount(ctx, tx, account, req)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAccountRegistered(ctx)
	s.logger.InfoContext(ctx, "account registered", "account_id", account.ID)

	return s.generateTokenPair(ctx, account, uuid.New())
}

// Login authenticates an account and opens a new session
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	account, err := s.repo.GetAccountByEmail(ctx, req.Email)
	if err != nil {
		s.metrics.RecordSignIn(ctx, false)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.Password)); err != nil {
		s.metrics.RecordSignIn(ctx, false)
		return nil, ErrInvalidCredentials
	}

	s.metrics.RecordSignIn(ctx, true)
	return s.generateTokenPair(ctx, account, uuid.New())
}

// RefreshAccessToken rotates the refresh token and keeps the session id
func (s *Service) RefreshAccessToken(ctx context.Context, refreshTokenString string) (*AuthResponse, error) {
	refreshToken, err := s.repo.DeleteRefreshToken(ctx, refreshTokenString)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if time.Now().After(refreshToken.ExpiresAt) {
		return nil, ErrInvalidRefreshToken
	}
	if s.terminator != nil && s.terminator.IsEnded(refreshToken.SessionID) {
		return nil, ErrInvalidRefreshToken
	}

	account, err := s.repo.GetAccountByID(ctx, refreshToken.AccountID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	return s.generateTokenPair(ctx, account, refreshToken.SessionID)
}

// Logout ends the session the refresh token belongs to.
// Access tokens of that session are rejected from now on by every instance.
func (s *Service) Logout(ctx context.Context, refreshTokenString string) error {
	deleted, err := s.repo.DeleteRefreshToken(ctx, refreshTokenString)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	s.endSession(ctx, session.Ended{
		SessionID: deleted.SessionID,
		AccountID: deleted.AccountID,
		Reason:    session.ReasonSignOut,
	})
	return nil
}

// EndSession signs out the session of an access token, used when the caller has no refresh token.
// The session's refresh tokens go with it so it cannot be refreshed back to life.
func (s *Service) EndSession(ctx context.Context, p *Principal) error {
	if _, err := s.repo.DeleteSessionTokens(ctx, p.SessionID); err != nil {
		return err
	}
	s.endSession(ctx, session.Ended{
		SessionID: p.SessionID,
		AccountID: p.UserID,
		Reason:    session.ReasonSignOut,
	})
	return nil
}

// SignOutEverywhere ends every session of the account.
func (s *Service) SignOutEverywhere(ctx context.Context, accountID uuid.UUID, reason string) error {
	sessions, err := s.repo.DeleteAllAccountTokens(ctx, accountID)
	if err != nil {
		return err
	}
	for _, sid := range sessions {
		s.endSession(ctx, session.Ended{SessionID: sid, AccountID: accountID, Reason: reason})
	}
	return nil
}

// ChangePassword replaces the password hash and signs the account out everywhere.
func (s *Service) ChangePassword(ctx context.Context, accountID uuid.UUID, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, accountID, string(hashedPassword)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}
	return s.SignOutEverywhere(ctx, accountID, session.ReasonPasswordReset)
}

// FindAccount looks an account up by email.
func (s *Service) FindAccount(ctx context.Context, email string) (*Account, error) {
	account, err := s.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// PurgeExpired deletes expired refresh tokens.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredTokens(ctx)
}

func (s *Service) endSession(ctx context.Context, e session.Ended) {
	e.At = time.Now()
	e.Until = e.At.Add(s.tokens.AccessTTL())
	if s.terminator != nil {
		s.terminator.End(ctx, e)
	}
	s.metrics.RecordSessionEnded(ctx, e.Reason)
	s.logger.InfoContext(ctx, "session ended", "account_id", e.AccountID, "reason", e.Reason)
}

// generateTokenPair creates access and refresh tokens
func (s *Service) generateTokenPair(ctx context.Context, account *Account, sessionID uuid.UUID) (*AuthResponse, error) {
	accessToken, expiresAt, err := s.tokens.Issue(account.ID, sessionID, account.Email)
	if err != nil {
		return nil, err
	}

	refreshToken, err := GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	err = s.repo.CreateRefreshToken(ctx, &RefreshToken{
		AccountID: account.ID,
		SessionID: sessionID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(s.tokens.RefreshTTL()),
	})
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		Account:      account,
	}, nil
}
