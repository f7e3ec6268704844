package recovery

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"institute-service/internal/auth"
	"institute-service/internal/config"
	"institute-service/internal/mailer"
	"institute-service/internal/metrics"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	codeDigits  = 6
	maxAttempts = 5
	minPassword = 6
)

var (
	ErrUnknownEmail  = errors.New("no account with this email")
	ErrInvalidCode   = errors.New("invalid or expired code")
	ErrInvalidGrant  = errors.New("invalid or expired recovery token")
	ErrWeakPassword  = errors.New("password must be at least 6 characters")
	ErrDeliveryFails = errors.New("could not send recovery code")
)

// Accounts is the part of auth recovery needs.
type Accounts interface {
	FindAccount(ctx context.Context, email string) (*auth.Account, error)
	ChangePassword(ctx context.Context, accountID uuid.UUID, password string) error
}

type Service struct {
	repo     *Repository
	accounts Accounts
	mailer   mailer.Sender
	cfg      config.RecoveryConfig
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
	newCode  func() (string, error)
}

func NewService(repo *Repository, accounts Accounts, sender mailer.Sender, cfg config.RecoveryConfig, m *metrics.Metrics, logger *slog.Logger) *Service {
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = 10 * time.Minute
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 10 * time.Minute
	}
	return &Service{
		repo:     repo,
		accounts: accounts,
		mailer:   sender,
		cfg:      cfg,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
		newCode:  generateCode,
	}
}

// RequestCode mails a fresh one-time code. Earlier codes of the account stop working.
func (s *Service) RequestCode(ctx context.Context, email string) error {
	account, err := s.findAccount(ctx, email)
	if err != nil {
		return err
	}

	code, err := s.newCode()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	err = s.repo.Replace(ctx, &Code{
		AccountID: account.ID,
		CodeHash:  string(hash),
		ExpiresAt: s.now().Add(s.cfg.CodeTTL),
	})
	if err != nil {
		return fmt.Errorf("store recovery code: %w", err)
	}

	err = s.mailer.Send(ctx, mailer.Message{
		To:      account.Email,
		Subject: "Your password reset code",
		Text: fmt.Sprintf("Your password reset code is %s.\n\nIt expires in %d minutes. If you did not ask for it, ignore this mail.",
			code, int(s.cfg.CodeTTL.Minutes())),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "recovery mail failed", "account_id", account.ID, "error", err)
		return ErrDeliveryFails
	}

	s.metrics.RecordRecoveryCodeSent(ctx)
	s.logger.InfoContext(ctx, "recovery code sent", "account_id", account.ID)
	return nil
}

// Verify checks the code and returns a short-lived token for the password change.
func (s *Service) Verify(ctx context.Context, email, code string) (*VerifyResponse, error) {
	account, err := s.findAccount(ctx, email)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.Active(ctx, account.ID, s.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}
	if stored.Attempts >= maxAttempts {
		return nil, ErrInvalidCode
	}

	if err := bcrypt.CompareHashAndPassword([]byte(stored.CodeHash), []byte(code)); err != nil {
		if err := s.repo.RecordAttempt(ctx, stored.ID); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCode
	}

	token, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}
	now := s.now()
	expiresAt := now.Add(s.cfg.SessionTTL)
	if err := s.repo.Grant(ctx, stored.ID, token, expiresAt, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}

	return &VerifyResponse{RecoveryToken: token, ExpiresAt: expiresAt}, nil
}

// ResetPassword spends the recovery token. Every session of the account ends.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	if len(password) < minPassword {
		return ErrWeakPassword
	}

	code, err := s.repo.Consume(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidGrant
		}
		return err
	}

	if err := s.accounts.ChangePassword(ctx, code.AccountID, password); err != nil {
		if relErr := s.repo.Release(ctx, code.ID); relErr != nil {
			s.logger.ErrorContext(ctx, "failed to release recovery token", "error", relErr)
		}
		return err
	}

	s.metrics.RecordPasswordReset(ctx)
	s.logger.InfoContext(ctx, "password reset", "account_id", code.AccountID)
	return nil
}

// PurgeExpired deletes used and lapsed codes.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}

func (s *Service) findAccount(ctx context.Context, email string) (*auth.Account, error) {
	account, err := s.accounts.FindAccount(ctx, email)
	if errors.Is(err, auth.ErrAccountNotFound) {
		return nil, ErrUnknownEmail
	}
	return account, err
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}
