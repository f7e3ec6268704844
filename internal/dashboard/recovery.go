package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"institute-service/internal/recovery"
)

type Step int

const (
	AwaitingEmail Step = iota
	AwaitingCode
	Done
)

func (s Step) String() string {
	switch s {
	case AwaitingEmail:
		return "awaiting_email"
	case AwaitingCode:
		return "awaiting_code"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

const minPasswordLength = 6

var (
	ErrWrongStep        = errors.New("recovery is not at this step")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPasswordTooShort = errors.New("password too short")
)

type RecoveryAPI interface {
	RequestRecoveryCode(ctx context.Context, email string) error
	VerifyRecoveryCode(ctx context.Context, email, code string) (*recovery.VerifyResponse, error)
	ResetPassword(ctx context.Context, recoveryToken, password string) error
}

// Recovery drives the two-step forgot-password dialog.
type Recovery struct {
	api    RecoveryAPI
	notify Notifier
	now    func() time.Time

	mu    sync.Mutex
	step  Step
	email string
	grant *recovery.VerifyResponse
}

func NewRecovery(api RecoveryAPI, notify Notifier) *Recovery {
	return &Recovery{api: api, notify: notify, now: time.Now}
}

func (r *Recovery) Step() Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.step
}

func (r *Recovery) Email() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.email
}

// SubmitEmail asks the server to mail a code and moves on to code entry.
func (r *Recovery) SubmitEmail(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.step != AwaitingEmail {
		return ErrWrongStep
	}
	email = strings.TrimSpace(email)
	if email == "" {
		r.notify.Notify(failure("Email is required"))
		return ErrMissingField
	}

	if err := r.api.RequestRecoveryCode(ctx, email); err != nil {
		r.notify.Notify(failure(describe(err, "Failed to send reset code")))
		return err
	}
	r.email = email
	r.step = AwaitingCode
	r.notify.Notify(success("Reset code sent to your email"))
	return nil
}

// SubmitCode checks the form locally, then verifies the code and sets the password.
// Done is reached only when both calls succeed.
func (r *Recovery) SubmitCode(ctx context.Context, code, password, confirm string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.step != AwaitingCode {
		return ErrWrongStep
	}

	code = strings.TrimSpace(code)
	switch {
	case code == "" || password == "" || confirm == "":
		r.notify.Notify(failure("Please fill in all fields"))
		return ErrMissingField
	case password != confirm:
		r.notify.Notify(failure("Passwords do not match"))
		return ErrPasswordMismatch
	case len(password) < minPasswordLength:
		r.notify.Notify(failure("Password must be at least 6 characters"))
		return ErrPasswordTooShort
	}

	// A grant from an earlier attempt is reused while valid, the code is single use.
	if r.grant == nil || !r.now().Before(r.grant.ExpiresAt) {
		grant, err := r.api.VerifyRecoveryCode(ctx, r.email, code)
		if err != nil {
			r.notify.Notify(failure(describe(err, "Invalid or expired code")))
			return err
		}
		r.grant = grant
	}

	if err := r.api.ResetPassword(ctx, r.grant.RecoveryToken, password); err != nil {
		r.notify.Notify(failure(describe(err, "Failed to reset password")))
		return err
	}

	r.grant = nil
	r.step = Done
	r.notify.Notify(success("Password reset successfully"))
	return nil
}

// UseDifferentEmail goes back to email entry and discards everything entered since.
func (r *Recovery) UseDifferentEmail() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.step != AwaitingCode {
		return
	}
	r.step = AwaitingEmail
	r.email = ""
	r.grant = nil
}
