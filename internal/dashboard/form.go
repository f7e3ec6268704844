package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"institute-service/internal/apiclient"
)

var (
	ErrBusy         = errors.New("submit already in progress")
	ErrMissingField = errors.New("required field is empty")
)

// Required names a field that must be non-blank before submit.
type Required[D any] struct {
	Name  string
	Value func(D) string
}

// Form holds the draft of one create or edit dialog.
type Form[D any] struct {
	notify   Notifier
	required []Required[D]

	mu    sync.Mutex
	draft D
	busy  bool
}

func NewForm[D any](notify Notifier, required ...Required[D]) *Form[D] {
	return &Form[D]{notify: notify, required: required}
}

// Seed starts an edit from an existing row.
func (f *Form[D]) Seed(draft D) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = draft
}

// Edit changes the draft in place.
func (f *Form[D]) Edit(change func(*D)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	change(&f.draft)
}

func (f *Form[D]) Draft() D {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

func (f *Form[D]) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

// Submit validates, saves and refetches. The form stays busy until the refetch returns.
// A failed save keeps the draft for a retry.
func (f *Form[D]) Submit(ctx context.Context, save func(ctx context.Context, draft D) error, refetch func(ctx context.Context) error) error {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return ErrBusy
	}
	draft := f.draft
	for _, r := range f.required {
		if strings.TrimSpace(r.Value(draft)) == "" {
			f.mu.Unlock()
			f.notify.Notify(failure(r.Name + " is required"))
			return fmt.Errorf("%w: %s", ErrMissingField, r.Name)
		}
	}
	f.busy = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.busy = false
		f.mu.Unlock()
	}()

	if err := save(ctx, draft); err != nil {
		if !errors.Is(err, ErrNoSession) {
			f.notify.Notify(failure(describe(err, "Failed to save")))
		}
		return err
	}

	f.mu.Lock()
	var zero D
	f.draft = zero
	f.mu.Unlock()
	if refetch != nil {
		return refetch(ctx)
	}
	return nil
}

// Create submits on a screen, refusing once the screen's cap is reached.
// A save rejected as unauthorized ends the session and returns ErrNoSession.
func Create[E, D any](ctx context.Context, screen *Screen[E], form *Form[D], save func(ctx context.Context, draft D) error) error {
	if screen.guard.Principal() == nil {
		return ErrNoSession
	}
	if !screen.CanCreate() {
		form.notify.Notify(failure(fmt.Sprintf("You can only add up to %d %s", screen.cap, screen.name)))
		return ErrLimitReached
	}
	observed := func(ctx context.Context, draft D) error {
		return screen.guard.Observe(save(ctx, draft))
	}
	return form.Submit(ctx, observed, screen.Load)
}

// describe prefers the server's message over a generic one.
func describe(err error, fallback string) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
