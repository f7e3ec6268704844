package dashboard

import (
	"context"
	"errors"

	"institute-service/internal/listing"
)

// ErrLimitReached blocks create on a capped screen.
var ErrLimitReached = errors.New("limit reached")

// Screen renders the latest full snapshot of one collection.
type Screen[E any] struct {
	name     string
	guard    *Guard
	list     func(ctx context.Context) ([]E, error)
	snapshot *listing.Snapshot[E]
	notify   Notifier
	cap      int
}

func NewScreen[E any](name string, guard *Guard, list func(ctx context.Context) ([]E, error), notify Notifier, fields ...listing.Field[E]) *Screen[E] {
	return &Screen[E]{
		name:     name,
		guard:    guard,
		list:     list,
		snapshot: listing.NewSnapshot(fields...),
		notify:   notify,
	}
}

// WithCap limits how many rows the screen lets the operator create.
func (s *Screen[E]) WithCap(n int) *Screen[E] {
	s.cap = n
	return s
}

// Load replaces the snapshot. Without a session nothing is fetched; on failure the old snapshot stays.
func (s *Screen[E]) Load(ctx context.Context) error {
	if s.guard.Principal() == nil {
		return ErrNoSession
	}

	rows, err := s.list(ctx)
	if err != nil {
		if errors.Is(s.guard.Observe(err), ErrNoSession) {
			return ErrNoSession
		}
		s.notify.Notify(failure("Failed to fetch " + s.name))
		return err
	}
	s.snapshot.Replace(rows)
	return nil
}

func (s *Screen[E]) Rows() []E {
	return s.snapshot.Rows()
}

func (s *Screen[E]) Filter(term string) []E {
	return s.snapshot.Filter(term)
}

func (s *Screen[E]) Len() int {
	return s.snapshot.Len()
}

// CanCreate is false once a capped screen holds cap rows.
func (s *Screen[E]) CanCreate() bool {
	return s.cap <= 0 || s.snapshot.Len() < s.cap
}

// Delete removes a row and refetches.
func (s *Screen[E]) Delete(ctx context.Context, del func(ctx context.Context) error) error {
	if s.guard.Principal() == nil {
		return ErrNoSession
	}
	if err := del(ctx); err != nil {
		if errors.Is(s.guard.Observe(err), ErrNoSession) {
			return ErrNoSession
		}
		s.notify.Notify(failure("Failed to delete " + s.name))
		return err
	}
	return s.Load(ctx)
}
