package blog

import (
	"context"
	"errors"
	"log/slog"

	"institute-service/internal/changefeed"
	appmetrics "institute-service/internal/metrics"
	"institute-service/internal/store"

	"github.com/google/uuid"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Section is one owner-scoped list on the institute page.
// A positive cap limits both what is listed and how many rows an owner may hold.
type Section[E store.Record, R any] struct {
	repo     *store.Repository[E]
	cap      int
	capErr   error
	build    func(R) (E, error)
	apply    func(E, R) error
	recorder *changefeed.Recorder
	metrics  *appmetrics.Metrics
	logger   *slog.Logger
}

func (s *Section[E, R]) entity() string {
	return s.repo.Table().Name
}

func (s *Section[E, R]) List(ctx context.Context, owner uuid.UUID) ([]E, error) {
	if s.cap > 0 {
		return s.repo.List(ctx, owner, store.Limit(s.cap))
	}
	return s.repo.List(ctx, owner)
}

func (s *Section[E, R]) Create(ctx context.Context, owner uuid.UUID, req R) (E, error) {
	var zero E
	row, err := s.build(req)
	if err != nil {
		return zero, err
	}

	var created E
	if s.cap > 0 {
		created, err = s.repo.InsertCapped(ctx, owner, row, s.cap)
	} else {
		created, err = s.repo.Insert(ctx, owner, row)
	}
	if errors.Is(err, store.ErrLimitReached) {
		s.metrics.RecordLimitRejection(ctx, s.entity())
		s.logger.InfoContext(ctx, "section full", "entity", s.entity(), "cap", s.cap)
		return zero, s.capErr
	}
	if err != nil {
		return zero, err
	}

	s.recorder.Written(ctx, s.entity(), changefeed.OpCreate, created.PrimaryKey(), owner)
	return created, nil
}

func (s *Section[E, R]) Update(ctx context.Context, owner, id uuid.UUID, req R) (E, error) {
	var zero E
	row, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return zero, notFound(err)
	}
	if err := s.apply(row, req); err != nil {
		return zero, err
	}

	updated, err := s.repo.Update(ctx, owner, row)
	if err != nil {
		return zero, notFound(err)
	}

	s.recorder.Written(ctx, s.entity(), changefeed.OpUpdate, updated.PrimaryKey(), owner)
	return updated, nil
}

func (s *Section[E, R]) Delete(ctx context.Context, owner, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, owner, id); err != nil {
		return notFound(err)
	}
	s.recorder.Written(ctx, s.entity(), changefeed.OpDelete, id, owner)
	return nil
}

// Singleton is a per-owner row created with default content on first read.
type Singleton[E store.Record, R any] struct {
	repo     *store.Repository[E]
	defaults func() E
	apply    func(E, R)
	recorder *changefeed.Recorder
}

func (s *Singleton[E, R]) Get(ctx context.Context, owner uuid.UUID) (E, error) {
	row, err := s.repo.First(ctx, owner)
	if errors.Is(err, store.ErrNotFound) {
		return s.repo.InsertSingleton(ctx, owner, s.defaults())
	}
	return row, err
}

func (s *Singleton[E, R]) Update(ctx context.Context, owner uuid.UUID, req R) (E, error) {
	var zero E
	row, err := s.Get(ctx, owner)
	if err != nil {
		return zero, err
	}
	s.apply(row, req)

	updated, err := s.repo.Update(ctx, owner, row)
	if err != nil {
		return zero, notFound(err)
	}

	s.recorder.Written(ctx, s.repo.Table().Name, changefeed.OpUpdate, updated.PrimaryKey(), owner)
	return updated, nil
}

func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrItemNotFound
	}
	return err
}
