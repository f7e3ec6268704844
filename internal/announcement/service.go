package announcement

import (
	"context"
	"errors"
	"log/slog"

	"institute-service/common/metrics"
	"institute-service/internal/changefeed"
	"institute-service/internal/store"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const entity = "announcements"

const (
	latestLimit = 3
	feedLimit   = 10
)

// Feed scopes for the notification view.
const (
	ScopeOwner = "owner"
	ScopeAll   = "all"
)

var ErrAnnouncementNotFound = errors.New("announcement not found")

var table = store.Table{
	Name:  entity,
	Order: []store.Order{store.Desc("created_at")},
}

type Service interface {
	List(ctx context.Context, owner uuid.UUID) ([]*Announcement, error)
	Create(ctx context.Context, owner uuid.UUID, req Request) (*Announcement, error)
	Delete(ctx context.Context, owner, id uuid.UUID) error
	Latest(ctx context.Context, owner uuid.UUID) ([]*Announcement, error)
	Feed(ctx context.Context, owner uuid.UUID) ([]*Announcement, error)
}

type service struct {
	repo      *store.Repository[*Announcement]
	feedScope string
	recorder  *changefeed.Recorder
	logger    *slog.Logger
}

func NewRepository(db bun.IDB, m *metrics.Metrics) *store.Repository[*Announcement] {
	return store.New(db, table, func() *Announcement { return new(Announcement) }, m)
}

// NewService takes the notification feed scope; anything but ScopeAll keeps it owner-scoped.
func NewService(repo *store.Repository[*Announcement], feedScope string, recorder *changefeed.Recorder, logger *slog.Logger) Service {
	return &service{
		repo:      repo,
		feedScope: feedScope,
		recorder:  recorder,
		logger:    logger,
	}
}

func (s *service) List(ctx context.Context, owner uuid.UUID) ([]*Announcement, error) {
	return s.repo.List(ctx, owner)
}

func (s *service) Create(ctx context.Context, owner uuid.UUID, req Request) (*Announcement, error) {
	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = MediaNone
	}

	created, err := s.repo.Insert(ctx, owner, &Announcement{
		Title:     req.Title,
		Content:   req.Content,
		MediaURL:  req.MediaURL,
		MediaType: mediaType,
		Batch:     req.Batch,
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Written(ctx, entity, changefeed.OpCreate, created.ID, owner)
	s.logger.InfoContext(ctx, "announcement published", "batch", created.Batch)
	return created, nil
}

func (s *service) Delete(ctx context.Context, owner, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, owner, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAnnouncementNotFound
		}
		return err
	}
	s.recorder.Written(ctx, entity, changefeed.OpDelete, id, owner)
	return nil
}

// Latest feeds the dashboard bar.
func (s *service) Latest(ctx context.Context, owner uuid.UUID) ([]*Announcement, error) {
	return s.repo.List(ctx, owner, store.Limit(latestLimit))
}

// Feed feeds the notification dropdown.
func (s *service) Feed(ctx context.Context, owner uuid.UUID) ([]*Announcement, error) {
	if s.feedScope == ScopeAll {
		return s.repo.ListAcrossOwners(ctx, store.Limit(feedLimit))
	}
	return s.repo.List(ctx, owner, store.Limit(feedLimit))
}
