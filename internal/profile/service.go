package profile

import (
	"context"
	"errors"
	"log/slog"

	"institute-service/common/metrics"
	"institute-service/internal/auth"
	"institute-service/internal/changefeed"
	"institute-service/internal/store"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const entity = "profiles"

var ErrProfileNotFound = errors.New("profile not found")

var table = store.Table{
	Name:        entity,
	OwnerColumn: "id",
	Editable:    []string{"full_name", "institute_name", "phone", "whatsapp_number", "whatsapp_group_link", "updated_at"},
}

type Service interface {
	Get(ctx context.Context, p *auth.Principal) (*Profile, error)
	Update(ctx context.Context, p *auth.Principal, req UpdateRequest) (*Profile, error)
	WhatsAppNumber(ctx context.Context, owner uuid.UUID) (string, error)
	InitializeAccount(ctx context.Context, tx bun.IDB, account *auth.Account, req auth.RegisterRequest) error
}

type service struct {
	repo     *store.Repository[*Profile]
	recorder *changefeed.Recorder
	logger   *slog.Logger
}

func NewRepository(db bun.IDB, m *metrics.Metrics) *store.Repository[*Profile] {
	return store.New(db, table, func() *Profile { return new(Profile) }, m)
}

func NewService(repo *store.Repository[*Profile], recorder *changefeed.Recorder, logger *slog.Logger) Service {
	return &service{
		repo:     repo,
		recorder: recorder,
		logger:   logger,
	}
}

// Get returns the caller's profile, creating an empty one if registration predates it.
func (s *service) Get(ctx context.Context, p *auth.Principal) (*Profile, error) {
	profile, err := s.repo.Get(ctx, p.UserID, p.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return s.repo.InsertSingleton(ctx, p.UserID, &Profile{Email: p.Email})
	}
	return profile, err
}

func (s *service) Update(ctx context.Context, p *auth.Principal, req UpdateRequest) (*Profile, error) {
	current, err := s.Get(ctx, p)
	if err != nil {
		return nil, err
	}

	current.FullName = req.FullName
	current.InstituteName = req.InstituteName
	current.Phone = req.Phone
	current.WhatsAppNumber = req.WhatsAppNumber
	current.WhatsAppGroupLink = req.WhatsAppGroupLink

	updated, err := s.repo.Update(ctx, p.UserID, current)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	s.recorder.Written(ctx, entity, changefeed.OpUpdate, updated.ID, p.UserID)
	return updated, nil
}

// WhatsAppNumber returns the owner's configured number, empty if none.
func (s *service) WhatsAppNumber(ctx context.Context, owner uuid.UUID) (string, error) {
	profile, err := s.repo.Get(ctx, owner, owner)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return profile.WhatsAppNumber, nil
}

// InitializeAccount creates the profile of a newly registered account.
func (s *service) InitializeAccount(ctx context.Context, tx bun.IDB, account *auth.Account, req auth.RegisterRequest) error {
	_, err := s.repo.WithTx(tx).Insert(ctx, account.ID, &Profile{
		Email:         account.Email,
		FullName:      req.FullName,
		InstituteName: req.InstituteName,
	})
	return err
}
