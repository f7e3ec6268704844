package student

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"institute-service/common/metrics"
	"institute-service/internal/changefeed"
	appmetrics "institute-service/internal/metrics"
	"institute-service/internal/store"
	"institute-service/internal/whatsapp"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const entity = "students"

const pendingTopN = 10

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrNoMatch         = errors.New("no student found")
	ErrInvalidInput    = errors.New("invalid input")
)

// SearchColumns are matched by the students screen filter.
var SearchColumns = []string{"name", "email", "batch", "student_id"}

var table = store.Table{
	Name:     entity,
	Order:    []store.Order{store.Desc("created_at")},
	Editable: []string{"name", "email", "phone", "batch", "fee_amount", "fee_paid", "status", "enrollment_date", "updated_at"},
}

// ContactNumbers resolves the owner's WhatsApp number.
type ContactNumbers interface {
	WhatsAppNumber(ctx context.Context, owner uuid.UUID) (string, error)
}

type Service interface {
	List(ctx context.Context, owner uuid.UUID, term string) ([]*Student, error)
	Get(ctx context.Context, owner, id uuid.UUID) (*Student, error)
	Create(ctx context.Context, owner uuid.UUID, req Request) (*Student, error)
	Update(ctx context.Context, owner, id uuid.UUID, req Request) (*Student, error)
	Delete(ctx context.Context, owner, id uuid.UUID) error
	Batches(ctx context.Context, owner uuid.UUID) ([]string, error)
	Search(ctx context.Context, owner uuid.UUID, term string) (*Student, error)
	PublicSearch(ctx context.Context, term string) (*PublicResult, error)
	PendingFees(ctx context.Context, owner uuid.UUID) ([]PendingFee, error)
	WhatsAppLink(ctx context.Context, owner, id uuid.UUID) (string, error)
}

type service struct {
	repo     *store.Repository[*Student]
	codes    *CodeGenerator
	contacts ContactNumbers
	recorder *changefeed.Recorder
	metrics  *appmetrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

func NewRepository(db bun.IDB, m *metrics.Metrics) *store.Repository[*Student] {
	return store.New(db, table, func() *Student { return new(Student) }, m)
}

func NewService(repo *store.Repository[*Student], codes *CodeGenerator, contacts ContactNumbers, recorder *changefeed.Recorder, m *appmetrics.Metrics, logger *slog.Logger) Service {
	return &service{
		repo:     repo,
		codes:    codes,
		contacts: contacts,
		recorder: recorder,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *service) List(ctx context.Context, owner uuid.UUID, term string) ([]*Student, error) {
	return s.repo.List(ctx, owner, store.Search(term, SearchColumns...))
}

func (s *service) Get(ctx context.Context, owner, id uuid.UUID) (*Student, error) {
	st, err := s.repo.Get(ctx, owner, id)
	return st, notFound(err)
}

func (s *service) Create(ctx context.Context, owner uuid.UUID, req Request) (*Student, error) {
	st := &Student{Status: StatusActive, EnrollmentDate: today(s.now())}
	if err := apply(st, req); err != nil {
		return nil, err
	}

	code, err := s.codes.Next(ctx)
	if err != nil {
		return nil, err
	}
	st.StudentID = code

	created, err := s.repo.Insert(ctx, owner, st)
	if err != nil {
		return nil, err
	}

	s.recorder.Written(ctx, entity, changefeed.OpCreate, created.ID, owner)
	s.logger.InfoContext(ctx, "student created", "student_id", created.StudentID)
	return created, nil
}

func (s *service) Update(ctx context.Context, owner, id uuid.UUID, req Request) (*Student, error) {
	st, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if err := apply(st, req); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, owner, st)
	if err != nil {
		return nil, notFound(err)
	}

	s.recorder.Written(ctx, entity, changefeed.OpUpdate, updated.ID, owner)
	return updated, nil
}

func (s *service) Delete(ctx context.Context, owner, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, owner, id); err != nil {
		return notFound(err)
	}
	s.recorder.Written(ctx, entity, changefeed.OpDelete, id, owner)
	return nil
}

func (s *service) Batches(ctx context.Context, owner uuid.UUID) ([]string, error) {
	return s.repo.Distinct(ctx, owner, "batch")
}

// Search returns the owner's newest student whose code or name contains term.
func (s *service) Search(ctx context.Context, owner uuid.UUID, term string) (*Student, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: search term is required", ErrInvalidInput)
	}

	rows, err := s.repo.List(ctx, owner, store.Search(term, "student_id", "name"), store.Limit(1))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoMatch
	}
	return rows[0], nil
}

// PublicSearch looks across every institute, so it only reveals PublicResult fields.
func (s *service) PublicSearch(ctx context.Context, term string) (*PublicResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: please enter a student ID or name", ErrInvalidInput)
	}

	rows, err := s.repo.ListAcrossOwners(ctx, store.Search(term, "student_id", "name"), store.Limit(1))
	if err != nil {
		return nil, err
	}
	s.metrics.RecordPublicSearch(ctx, len(rows) > 0)
	if len(rows) == 0 {
		return nil, ErrNoMatch
	}

	st := rows[0]
	return &PublicResult{
		StudentID:      st.StudentID,
		Name:           st.Name,
		Batch:          st.Batch,
		Status:         st.Status,
		FeeAmount:      st.FeeAmount,
		FeePaid:        st.FeePaid,
		EnrollmentDate: st.EnrollmentDate,
		ShareLink:      whatsapp.ShareLink(whatsapp.StudentDetailsMessage(st.StudentID, st.Name, st.Batch, st.Status)),
	}, nil
}

func (s *service) PendingFees(ctx context.Context, owner uuid.UUID) ([]PendingFee, error) {
	rows, err := s.repo.List(ctx, owner, store.Where("status", StatusActive))
	if err != nil {
		return nil, err
	}
	return PendingTop(rows, pendingTopN), nil
}

// WhatsAppLink opens a chat with the owner's own number carrying the student's code.
func (s *service) WhatsAppLink(ctx context.Context, owner, id uuid.UUID) (string, error) {
	st, err := s.Get(ctx, owner, id)
	if err != nil {
		return "", err
	}
	number, err := s.contacts.WhatsAppNumber(ctx, owner)
	if err != nil {
		return "", err
	}
	return whatsapp.SendLink(number, whatsapp.StudentIDMessage(st.StudentID, st.Name))
}

func apply(st *Student, req Request) error {
	st.Name = strings.TrimSpace(req.Name)
	st.Email = req.Email
	st.Phone = req.Phone
	st.Batch = strings.TrimSpace(req.Batch)
	st.FeeAmount = 0
	if req.FeeAmount != nil {
		st.FeeAmount = *req.FeeAmount
	}
	st.FeePaid = 0
	if req.FeePaid != nil {
		st.FeePaid = *req.FeePaid
	}
	if req.Status != "" {
		st.Status = req.Status
	}
	if req.EnrollmentDate != "" {
		d, err := time.Parse(time.DateOnly, req.EnrollmentDate)
		if err != nil {
			return fmt.Errorf("%w: enrollmentDate", ErrInvalidInput)
		}
		st.EnrollmentDate = d
	}
	if st.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return nil
}

func today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrStudentNotFound
	}
	return err
}
