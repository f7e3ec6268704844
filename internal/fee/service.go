package fee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"institute-service/common/metrics"
	"institute-service/internal/changefeed"
	"institute-service/internal/listing"
	appmetrics "institute-service/internal/metrics"
	"institute-service/internal/store"
	"institute-service/internal/student"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const entity = "fee_payments"

var (
	ErrPaymentNotFound = errors.New("fee payment not found")
	ErrInvalidInput    = errors.New("invalid input")
)

var table = store.Table{
	Name:      entity,
	Order:     []store.Order{store.Desc("year"), store.Desc("month")},
	Relations: []string{"Student"},
}

// Students checks that a referenced student belongs to the owner.
type Students interface {
	Get(ctx context.Context, owner, id uuid.UUID) (*student.Student, error)
}

type Service interface {
	List(ctx context.Context, owner uuid.UUID, term string) ([]View, error)
	Create(ctx context.Context, owner uuid.UUID, req Request) (View, error)
	Delete(ctx context.Context, owner, id uuid.UUID) error
	Stats(ctx context.Context, owner uuid.UUID) (Stats, error)
}

type service struct {
	repo     *store.Repository[*Payment]
	students Students
	recorder *changefeed.Recorder
	metrics  *appmetrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

func NewRepository(db bun.IDB, m *metrics.Metrics) *store.Repository[*Payment] {
	return store.New(db, table, func() *Payment { return new(Payment) }, m)
}

func NewService(repo *store.Repository[*Payment], students Students, recorder *changefeed.Recorder, m *appmetrics.Metrics, logger *slog.Logger) Service {
	return &service{
		repo:     repo,
		students: students,
		recorder: recorder,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *service) List(ctx context.Context, owner uuid.UUID, term string) ([]View, error) {
	payments, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(payments))
	for _, p := range payments {
		views = append(views, newView(p))
	}
	return listing.Filter(views, term, FilterFields...), nil
}

// Create records a payment. The student's fee_paid is left as entered on the student.
func (s *service) Create(ctx context.Context, owner uuid.UUID, req Request) (View, error) {
	st, err := s.students.Get(ctx, owner, req.StudentRef)
	if err != nil {
		if errors.Is(err, student.ErrStudentNotFound) {
			return View{}, fmt.Errorf("%w: unknown student", ErrInvalidInput)
		}
		return View{}, err
	}

	payment := &Payment{
		StudentRef:    st.ID,
		AmountPaid:    req.AmountPaid,
		Month:         req.Month,
		Year:          req.Year,
		PaymentDate:   s.now().UTC().Truncate(24 * time.Hour),
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	}
	if req.PaymentDate != "" {
		d, err := time.Parse(time.DateOnly, req.PaymentDate)
		if err != nil {
			return View{}, fmt.Errorf("%w: paymentDate", ErrInvalidInput)
		}
		payment.PaymentDate = d
	}

	created, err := s.repo.Insert(ctx, owner, payment)
	if err != nil {
		return View{}, err
	}
	created.Student = st

	s.metrics.RecordFeePayment(ctx, created.AmountPaid)
	s.recorder.Written(ctx, entity, changefeed.OpCreate, created.ID, owner)
	s.logger.InfoContext(ctx, "fee payment recorded", "student_id", st.StudentID, "month", created.Month, "year", created.Year)
	return newView(created), nil
}

func (s *service) Delete(ctx context.Context, owner, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, owner, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPaymentNotFound
		}
		return err
	}
	s.recorder.Written(ctx, entity, changefeed.OpDelete, id, owner)
	return nil
}

func (s *service) Stats(ctx context.Context, owner uuid.UUID) (Stats, error) {
	payments, err := s.repo.List(ctx, owner)
	if err != nil {
		return Stats{}, err
	}
	return Summarize(payments, s.now()), nil
}
