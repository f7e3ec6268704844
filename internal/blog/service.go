package blog

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"institute-service/common/metrics"
	"institute-service/internal/changefeed"
	appmetrics "institute-service/internal/metrics"
	"institute-service/internal/store"

	"github.com/uptrace/bun"
)

const (
	MaxEvents  = 6
	MaxToppers = 10
)

var (
	ErrEventLimit  = errors.New("event limit reached")
	ErrTopperLimit = errors.New("topper limit reached")
)

// Service groups the sections of the institute page.
type Service struct {
	Events      *Section[*Event, EventRequest]
	LiveClasses *Section[*LiveClass, LiveClassRequest]
	Toppers     *Section[*Topper, TopperRequest]
	Institute   *Singleton[*InstituteInfo, InstituteRequest]
	Summary     *Singleton[*StudentSummary, SummaryRequest]
}

func NewService(db bun.IDB, dbMetrics *metrics.Metrics, recorder *changefeed.Recorder, m *appmetrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		Events: &Section[*Event, EventRequest]{
			repo: store.New(db, store.Table{
				Name:     "events",
				Order:    []store.Order{store.Desc("created_at")},
				Editable: []string{"title", "description", "image_url", "updated_at"},
			}, func() *Event { return new(Event) }, dbMetrics),
			cap:    MaxEvents,
			capErr: ErrEventLimit,
			build: func(req EventRequest) (*Event, error) {
				e := &Event{}
				applyEvent(e, req)
				return e, nil
			},
			apply:    func(e *Event, req EventRequest) error { applyEvent(e, req); return nil },
			recorder: recorder,
			metrics:  m,
			logger:   logger,
		},
		LiveClasses: &Section[*LiveClass, LiveClassRequest]{
			repo: store.New(db, store.Table{
				Name:     "live_classes",
				Order:    []store.Order{store.Asc("start_date")},
				Editable: []string{"class_name", "subject", "start_date", "timing", "fee", "teacher_name", "teacher_image_url", "updated_at"},
			}, func() *LiveClass { return new(LiveClass) }, dbMetrics),
			build: func(req LiveClassRequest) (*LiveClass, error) {
				c := &LiveClass{}
				return c, applyLiveClass(c, req)
			},
			apply:    applyLiveClass,
			recorder: recorder,
			metrics:  m,
			logger:   logger,
		},
		Toppers: &Section[*Topper, TopperRequest]{
			repo: store.New(db, store.Table{
				Name:     "topper_students",
				Order:    []store.Order{store.Desc("created_at")},
				Editable: []string{"name", "class", "marks", "image_url", "updated_at"},
			}, func() *Topper { return new(Topper) }, dbMetrics),
			cap:    MaxToppers,
			capErr: ErrTopperLimit,
			build: func(req TopperRequest) (*Topper, error) {
				t := &Topper{}
				applyTopper(t, req)
				return t, nil
			},
			apply:    func(t *Topper, req TopperRequest) error { applyTopper(t, req); return nil },
			recorder: recorder,
			metrics:  m,
			logger:   logger,
		},
		Institute: &Singleton[*InstituteInfo, InstituteRequest]{
			repo: store.New(db, store.Table{
				Name:     "institute_info",
				Editable: []string{"name", "location", "description", "teacher_names", "map_link", "hero_image_url", "updated_at"},
			}, func() *InstituteInfo { return new(InstituteInfo) }, dbMetrics),
			defaults: defaultInstitute,
			apply: func(i *InstituteInfo, req InstituteRequest) {
				i.Name = req.Name
				i.Location = req.Location
				i.Description = req.Description
				i.TeacherNames = req.TeacherNames
				i.MapLink = req.MapLink
				i.HeroImageURL = req.HeroImageURL
			},
			recorder: recorder,
		},
		Summary: &Singleton[*StudentSummary, SummaryRequest]{
			repo: store.New(db, store.Table{
				Name:     "student_summary",
				Editable: []string{"summary", "updated_at"},
			}, func() *StudentSummary { return new(StudentSummary) }, dbMetrics),
			defaults: defaultSummary,
			apply:    func(s *StudentSummary, req SummaryRequest) { s.Summary = req.Summary },
			recorder: recorder,
		},
	}
}

func applyEvent(e *Event, req EventRequest) {
	e.Title = req.Title
	e.Description = req.Description
	e.ImageURL = req.ImageURL
}

func applyLiveClass(c *LiveClass, req LiveClassRequest) error {
	start, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		return fmt.Errorf("%w: startDate", ErrInvalidInput)
	}
	c.ClassName = req.ClassName
	c.Subject = req.Subject
	c.StartDate = start
	c.Timing = req.Timing
	c.Fee = req.Fee
	c.TeacherName = req.TeacherName
	c.TeacherImageURL = req.TeacherImageURL
	return nil
}

func applyTopper(t *Topper, req TopperRequest) {
	t.Name = req.Name
	t.Class = req.Class
	t.Marks = req.Marks
	t.ImageURL = req.ImageURL
}
