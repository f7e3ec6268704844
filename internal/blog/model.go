package blog

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events,alias:ev"`

	ID          uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID      uuid.UUID `bun:"user_id,type:uuid,notnull" json:"userId"`
	Title       string    `bun:"title,notnull" json:"title"`
	Description string    `bun:"description" json:"description"`
	ImageURL    string    `bun:"image_url" json:"imageUrl"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

type EventRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url"`
}

type LiveClass struct {
	bun.BaseModel `bun:"table:live_classes,alias:lc"`

	ID              uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID          uuid.UUID `bun:"user_id,type:uuid,notnull" json:"userId"`
	ClassName       string    `bun:"class_name,notnull" json:"className"`
	Subject         string    `bun:"subject,notnull" json:"subject"`
	StartDate       time.Time `bun:"start_date,type:date,notnull" json:"startDate"`
	Timing          string    `bun:"timing" json:"timing"`
	Fee             float64   `bun:"fee,notnull,default:0" json:"fee"`
	TeacherName     string    `bun:"teacher_name" json:"teacherName"`
	TeacherImageURL string    `bun:"teacher_image_url" json:"teacherImageUrl"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

type LiveClassRequest struct {
	ClassName       string  `json:"className" validate:"required,max=120"`
	Subject         string  `json:"subject" validate:"required,max=120"`
	StartDate       string  `json:"startDate" validate:"required,datetime=2006-01-02"`
	Timing          string  `json:"timing" validate:"max=64"`
	Fee             float64 `json:"fee" validate:"gte=0"`
	TeacherName     string  `json:"teacherName" validate:"max=120"`
	TeacherImageURL string  `json:"teacherImageUrl" validate:"omitempty,url"`
}

type Topper struct {
	bun.BaseModel `bun:"table:topper_students,alias:ts"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID    uuid.UUID `bun:"user_id,type:uuid,notnull" json:"userId"`
	Name      string    `bun:"name,notnull" json:"name"`
	Class     string    `bun:"class,notnull" json:"class"`
	Marks     string    `bun:"marks,notnull" json:"marks"`
	ImageURL  string    `bun:"image_url" json:"imageUrl"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

type TopperRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Class    string `json:"class" validate:"required,max=64"`
	Marks    string `json:"marks" validate:"required,max=32"`
	ImageURL string `json:"imageUrl" validate:"omitempty,url"`
}

type InstituteInfo struct {
	bun.BaseModel `bun:"table:institute_info,alias:ii"`

	ID           uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID       uuid.UUID `bun:"user_id,type:uuid,notnull,unique" json:"userId"`
	Name         string    `bun:"name,notnull" json:"name"`
	Location     string    `bun:"location" json:"location"`
	Description  string    `bun:"description" json:"description"`
	TeacherNames string    `bun:"teacher_names" json:"teacherNames"`
	MapLink      string    `bun:"map_link" json:"mapLink"`
	HeroImageURL string    `bun:"hero_image_url" json:"heroImageUrl"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

type InstituteRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	Location     string `json:"location"`
	Description  string `json:"description"`
	TeacherNames string `json:"teacherNames"`
	MapLink      string `json:"mapLink" validate:"omitempty,url"`
	HeroImageURL string `json:"heroImageUrl" validate:"omitempty,url"`
}

type StudentSummary struct {
	bun.BaseModel `bun:"table:student_summary,alias:ss"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID    uuid.UUID `bun:"user_id,type:uuid,notnull,unique" json:"userId"`
	Summary   string    `bun:"summary,notnull" json:"summary"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

type SummaryRequest struct {
	Summary string `json:"summary" validate:"required"`
}

func (e *Event) PrimaryKey() uuid.UUID          { return e.ID }
func (e *Event) Assign(id, owner uuid.UUID)     { e.ID, e.UserID = id, owner }
func (e *Event) Touch(now time.Time)            { e.UpdatedAt = now }
func (c *LiveClass) PrimaryKey() uuid.UUID      { return c.ID }
func (c *LiveClass) Assign(id, owner uuid.UUID) { c.ID, c.UserID = id, owner }
func (c *LiveClass) Touch(now time.Time)        { c.UpdatedAt = now }
func (t *Topper) PrimaryKey() uuid.UUID         { return t.ID }
func (t *Topper) Assign(id, owner uuid.UUID)    { t.ID, t.UserID = id, owner }
func (t *Topper) Touch(now time.Time)           { t.UpdatedAt = now }

func (i *InstituteInfo) PrimaryKey() uuid.UUID       { return i.ID }
func (i *InstituteInfo) Assign(id, owner uuid.UUID)  { i.ID, i.UserID = id, owner }
func (i *InstituteInfo) Touch(now time.Time)         { i.UpdatedAt = now }
func (s *StudentSummary) PrimaryKey() uuid.UUID      { return s.ID }
func (s *StudentSummary) Assign(id, owner uuid.UUID) { s.ID, s.UserID = id, owner }
func (s *StudentSummary) Touch(now time.Time)        { s.UpdatedAt = now }
