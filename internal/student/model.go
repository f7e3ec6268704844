package student

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const StatusActive = "active"

type Student struct {
	bun.BaseModel `bun:"table:students,alias:s"`

	ID             uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID         uuid.UUID `bun:"user_id,type:uuid,notnull" json:"userId"`
	StudentID      string    `bun:"student_id,notnull" json:"studentId"`
	Name           string    `bun:"name,notnull" json:"name"`
	Email          string    `bun:"email" json:"email"`
	Phone          string    `bun:"phone" json:"phone"`
	Batch          string    `bun:"batch" json:"batch"`
	FeeAmount      float64   `bun:"fee_amount,notnull,default:0" json:"feeAmount"`
	FeePaid        float64   `bun:"fee_paid,notnull,default:0" json:"feePaid"`
	Status         string    `bun:"status,notnull,default:'active'" json:"status"`
	EnrollmentDate time.Time `bun:"enrollment_date,type:date,notnull,default:current_date" json:"enrollmentDate"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

func (s *Student) PrimaryKey() uuid.UUID { return s.ID }

func (s *Student) Assign(id, owner uuid.UUID) {
	s.ID = id
	s.UserID = owner
}

func (s *Student) Touch(now time.Time) { s.UpdatedAt = now }

// Request is the body of create and update. Omitted fee_paid means nothing paid yet.
type Request struct {
	Name           string   `json:"name" validate:"required,max=120"`
	Email          string   `json:"email" validate:"omitempty,email"`
	Phone          string   `json:"phone" validate:"max=32"`
	Batch          string   `json:"batch" validate:"max=64"`
	FeeAmount      *float64 `json:"feeAmount" validate:"omitempty,gte=0"`
	FeePaid        *float64 `json:"feePaid" validate:"omitempty,gte=0"`
	Status         string   `json:"status" validate:"max=32"`
	EnrollmentDate string   `json:"enrollmentDate" validate:"omitempty,datetime=2006-01-02"`
}

// PublicResult is what the landing-page search may reveal about a student.
type PublicResult struct {
	StudentID      string    `json:"studentId"`
	Name           string    `json:"name"`
	Batch          string    `json:"batch"`
	Status         string    `json:"status"`
	FeeAmount      float64   `json:"feeAmount"`
	FeePaid        float64   `json:"feePaid"`
	EnrollmentDate time.Time `json:"enrollmentDate"`
	ShareLink      string    `json:"shareLink"`
}

// PendingFee is one row of the pending payments section.
type PendingFee struct {
	ID          uuid.UUID `json:"id"`
	StudentID   string    `json:"studentId"`
	Name        string    `json:"name"`
	Batch       string    `json:"batch"`
	FeeAmount   float64   `json:"feeAmount"`
	FeePaid     float64   `json:"feePaid"`
	Pending     float64   `json:"pending"`
	PaidPercent int       `json:"paidPercent"`
}

type LinkResponse struct {
	URL string `json:"url"`
}
