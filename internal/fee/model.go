package fee

import (
	"time"

	"institute-service/internal/student"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Payment struct {
	bun.BaseModel `bun:"table:fee_payments,alias:fp"`

	ID            uuid.UUID        `bun:"id,pk,type:uuid" json:"id"`
	UserID        uuid.UUID        `bun:"user_id,type:uuid,notnull" json:"userId"`
	StudentRef    uuid.UUID        `bun:"student_id,type:uuid,notnull" json:"studentRef"`
	Student       *student.Student `bun:"rel:belongs-to,join:student_id=id" json:"-"`
	AmountPaid    float64          `bun:"amount_paid,notnull,default:0" json:"amountPaid"`
	Month         int              `bun:"month,notnull" json:"month"`
	Year          int              `bun:"year,notnull" json:"year"`
	PaymentDate   time.Time        `bun:"payment_date,type:date,notnull,default:current_date" json:"paymentDate"`
	PaymentMethod string           `bun:"payment_method" json:"paymentMethod"`
	Notes         string           `bun:"notes" json:"notes"`
	CreatedAt     time.Time        `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt     time.Time        `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

func (p *Payment) PrimaryKey() uuid.UUID { return p.ID }

func (p *Payment) Assign(id, owner uuid.UUID) {
	p.ID = id
	p.UserID = owner
}

// View is a payment joined with the student it was made for.
type View struct {
	*Payment
	StudentName string `json:"studentName"`
	StudentCode string `json:"studentCode"`
}

func newView(p *Payment) View {
	v := View{Payment: p}
	if p.Student != nil {
		v.StudentName = p.Student.Name
		v.StudentCode = p.Student.StudentID
	}
	return v
}

type Request struct {
	StudentRef    uuid.UUID `json:"studentRef" validate:"required"`
	AmountPaid    float64   `json:"amountPaid" validate:"gt=0"`
	Month         int       `json:"month" validate:"required,min=1,max=12"`
	Year          int       `json:"year" validate:"required,min=2000,max=2100"`
	PaymentDate   string    `json:"paymentDate" validate:"omitempty,datetime=2006-01-02"`
	PaymentMethod string    `json:"paymentMethod" validate:"omitempty,oneof=cash upi card bank_transfer cheque"`
	Notes         string    `json:"notes" validate:"max=500"`
}

type Stats struct {
	TotalCollected float64 `json:"totalCollected"`
	ThisMonth      float64 `json:"thisMonth"`
	PaymentCount   int     `json:"paymentCount"`
}
