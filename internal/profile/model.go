package profile

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Profile holds the operator's contact details. Its id is the account id.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:p"`

	ID                uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Email             string    `bun:"email" json:"email"`
	FullName          string    `bun:"full_name" json:"fullName"`
	InstituteName     string    `bun:"institute_name" json:"instituteName"`
	Phone             string    `bun:"phone" json:"phone"`
	WhatsAppNumber    string    `bun:"whatsapp_number" json:"whatsappNumber"`
	WhatsAppGroupLink string    `bun:"whatsapp_group_link" json:"whatsappGroupLink"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

func (p *Profile) PrimaryKey() uuid.UUID { return p.ID }

// Assign ignores id: a profile is keyed by its owner.
func (p *Profile) Assign(_, owner uuid.UUID) { p.ID = owner }

func (p *Profile) Touch(now time.Time) { p.UpdatedAt = now }

type UpdateRequest struct {
	FullName          string `json:"fullName" validate:"max=120"`
	InstituteName     string `json:"instituteName" validate:"max=120"`
	Phone             string `json:"phone" validate:"max=32"`
	WhatsAppNumber    string `json:"whatsappNumber" validate:"max=32"`
	WhatsAppGroupLink string `json:"whatsappGroupLink" validate:"omitempty,url"`
}
