package announcement

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	MediaNone  = "none"
	MediaImage = "image"
	MediaVideo = "video"
)

type Announcement struct {
	bun.BaseModel `bun:"table:announcements,alias:an"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID    uuid.UUID `bun:"user_id,type:uuid,notnull" json:"userId"`
	Title     string    `bun:"title,notnull" json:"title"`
	Content   string    `bun:"content,notnull" json:"content"`
	MediaURL  string    `bun:"media_url" json:"mediaUrl"`
	MediaType string    `bun:"media_type,notnull,default:'none'" json:"mediaType"`
	Batch     string    `bun:"batch" json:"batch"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

func (a *Announcement) PrimaryKey() uuid.UUID { return a.ID }

func (a *Announcement) Assign(id, owner uuid.UUID) {
	a.ID = id
	a.UserID = owner
}

type Request struct {
	Title     string `json:"title" validate:"required,max=200"`
	Content   string `json:"content" validate:"required"`
	MediaURL  string `json:"mediaUrl" validate:"omitempty,url"`
	MediaType string `json:"mediaType" validate:"omitempty,oneof=image video none"`
	Batch     string `json:"batch" validate:"max=64"`
}
