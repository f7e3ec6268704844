package recovery

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Code is a one-time password recovery code. It verifies once, after which it carries
// a grant token that authorizes exactly one password change.
type Code struct {
	bun.BaseModel `bun:"table:recovery_codes,alias:rc"`

	ID             int64     `bun:"id,pk,autoincrement"`
	AccountID      uuid.UUID `bun:"account_id,type:uuid,notnull"`
	CodeHash       string    `bun:"code_hash,notnull"`
	Attempts       int       `bun:"attempts,notnull,default:0"`
	ExpiresAt      time.Time `bun:"expires_at,notnull"`
	GrantToken     string    `bun:"grant_token,unique,nullzero"`
	GrantExpiresAt time.Time `bun:"grant_expires_at,nullzero"`
	VerifiedAt     time.Time `bun:"verified_at,nullzero"`
	ConsumedAt     time.Time `bun:"consumed_at,nullzero"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type RequestCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type VerifyResponse struct {
	RecoveryToken string    `json:"recoveryToken"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// ResetRequest sets the new password. Length is checked by the service so the
// message matches what the client shows.
type ResetRequest struct {
	RecoveryToken string `json:"recoveryToken" validate:"required"`
	Password      string `json:"password"`
}
