package models

import (
	"time"

	"github.com/google/uuid"
)

// AdminInvite grants platform administrator rights to whoever signs up with
// the matching email and token. Only the token hash is persisted.
type AdminInvite struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Email     string     `json:"email" db:"email"`
	TokenHash string     `json:"-" db:"token_hash"`
	InvitedBy *uuid.UUID `json:"invited_by,omitempty" db:"invited_by"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty" db:"used_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
