package models

import (
	"time"

	"github.com/google/uuid"
)

type MemberRole string

const (
	RoleAdmin  MemberRole = "admin"
	RolePlayer MemberRole = "player"
)

type Team struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Sport       string    `json:"sport" db:"sport"`
	Description *string   `json:"description,omitempty" db:"description"`
	Location    *string   `json:"location,omitempty" db:"location"`
	InviteCode  string    `json:"invite_code" db:"invite_code"`
	CreatedBy   uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}

type TeamMember struct {
	ID       uuid.UUID  `json:"id" db:"id"`
	TeamID   uuid.UUID  `json:"team_id" db:"team_id"`
	UserID   uuid.UUID  `json:"user_id" db:"user_id"`
	Role     MemberRole `json:"role" db:"role"`
	JoinedAt time.Time  `json:"joined_at" db:"joined_at"`

	UserEmail string `json:"user_email,omitempty" db:"user_email"`
}

func (m *TeamMember) IsAdmin() bool {
	return m != nil && m.Role == RoleAdmin
}
