package models

import (
	"time"

	"github.com/google/uuid"
)

type AttendanceStatus string

const (
	AttendanceAttending    AttendanceStatus = "attending"
	AttendanceNotAttending AttendanceStatus = "not_attending"
)

func (s AttendanceStatus) Valid() bool {
	return s == AttendanceAttending || s == AttendanceNotAttending
}

type EventAttendance struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	EventID   uuid.UUID        `json:"event_id" db:"event_id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	Status    AttendanceStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`

	UserEmail string `json:"user_email,omitempty" db:"user_email"`
}
