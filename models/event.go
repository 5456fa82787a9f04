package models

import (
	"time"

	"github.com/google/uuid"
)

type EventState string

const (
	EventPending   EventState = "pending"
	EventConfirmed EventState = "confirmed"
)

type Event struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	TeamID       uuid.UUID  `json:"team_id" db:"team_id"`
	Title        string     `json:"title" db:"title"`
	Description  *string    `json:"description,omitempty" db:"description"`
	Location     *string    `json:"location,omitempty" db:"location"`
	StartTime    time.Time  `json:"start_time" db:"start_time"`
	EndTime      time.Time  `json:"end_time" db:"end_time"`
	MinPlayers   int        `json:"min_players" db:"min_players"`
	MaxPlayers   *int       `json:"max_players,omitempty" db:"max_players"`
	VoteDeadline *time.Time `json:"vote_deadline,omitempty" db:"vote_deadline"`
	IsConfirmed  bool       `json:"is_confirmed" db:"is_confirmed"`
	ReminderSent bool       `json:"reminder_sent" db:"reminder_sent"`
	CreatedBy    uuid.UUID  `json:"created_by" db:"created_by"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

func (e *Event) State() EventState {
	if e.IsConfirmed {
		return EventConfirmed
	}
	return EventPending
}

// EventSummary is an event together with its attendance tally. Quorum is
// reported only; confirmation stays a manual admin action.
type EventSummary struct {
	Event             *Event            `json:"event"`
	State             EventState        `json:"state"`
	AttendingCount    int               `json:"attending_count"`
	NotAttendingCount int               `json:"not_attending_count"`
	QuorumReached     bool              `json:"quorum_reached"`
	IsFull            bool              `json:"is_full"`
	MyStatus          *AttendanceStatus `json:"my_status,omitempty"`
}
