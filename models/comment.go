package models

import (
	"time"

	"github.com/google/uuid"
)

type EventComment struct {
	ID        uuid.UUID `json:"id" db:"id"`
	EventID   uuid.UUID `json:"event_id" db:"event_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Comment   string    `json:"comment" db:"comment"`
	Rating    *int      `json:"rating,omitempty" db:"rating"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	UserEmail string `json:"user_email,omitempty" db:"user_email"`
}

type CommentThread struct {
	Comments      []*EventComment `json:"comments"`
	AverageRating *float64        `json:"average_rating,omitempty"`
	RatingCount   int             `json:"rating_count"`
}
