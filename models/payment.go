package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type EventPayment struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	EventID     uuid.UUID     `json:"event_id" db:"event_id"`
	UserID      uuid.UUID     `json:"user_id" db:"user_id"`
	AmountCents int64         `json:"amount_cents" db:"amount_cents"`
	Status      PaymentStatus `json:"status" db:"status"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`

	EventTitle string `json:"event_title,omitempty" db:"event_title"`
}
