package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/team-hub/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrPaymentConflict = errors.New("payment already exists for this event and user")
	// ErrPaymentStale is returned when the stored status no longer matches the
	// status the caller based its update on.
	ErrPaymentStale = errors.New("payment status changed concurrently")
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.EventPayment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.EventPayment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, next models.PaymentStatus, updatedAt time.Time) error
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.EventPayment, error)
	ListByUserAndStatus(ctx context.Context, userID uuid.UUID, status models.PaymentStatus) ([]*models.EventPayment, error)
}

type sqlPaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &sqlPaymentRepository{db: db}
}

const paymentSelect = `
	SELECT p.id, p.event_id, p.user_id, p.amount_cents, p.status, p.created_at, p.updated_at, e.title AS event_title
	FROM event_payments p
	JOIN events e ON e.id = p.event_id`

func (r *sqlPaymentRepository) Create(ctx context.Context, payment *models.EventPayment) error {
	query := r.db.Rebind(`
		INSERT INTO event_payments (id, event_id, user_id, amount_cents, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.EventID,
		payment.UserID,
		payment.AmountCents,
		payment.Status,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return ErrPaymentConflict
		case isForeignKeyViolation(err):
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to create payment for event %s: %w", payment.EventID, err)
	}
	return nil
}

func (r *sqlPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.EventPayment, error) {
	query := r.db.Rebind(paymentSelect + ` WHERE p.id = ?`)

	var payment models.EventPayment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// UpdateStatus is a compare-and-set on the status column.
func (r *sqlPaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next models.PaymentStatus, updatedAt time.Time) error {
	query := r.db.Rebind(`UPDATE event_payments SET status = ?, updated_at = ? WHERE id = ? AND status = ?`)

	result, err := r.db.ExecContext(ctx, query, next, updatedAt, id, expected)
	if err != nil {
		return fmt.Errorf("failed to update payment %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rows > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrPaymentStale
}

func (r *sqlPaymentRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.EventPayment, error) {
	query := r.db.Rebind(paymentSelect + ` WHERE p.event_id = ? ORDER BY p.created_at ASC`)

	payments := make([]*models.EventPayment, 0)
	if err := r.db.SelectContext(ctx, &payments, query, eventID); err != nil {
		return nil, fmt.Errorf("failed to list payments for event %s: %w", eventID, err)
	}
	return payments, nil
}

func (r *sqlPaymentRepository) ListByUserAndStatus(ctx context.Context, userID uuid.UUID, status models.PaymentStatus) ([]*models.EventPayment, error) {
	query := r.db.Rebind(paymentSelect + ` WHERE p.user_id = ? AND p.status = ? ORDER BY e.start_time ASC`)

	payments := make([]*models.EventPayment, 0)
	if err := r.db.SelectContext(ctx, &payments, query, userID, status); err != nil {
		return nil, fmt.Errorf("failed to list payments for user %s: %w", userID, err)
	}
	return payments, nil
}
