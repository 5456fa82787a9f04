package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/team-hub/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrAttendanceNotFound = errors.New("attendance not found")

// AttendanceCounts is the tally of votes for one event.
type AttendanceCounts struct {
	Attending    int `db:"attending"`
	NotAttending int `db:"not_attending"`
}

type AttendanceRepository interface {
	// Upsert records the vote; an existing (event, user) row is overwritten so
	// only the latest status survives.
	Upsert(ctx context.Context, attendance *models.EventAttendance) error
	Get(ctx context.Context, eventID, userID uuid.UUID) (*models.EventAttendance, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.EventAttendance, error)
	CountByStatus(ctx context.Context, eventID uuid.UUID) (AttendanceCounts, error)
}

type sqlAttendanceRepository struct {
	db *sqlx.DB
}

func NewAttendanceRepository(db *sqlx.DB) AttendanceRepository {
	return &sqlAttendanceRepository{db: db}
}

const attendanceSelect = `
	SELECT a.id, a.event_id, a.user_id, a.status, a.created_at, a.updated_at, u.email AS user_email
	FROM event_attendance a
	JOIN users u ON u.id = a.user_id`

func (r *sqlAttendanceRepository) Upsert(ctx context.Context, attendance *models.EventAttendance) error {
	query := r.db.Rebind(`
		INSERT INTO event_attendance (id, event_id, user_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (event_id, user_id)
		DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`)

	_, err := r.db.ExecContext(ctx, query,
		attendance.ID,
		attendance.EventID,
		attendance.UserID,
		attendance.Status,
		attendance.CreatedAt,
		attendance.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to upsert attendance for event %s: %w", attendance.EventID, err)
	}
	return nil
}

func (r *sqlAttendanceRepository) Get(ctx context.Context, eventID, userID uuid.UUID) (*models.EventAttendance, error) {
	query := r.db.Rebind(attendanceSelect + ` WHERE a.event_id = ? AND a.user_id = ?`)

	var attendance models.EventAttendance
	if err := r.db.GetContext(ctx, &attendance, query, eventID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAttendanceNotFound
		}
		return nil, err
	}
	return &attendance, nil
}

func (r *sqlAttendanceRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.EventAttendance, error) {
	query := r.db.Rebind(attendanceSelect + ` WHERE a.event_id = ? ORDER BY a.updated_at ASC`)

	list := make([]*models.EventAttendance, 0)
	if err := r.db.SelectContext(ctx, &list, query, eventID); err != nil {
		return nil, fmt.Errorf("failed to list attendance for event %s: %w", eventID, err)
	}
	return list, nil
}

func (r *sqlAttendanceRepository) CountByStatus(ctx context.Context, eventID uuid.UUID) (AttendanceCounts, error) {
	query := r.db.Rebind(`
		SELECT
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS attending,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS not_attending
		FROM event_attendance
		WHERE event_id = ?`)

	var counts AttendanceCounts
	err := r.db.GetContext(ctx, &counts, query,
		models.AttendanceAttending,
		models.AttendanceNotAttending,
		eventID,
	)
	if err != nil {
		return AttendanceCounts{}, fmt.Errorf("failed to count attendance for event %s: %w", eventID, err)
	}
	return counts, nil
}
