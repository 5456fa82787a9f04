package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/team-hub/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrEventCheckViolation = errors.New("event violates a table constraint")
)

// EventFilter narrows ListByTeam. Nil fields are not applied.
type EventFilter struct {
	Confirmed   *bool
	StartsAfter *time.Time
}

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID, filter EventFilter) ([]*models.Event, error)
	// Update never clears is_confirmed and never sets reminder_sent: both
	// flags can only move the way a concurrent Confirm or reminder run moves them.
	Update(ctx context.Context, event *models.Event) error
	Confirm(ctx context.Context, id uuid.UUID, updatedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListUpcomingForUser(ctx context.Context, userID uuid.UUID, from time.Time, limit int) ([]*models.Event, error)
	CountByConfirmation(ctx context.Context, confirmed bool) (int, error)
	// ListDueReminders returns confirmed events starting in [from, until)
	// whose reminder has not been sent yet.
	ListDueReminders(ctx context.Context, from, until time.Time) ([]*models.Event, error)
	// MarkReminderSent reports whether this call flipped the flag. A false
	// result means another runner already claimed the reminder.
	MarkReminderSent(ctx context.Context, id uuid.UUID) (bool, error)
}

type sqlEventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) EventRepository {
	return &sqlEventRepository{db: db}
}

const eventColumns = `e.id, e.team_id, e.title, e.description, e.location, e.start_time, e.end_time,
	e.min_players, e.max_players, e.vote_deadline, e.is_confirmed, e.reminder_sent,
	e.created_by, e.created_at, e.updated_at`

func (r *sqlEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := r.db.Rebind(`
		INSERT INTO events (id, team_id, title, description, location, start_time, end_time,
			min_players, max_players, vote_deadline, is_confirmed, reminder_sent,
			created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.TeamID,
		event.Title,
		event.Description,
		event.Location,
		event.StartTime,
		event.EndTime,
		event.MinPlayers,
		event.MaxPlayers,
		event.VoteDeadline,
		event.IsConfirmed,
		event.ReminderSent,
		event.CreatedBy,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return ErrTeamNotFound
		case isCheckViolation(err):
			return ErrEventCheckViolation
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *sqlEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	query := r.db.Rebind(`SELECT ` + eventColumns + ` FROM events e WHERE e.id = ?`)

	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *sqlEventRepository) ListByTeam(ctx context.Context, teamID uuid.UUID, filter EventFilter) ([]*models.Event, error) {
	conditions := []string{"e.team_id = ?"}
	args := []interface{}{teamID}

	if filter.Confirmed != nil {
		conditions = append(conditions, "e.is_confirmed = ?")
		args = append(args, *filter.Confirmed)
	}
	if filter.StartsAfter != nil {
		conditions = append(conditions, "e.start_time >= ?")
		args = append(args, *filter.StartsAfter)
	}

	query := r.db.Rebind(`SELECT ` + eventColumns + ` FROM events e WHERE ` +
		strings.Join(conditions, " AND ") +
		` ORDER BY e.start_time ASC, e.created_at ASC`)

	events := make([]*models.Event, 0)
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list events for team %s: %w", teamID, err)
	}
	return events, nil
}

func (r *sqlEventRepository) Update(ctx context.Context, event *models.Event) error {
	query := r.db.Rebind(`
		UPDATE events
		SET title = ?, description = ?, location = ?, start_time = ?, end_time = ?,
			min_players = ?, max_players = ?, vote_deadline = ?,
			is_confirmed = (is_confirmed OR ?), reminder_sent = (reminder_sent AND ?), updated_at = ?
		WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query,
		event.Title,
		event.Description,
		event.Location,
		event.StartTime,
		event.EndTime,
		event.MinPlayers,
		event.MaxPlayers,
		event.VoteDeadline,
		event.IsConfirmed,
		event.ReminderSent,
		event.UpdatedAt,
		event.ID,
	)
	if err != nil {
		if isCheckViolation(err) {
			return ErrEventCheckViolation
		}
		return fmt.Errorf("failed to update event %s: %w", event.ID, err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

// Confirm sets is_confirmed. Confirming an already confirmed event is not an error.
func (r *sqlEventRepository) Confirm(ctx context.Context, id uuid.UUID, updatedAt time.Time) error {
	query := r.db.Rebind(`UPDATE events SET is_confirmed = ?, updated_at = ? WHERE id = ? AND is_confirmed = ?`)

	result, err := r.db.ExecContext(ctx, query, true, updatedAt, id, false)
	if err != nil {
		return fmt.Errorf("failed to confirm event %s: %w", id, err)
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
	return nil
}

func (r *sqlEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := r.db.Rebind(`DELETE FROM events WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *sqlEventRepository) ListUpcomingForUser(ctx context.Context, userID uuid.UUID, from time.Time, limit int) ([]*models.Event, error) {
	query := r.db.Rebind(`
		SELECT ` + eventColumns + `
		FROM events e
		JOIN team_members tm ON tm.team_id = e.team_id
		WHERE tm.user_id = ? AND e.is_confirmed = ? AND e.start_time >= ?
		ORDER BY e.start_time ASC
		LIMIT ?`)

	events := make([]*models.Event, 0)
	if err := r.db.SelectContext(ctx, &events, query, userID, true, from, limit); err != nil {
		return nil, fmt.Errorf("failed to list upcoming events for user %s: %w", userID, err)
	}
	return events, nil
}

func (r *sqlEventRepository) CountByConfirmation(ctx context.Context, confirmed bool) (int, error) {
	query := r.db.Rebind(`SELECT COUNT(*) FROM events WHERE is_confirmed = ?`)

	var count int
	if err := r.db.GetContext(ctx, &count, query, confirmed); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

func (r *sqlEventRepository) ListDueReminders(ctx context.Context, from, until time.Time) ([]*models.Event, error) {
	query := r.db.Rebind(`
		SELECT ` + eventColumns + `
		FROM events e
		WHERE e.is_confirmed = ? AND e.reminder_sent = ? AND e.start_time >= ? AND e.start_time < ?
		ORDER BY e.start_time ASC`)

	events := make([]*models.Event, 0)
	if err := r.db.SelectContext(ctx, &events, query, true, false, from, until); err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	return events, nil
}

func (r *sqlEventRepository) MarkReminderSent(ctx context.Context, id uuid.UUID) (bool, error) {
	query := r.db.Rebind(`UPDATE events SET reminder_sent = ? WHERE id = ? AND reminder_sent = ?`)

	result, err := r.db.ExecContext(ctx, query, true, id, false)
	if err != nil {
		return false, fmt.Errorf("failed to mark reminder sent for event %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rows > 0, nil
}
