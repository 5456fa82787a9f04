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

type ChatRepository interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	// ListByTeam returns the most recent limit messages, oldest first.
	ListByTeam(ctx context.Context, teamID uuid.UUID, limit int) ([]*models.ChatMessage, error)
	// LatestCreatedAt returns the zero time when the team has no messages.
	LatestCreatedAt(ctx context.Context, teamID uuid.UUID) (time.Time, error)
	Count(ctx context.Context) (int, error)
}

type sqlChatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) ChatRepository {
	return &sqlChatRepository{db: db}
}

func (r *sqlChatRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	query := r.db.Rebind(`
		INSERT INTO team_chat (id, team_id, user_id, message, created_at)
		VALUES (?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		message.ID,
		message.TeamID,
		message.UserID,
		message.Message,
		message.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to store chat message for team %s: %w", message.TeamID, err)
	}
	return nil
}

func (r *sqlChatRepository) ListByTeam(ctx context.Context, teamID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	query := r.db.Rebind(`
		SELECT id, team_id, user_id, message, created_at, user_email FROM (
			SELECT c.id, c.team_id, c.user_id, c.message, c.created_at, u.email AS user_email
			FROM team_chat c
			JOIN users u ON u.id = c.user_id
			WHERE c.team_id = ?
			ORDER BY c.created_at DESC
			LIMIT ?
		) AS recent
		ORDER BY created_at ASC`)

	messages := make([]*models.ChatMessage, 0)
	if err := r.db.SelectContext(ctx, &messages, query, teamID, limit); err != nil {
		return nil, fmt.Errorf("failed to list chat for team %s: %w", teamID, err)
	}
	return messages, nil
}

func (r *sqlChatRepository) LatestCreatedAt(ctx context.Context, teamID uuid.UUID) (time.Time, error) {
	query := r.db.Rebind(`SELECT created_at FROM team_chat WHERE team_id = ? ORDER BY created_at DESC LIMIT 1`)

	var latest time.Time
	if err := r.db.GetContext(ctx, &latest, query, teamID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to read latest chat time for team %s: %w", teamID, err)
	}
	return latest, nil
}

func (r *sqlChatRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM team_chat`); err != nil {
		return 0, fmt.Errorf("failed to count chat messages: %w", err)
	}
	return count, nil
}
