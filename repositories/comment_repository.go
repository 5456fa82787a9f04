package repositories

import (
	"context"
	"fmt"

	"github.com/Dosada05/team-hub/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// RatingStats aggregates the optional ratings attached to comments.
type RatingStats struct {
	Average *float64 `db:"average"`
	Count   int      `db:"rating_count"`
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.EventComment) error
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.EventComment, error)
	RatingStats(ctx context.Context, eventID uuid.UUID) (RatingStats, error)
}

type sqlCommentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &sqlCommentRepository{db: db}
}

func (r *sqlCommentRepository) Create(ctx context.Context, comment *models.EventComment) error {
	query := r.db.Rebind(`
		INSERT INTO event_comments (id, event_id, user_id, comment, rating, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		comment.ID,
		comment.EventID,
		comment.UserID,
		comment.Comment,
		comment.Rating,
		comment.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to create comment for event %s: %w", comment.EventID, err)
	}
	return nil
}

func (r *sqlCommentRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.EventComment, error) {
	query := r.db.Rebind(`
		SELECT c.id, c.event_id, c.user_id, c.comment, c.rating, c.created_at, u.email AS user_email
		FROM event_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.event_id = ?
		ORDER BY c.created_at ASC`)

	comments := make([]*models.EventComment, 0)
	if err := r.db.SelectContext(ctx, &comments, query, eventID); err != nil {
		return nil, fmt.Errorf("failed to list comments for event %s: %w", eventID, err)
	}
	return comments, nil
}

func (r *sqlCommentRepository) RatingStats(ctx context.Context, eventID uuid.UUID) (RatingStats, error) {
	query := r.db.Rebind(`
		SELECT AVG(CAST(rating AS REAL)) AS average, COUNT(rating) AS rating_count
		FROM event_comments
		WHERE event_id = ?`)

	var stats RatingStats
	if err := r.db.GetContext(ctx, &stats, query, eventID); err != nil {
		return RatingStats{}, fmt.Errorf("failed to aggregate ratings for event %s: %w", eventID, err)
	}
	return stats, nil
}
