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
	ErrAdminInviteNotFound      = errors.New("admin invite not found")
	ErrAdminInviteTokenConflict = errors.New("admin invite token conflict")
)

type AdminInviteRepository interface {
	Create(ctx context.Context, invite *models.AdminInvite) error
	// GetActiveByTokenHash returns an unused invite that has not expired at now.
	GetActiveByTokenHash(ctx context.Context, exec SQLExecutor, tokenHash string, now time.Time) (*models.AdminInvite, error)
	// MarkUsed consumes the invite. It fails with ErrAdminInviteNotFound if the
	// invite was already consumed by someone else.
	MarkUsed(ctx context.Context, exec SQLExecutor, id uuid.UUID, usedAt time.Time) error
}

type sqlAdminInviteRepository struct {
	db *sqlx.DB
}

func NewAdminInviteRepository(db *sqlx.DB) AdminInviteRepository {
	return &sqlAdminInviteRepository{db: db}
}

func (r *sqlAdminInviteRepository) Create(ctx context.Context, invite *models.AdminInvite) error {
	query := r.db.Rebind(`
		INSERT INTO admin_invites (id, email, token_hash, invited_by, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		invite.ID,
		invite.Email,
		invite.TokenHash,
		invite.InvitedBy,
		invite.ExpiresAt,
		invite.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAdminInviteTokenConflict
		}
		return fmt.Errorf("failed to create admin invite: %w", err)
	}
	return nil
}

func (r *sqlAdminInviteRepository) GetActiveByTokenHash(ctx context.Context, exec SQLExecutor, tokenHash string, now time.Time) (*models.AdminInvite, error) {
	ex := executor(r.db, exec)
	query := ex.Rebind(`
		SELECT id, email, token_hash, invited_by, expires_at, used_at, created_at
		FROM admin_invites
		WHERE token_hash = ? AND used_at IS NULL AND expires_at > ?`)

	var invite models.AdminInvite
	if err := sqlx.GetContext(ctx, ex, &invite, query, tokenHash, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminInviteNotFound
		}
		return nil, err
	}
	return &invite, nil
}

func (r *sqlAdminInviteRepository) MarkUsed(ctx context.Context, exec SQLExecutor, id uuid.UUID, usedAt time.Time) error {
	ex := executor(r.db, exec)
	query := ex.Rebind(`UPDATE admin_invites SET used_at = ? WHERE id = ? AND used_at IS NULL`)

	result, err := ex.ExecContext(ctx, query, usedAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark admin invite used: %w", err)
	}
	return checkAffectedRows(result, ErrAdminInviteNotFound)
}
