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

var (
	ErrTeamNotFound           = errors.New("team not found")
	ErrTeamInviteCodeConflict = errors.New("team invite code conflict")
)

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	GetByInviteCode(ctx context.Context, code string) (*models.Team, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	UpdateInviteCode(ctx context.Context, id uuid.UUID, code string) error
	UpdateLogoKey(ctx context.Context, id uuid.UUID, logoKey *string) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

type sqlTeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) TeamRepository {
	return &sqlTeamRepository{db: db}
}

const teamColumns = `t.id, t.name, t.sport, t.description, t.location, t.invite_code, t.logo_key, t.created_by, t.created_at`

func (r *sqlTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	ex := executor(r.db, exec)
	query := ex.Rebind(`
		INSERT INTO teams (id, name, sport, description, location, invite_code, logo_key, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := ex.ExecContext(ctx, query,
		team.ID,
		team.Name,
		team.Sport,
		team.Description,
		team.Location,
		team.InviteCode,
		team.LogoKey,
		team.CreatedBy,
		team.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTeamInviteCodeConflict
		}
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (r *sqlTeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	query := r.db.Rebind(`SELECT ` + teamColumns + ` FROM teams t WHERE t.id = ?`)
	return r.getOne(ctx, query, id)
}

func (r *sqlTeamRepository) GetByInviteCode(ctx context.Context, code string) (*models.Team, error) {
	query := r.db.Rebind(`SELECT ` + teamColumns + ` FROM teams t WHERE t.invite_code = ?`)
	return r.getOne(ctx, query, code)
}

func (r *sqlTeamRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Team, error) {
	query := r.db.Rebind(`
		SELECT ` + teamColumns + `
		FROM teams t
		JOIN team_members tm ON tm.team_id = t.id
		WHERE tm.user_id = ?
		ORDER BY t.name ASC, t.created_at ASC`)

	teams := make([]*models.Team, 0)
	if err := r.db.SelectContext(ctx, &teams, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list teams for user %s: %w", userID, err)
	}
	return teams, nil
}

func (r *sqlTeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := r.db.Rebind(`
		UPDATE teams
		SET name = ?, sport = ?, description = ?, location = ?
		WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query,
		team.Name,
		team.Sport,
		team.Description,
		team.Location,
		team.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update team %s: %w", team.ID, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *sqlTeamRepository) UpdateInviteCode(ctx context.Context, id uuid.UUID, code string) error {
	query := r.db.Rebind(`UPDATE teams SET invite_code = ? WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, code, id)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTeamInviteCodeConflict
		}
		return fmt.Errorf("failed to update invite code for team %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *sqlTeamRepository) UpdateLogoKey(ctx context.Context, id uuid.UUID, logoKey *string) error {
	query := r.db.Rebind(`UPDATE teams SET logo_key = ? WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update logo for team %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *sqlTeamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := r.db.Rebind(`DELETE FROM teams WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete team %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *sqlTeamRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM teams`); err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}
	return count, nil
}

func (r *sqlTeamRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.Team, error) {
	var team models.Team
	if err := r.db.GetContext(ctx, &team, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}
