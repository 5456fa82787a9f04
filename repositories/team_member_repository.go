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
	ErrMemberNotFound = errors.New("team member not found")
	ErrMemberConflict = errors.New("user is already a member of this team")
)

type TeamMemberRepository interface {
	Add(ctx context.Context, exec SQLExecutor, member *models.TeamMember) error
	Get(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMember, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]*models.TeamMember, error)
	CountByTeam(ctx context.Context, teamID uuid.UUID) (int, error)
	CountAdmins(ctx context.Context, exec SQLExecutor, teamID uuid.UUID) (int, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	Remove(ctx context.Context, exec SQLExecutor, teamID, userID uuid.UUID) error
}

type sqlTeamMemberRepository struct {
	db *sqlx.DB
}

func NewTeamMemberRepository(db *sqlx.DB) TeamMemberRepository {
	return &sqlTeamMemberRepository{db: db}
}

const memberSelect = `
	SELECT tm.id, tm.team_id, tm.user_id, tm.role, tm.joined_at, u.email AS user_email
	FROM team_members tm
	JOIN users u ON u.id = tm.user_id`

func (r *sqlTeamMemberRepository) Add(ctx context.Context, exec SQLExecutor, member *models.TeamMember) error {
	ex := executor(r.db, exec)
	query := ex.Rebind(`
		INSERT INTO team_members (id, team_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?, ?)`)

	_, err := ex.ExecContext(ctx, query,
		member.ID,
		member.TeamID,
		member.UserID,
		member.Role,
		member.JoinedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrMemberConflict
		}
		if isForeignKeyViolation(err) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to add member %s to team %s: %w", member.UserID, member.TeamID, err)
	}
	return nil
}

func (r *sqlTeamMemberRepository) Get(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMember, error) {
	query := r.db.Rebind(memberSelect + ` WHERE tm.team_id = ? AND tm.user_id = ?`)

	var member models.TeamMember
	if err := r.db.GetContext(ctx, &member, query, teamID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *sqlTeamMemberRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]*models.TeamMember, error) {
	query := r.db.Rebind(memberSelect + ` WHERE tm.team_id = ? ORDER BY tm.joined_at ASC`)

	members := make([]*models.TeamMember, 0)
	if err := r.db.SelectContext(ctx, &members, query, teamID); err != nil {
		return nil, fmt.Errorf("failed to list members of team %s: %w", teamID, err)
	}
	return members, nil
}

func (r *sqlTeamMemberRepository) CountByTeam(ctx context.Context, teamID uuid.UUID) (int, error) {
	query := r.db.Rebind(`SELECT COUNT(*) FROM team_members WHERE team_id = ?`)

	var count int
	if err := r.db.GetContext(ctx, &count, query, teamID); err != nil {
		return 0, fmt.Errorf("failed to count members of team %s: %w", teamID, err)
	}
	return count, nil
}

func (r *sqlTeamMemberRepository) CountAdmins(ctx context.Context, exec SQLExecutor, teamID uuid.UUID) (int, error) {
	ex := executor(r.db, exec)
	query := ex.Rebind(`SELECT COUNT(*) FROM team_members WHERE team_id = ? AND role = ?`)

	var count int
	if err := sqlx.GetContext(ctx, ex, &count, query, teamID, models.RoleAdmin); err != nil {
		return 0, fmt.Errorf("failed to count admins of team %s: %w", teamID, err)
	}
	return count, nil
}

func (r *sqlTeamMemberRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	query := r.db.Rebind(`SELECT COUNT(*) FROM team_members WHERE user_id = ?`)

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count teams of user %s: %w", userID, err)
	}
	return count, nil
}

func (r *sqlTeamMemberRepository) Remove(ctx context.Context, exec SQLExecutor, teamID, userID uuid.UUID) error {
	ex := executor(r.db, exec)
	query := ex.Rebind(`DELETE FROM team_members WHERE team_id = ? AND user_id = ?`)

	result, err := ex.ExecContext(ctx, query, teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member %s from team %s: %w", userID, teamID, err)
	}
	return checkAffectedRows(result, ErrMemberNotFound)
}
