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
	ErrUserNotFound      = errors.New("user not found")
	ErrUserEmailConflict = errors.New("user email conflict")
)

type UserRepository interface {
	Create(ctx context.Context, exec SQLExecutor, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Count(ctx context.Context) (int, error)
}

type sqlUserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &sqlUserRepository{db: db}
}

const userColumns = `id, email, password_hash, is_admin, created_at`

func (r *sqlUserRepository) Create(ctx context.Context, exec SQLExecutor, user *models.User) error {
	ex := executor(r.db, exec)
	query := ex.Rebind(`
		INSERT INTO users (id, email, password_hash, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?)`)

	_, err := ex.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.IsAdmin,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserEmailConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *sqlUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	return r.scanUser(ctx, query, id)
}

func (r *sqlUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
	return r.scanUser(ctx, query, email)
}

func (r *sqlUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *sqlUserRepository) scanUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
