package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/team-hub/models"
	"github.com/Dosada05/team-hub/notify"
	"github.com/Dosada05/team-hub/repositories"
	"github.com/Dosada05/team-hub/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	minPasswordLength      = 8
	adminInviteTokenLength = 24
)

type AuthService interface {
	SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
	SignOut(ctx context.Context, claims *Claims) error
	// Authenticate validates a bearer token and rejects revoked ones.
	Authenticate(ctx context.Context, token string) (*Claims, error)
	Me(ctx context.Context, userID uuid.UUID) (*models.User, error)
	// IssueAdminInvite is the API path: only platform admins may invite.
	IssueAdminInvite(ctx context.Context, adminID uuid.UUID, email string) (*AdminInviteResult, error)
	// CreateAdminInvite skips the caller check; invitedBy is nil for the CLI.
	CreateAdminInvite(ctx context.Context, invitedBy *uuid.UUID, email string) (*AdminInviteResult, error)
}

type SignUpInput struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	AdminInvite *string `json:"admin_invite,omitempty"`
}

type AuthResult struct {
	User      *models.User `json:"user"`
	IsAdmin   bool         `json:"is_admin"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type AdminInviteResult struct {
	Invite *models.AdminInvite `json:"invite"`
	Token  string              `json:"token"`
}

type authService struct {
	userRepo   repositories.UserRepository
	inviteRepo repositories.AdminInviteRepository
	txManager  repositories.TxManager
	denylist   repositories.TokenDenylist
	tokens     TokenIssuer
	mailer     notify.Mailer
	inviteTTL  time.Duration
	log        *zap.Logger
	now        func() time.Time
}

func NewAuthService(
	userRepo repositories.UserRepository,
	inviteRepo repositories.AdminInviteRepository,
	txManager repositories.TxManager,
	denylist repositories.TokenDenylist,
	tokens TokenIssuer,
	mailer notify.Mailer,
	inviteTTL time.Duration,
	log *zap.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		inviteRepo: inviteRepo,
		txManager:  txManager,
		denylist:   denylist,
		tokens:     tokens,
		mailer:     mailer,
		inviteTTL:  inviteTTL,
		log:        named(log, "auth"),
		now:        time.Now,
	}
}

func (s *authService) SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error) {
	email := utils.NormalizeEmail(input.Email)
	if !utils.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := timestamp(s.now)
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
	}

	inviteToken := ""
	if input.AdminInvite != nil {
		inviteToken = strings.TrimSpace(*input.AdminInvite)
	}

	if inviteToken == "" {
		if err := s.userRepo.Create(ctx, nil, user); err != nil {
			return nil, s.mapCreateUserError(err)
		}
	} else {
		// Приглашение гасится в той же транзакции, что и создание пользователя:
		// если вставка упадёт, приглашение останется действительным.
		err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			invite, err := s.inviteRepo.GetActiveByTokenHash(ctx, exec, hashToken(inviteToken), now)
			if err != nil {
				if errors.Is(err, repositories.ErrAdminInviteNotFound) {
					return ErrInvalidAdminInvite
				}
				return fmt.Errorf("failed to look up admin invite: %w", err)
			}
			if invite.Email != email {
				return ErrInvalidAdminInvite
			}
			if err := s.inviteRepo.MarkUsed(ctx, exec, invite.ID, now); err != nil {
				if errors.Is(err, repositories.ErrAdminInviteNotFound) {
					return ErrInvalidAdminInvite
				}
				return fmt.Errorf("failed to consume admin invite: %w", err)
			}
			user.IsAdmin = true
			if err := s.userRepo.Create(ctx, exec, user); err != nil {
				return s.mapCreateUserError(err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		s.log.Info("platform admin registered", zap.String("user_id", user.ID.String()))
	}

	return s.issue(user)
}

func (s *authService) mapCreateUserError(err error) error {
	if errors.Is(err, repositories.ErrUserEmailConflict) {
		return ErrUserEmailConflict
	}
	return fmt.Errorf("failed to create user: %w", err)
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrAuthInvalidCredentials
	}

	return s.issue(user)
}

func (s *authService) issue(user *models.User) (*AuthResult, error) {
	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		User:      user,
		IsAdmin:   user.IsAdmin,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *authService) SignOut(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return ErrAuthenticationFailed
	}
	if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token: %w", err)
	}
	if revoked {
		return nil, ErrAuthenticationFailed
	}
	return claims, nil
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	return user, nil
}

func (s *authService) IssueAdminInvite(ctx context.Context, adminID uuid.UUID, email string) (*AdminInviteResult, error) {
	admin, err := s.Me(ctx, adminID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrAuthenticationFailed
		}
		return nil, err
	}
	if !admin.IsAdmin {
		return nil, ErrPlatformAdminRequired
	}
	return s.CreateAdminInvite(ctx, &admin.ID, email)
}

func (s *authService) CreateAdminInvite(ctx context.Context, invitedBy *uuid.UUID, email string) (*AdminInviteResult, error) {
	email = utils.NormalizeEmail(email)
	if !utils.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	now := timestamp(s.now)
	var (
		invite *models.AdminInvite
		token  string
		err    error
	)
	maxAttempts := 3
	for attempt := 0; attempt < maxAttempts; attempt++ {
		token, err = generateSecureToken(adminInviteTokenLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate admin invite token: %w", err)
		}
		invite = &models.AdminInvite{
			ID:        uuid.New(),
			Email:     email,
			TokenHash: hashToken(token),
			InvitedBy: invitedBy,
			ExpiresAt: now.Add(s.inviteTTL),
			CreatedAt: now,
		}
		err = s.inviteRepo.Create(ctx, invite)
		if err == nil {
			break
		}
		if !errors.Is(err, repositories.ErrAdminInviteTokenConflict) {
			return nil, fmt.Errorf("failed to create admin invite: %w", err)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create admin invite after %d attempts: %w", maxAttempts, err)
	}

	if err := s.mailer.SendAdminInvite(ctx, email, token, invite.ExpiresAt); err != nil {
		// Приглашение уже создано, токен вернётся вызывающему.
		s.log.Warn("failed to email admin invite", zap.String("email", email), zap.Error(err))
	}

	return &AdminInviteResult{Invite: invite, Token: token}, nil
}
