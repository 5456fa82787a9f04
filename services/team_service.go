package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Dosada05/team-hub/models"
	"github.com/Dosada05/team-hub/notify"
	"github.com/Dosada05/team-hub/repositories"
	"github.com/Dosada05/team-hub/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TeamService interface {
	CreateTeam(ctx context.Context, creatorID uuid.UUID, input CreateTeamInput) (*models.Team, error)
	JoinTeam(ctx context.Context, userID uuid.UUID, inviteCode string) (*models.Team, error)
	UpdateTeam(ctx context.Context, actorID, teamID uuid.UUID, input UpdateTeamInput) (*models.Team, error)
	RegenerateInviteCode(ctx context.Context, actorID, teamID uuid.UUID) (*models.Team, error)
	ListMyTeams(ctx context.Context, userID uuid.UUID) ([]*models.Team, error)
	GetTeam(ctx context.Context, actorID, teamID uuid.UUID) (*models.Team, error)
	ListMembers(ctx context.Context, actorID, teamID uuid.UUID) ([]*models.TeamMember, error)
	RemoveMember(ctx context.Context, actorID, teamID, userID uuid.UUID) error
	UploadLogo(ctx context.Context, actorID, teamID uuid.UUID, contentType string, file io.Reader) (*models.Team, error)
	DeleteTeam(ctx context.Context, actorID, teamID uuid.UUID) error
}

type CreateTeamInput struct {
	Name        string  `json:"name"`
	Sport       string  `json:"sport"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
}

// UpdateTeamInput is a partial update: nil fields keep their value.
type UpdateTeamInput struct {
	Name        *string `json:"name,omitempty"`
	Sport       *string `json:"sport,omitempty"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
}

type teamService struct {
	teamAccess
	txManager repositories.TxManager
	uploader  storage.FileUploader
	events    notify.EventPublisher
	log       *zap.Logger
	now       func() time.Time
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	memberRepo repositories.TeamMemberRepository,
	txManager repositories.TxManager,
	uploader storage.FileUploader,
	events notify.EventPublisher,
	log *zap.Logger,
) TeamService {
	return &teamService{
		teamAccess: teamAccess{teamRepo: teamRepo, memberRepo: memberRepo},
		txManager:  txManager,
		uploader:   uploader,
		events:     events,
		log:        named(log, "teams"),
		now:        time.Now,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, creatorID uuid.UUID, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	sport := strings.TrimSpace(input.Sport)
	if sport == "" {
		return nil, ErrTeamSportRequired
	}

	now := timestamp(s.now)
	team := &models.Team{
		ID:          uuid.New(),
		Name:        name,
		Sport:       sport,
		Description: trimOptional(input.Description),
		Location:    trimOptional(input.Location),
		CreatedBy:   creatorID,
		CreatedAt:   now,
	}

	for attempt := 0; attempt < inviteCodeMaxAttempts; attempt++ {
		code, err := generateInviteCode(name)
		if err != nil {
			return nil, fmt.Errorf("failed to generate invite code: %w", err)
		}
		team.InviteCode = code

		// Команда и членство создателя появляются вместе или не появляются вовсе.
		err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			if err := s.teamRepo.Create(ctx, exec, team); err != nil {
				return err
			}
			return s.memberRepo.Add(ctx, exec, &models.TeamMember{
				ID:       uuid.New(),
				TeamID:   team.ID,
				UserID:   creatorID,
				Role:     models.RoleAdmin,
				JoinedAt: now,
			})
		})
		if err == nil {
			s.log.Info("team created",
				zap.String("team_id", team.ID.String()),
				zap.String("created_by", creatorID.String()),
			)
			return team, nil
		}
		if errors.Is(err, repositories.ErrTeamInviteCodeConflict) {
			continue
		}
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	return nil, fmt.Errorf("failed to generate a unique invite code after %d attempts", inviteCodeMaxAttempts)
}

func (s *teamService) JoinTeam(ctx context.Context, userID uuid.UUID, inviteCode string) (*models.Team, error) {
	code := normalizeInviteCode(inviteCode)
	if code == "" {
		return nil, ErrInviteCodeNotFound
	}

	team, err := s.teamRepo.GetByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrInviteCodeNotFound
		}
		return nil, fmt.Errorf("failed to look up invite code: %w", err)
	}

	member := &models.TeamMember{
		ID:       uuid.New(),
		TeamID:   team.ID,
		UserID:   userID,
		Role:     models.RolePlayer,
		JoinedAt: timestamp(s.now),
	}
	if err := s.memberRepo.Add(ctx, nil, member); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMemberConflict):
			return nil, ErrAlreadyMember
		case errors.Is(err, repositories.ErrTeamNotFound):
			return nil, ErrInviteCodeNotFound
		}
		return nil, fmt.Errorf("failed to join team %s: %w", team.ID, err)
	}

	s.publish(ctx, notify.EventTeamJoined, team.ID, map[string]string{
		"team_id": team.ID.String(),
		"user_id": userID.String(),
	})

	populateTeamLogoURLFunc(team, s.uploader)
	return team, nil
}

func (s *teamService) UpdateTeam(ctx context.Context, actorID, teamID uuid.UUID, input UpdateTeamInput) (*models.Team, error) {
	if _, err := s.requireTeamAdmin(ctx, teamID, actorID); err != nil {
		return nil, err
	}
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTeamNameRequired
		}
		team.Name = name
	}
	if input.Sport != nil {
		sport := strings.TrimSpace(*input.Sport)
		if sport == "" {
			return nil, ErrTeamSportRequired
		}
		team.Sport = sport
	}
	if input.Description != nil {
		team.Description = trimOptional(input.Description)
	}
	if input.Location != nil {
		team.Location = trimOptional(input.Location)
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to update team %s: %w", teamID, err)
	}

	populateTeamLogoURLFunc(team, s.uploader)
	return team, nil
}

func (s *teamService) RegenerateInviteCode(ctx context.Context, actorID, teamID uuid.UUID) (*models.Team, error) {
	if _, err := s.requireTeamAdmin(ctx, teamID, actorID); err != nil {
		return nil, err
	}
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < inviteCodeMaxAttempts; attempt++ {
		code, err := generateInviteCode(team.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to generate invite code: %w", err)
		}
		err = s.teamRepo.UpdateInviteCode(ctx, teamID, code)
		if err == nil {
			team.InviteCode = code
			populateTeamLogoURLFunc(team, s.uploader)
			return team, nil
		}
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		if !errors.Is(err, repositories.ErrTeamInviteCodeConflict) {
			return nil, fmt.Errorf("failed to update invite code: %w", err)
		}
	}

	return nil, fmt.Errorf("failed to generate a unique invite code after %d attempts", inviteCodeMaxAttempts)
}

func (s *teamService) ListMyTeams(ctx context.Context, userID uuid.UUID) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	for _, team := range teams {
		populateTeamLogoURLFunc(team, s.uploader)
	}
	return teams, nil
}

func (s *teamService) GetTeam(ctx context.Context, actorID, teamID uuid.UUID) (*models.Team, error) {
	if _, err := s.requireMember(ctx, teamID, actorID); err != nil {
		return nil, err
	}
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	populateTeamLogoURLFunc(team, s.uploader)
	return team, nil
}

func (s *teamService) ListMembers(ctx context.Context, actorID, teamID uuid.UUID) ([]*models.TeamMember, error) {
	if _, err := s.requireMember(ctx, teamID, actorID); err != nil {
		return nil, err
	}
	members, err := s.memberRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// RemoveMember: админ может удалить любого, игрок только себя.
// Последний админ команды уйти не может.
func (s *teamService) RemoveMember(ctx context.Context, actorID, teamID, userID uuid.UUID) error {
	actor, err := s.requireMember(ctx, teamID, actorID)
	if err != nil {
		return err
	}
	if actorID != userID && !actor.IsAdmin() {
		return ErrTeamAdminRequired
	}

	return s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.memberRepo.Remove(ctx, exec, teamID, userID); err != nil {
			if errors.Is(err, repositories.ErrMemberNotFound) {
				return ErrMemberNotFound
			}
			return fmt.Errorf("failed to remove member: %w", err)
		}
		admins, err := s.memberRepo.CountAdmins(ctx, exec, teamID)
		if err != nil {
			return err
		}
		if admins == 0 {
			return ErrLastAdmin
		}
		return nil
	})
}

func (s *teamService) UploadLogo(ctx context.Context, actorID, teamID uuid.UUID, contentType string, file io.Reader) (*models.Team, error) {
	if s.uploader == nil {
		return nil, ErrLogoStorageDisabled
	}
	if _, err := s.requireTeamAdmin(ctx, teamID, actorID); err != nil {
		return nil, err
	}
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	key, err := storage.TeamLogoKey(teamID, contentType)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedContentType) {
			return nil, ErrInvalidLogo
		}
		return nil, err
	}

	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload logo: %w", err)
	}

	if err := s.teamRepo.UpdateLogoKey(ctx, teamID, &key); err != nil {
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			s.log.Warn("failed to clean up orphaned logo", zap.String("key", key), zap.Error(delErr))
		}
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to save logo key: %w", err)
	}

	if previous := derefString(team.LogoKey); previous != "" && previous != key {
		if err := s.uploader.Delete(ctx, previous); err != nil {
			s.log.Warn("failed to delete previous logo", zap.String("key", previous), zap.Error(err))
		}
	}

	team.LogoKey = &key
	populateTeamLogoURLFunc(team, s.uploader)
	return team, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, actorID, teamID uuid.UUID) error {
	if _, err := s.requireTeamAdmin(ctx, teamID, actorID); err != nil {
		return err
	}
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return err
	}

	if err := s.teamRepo.Delete(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to delete team %s: %w", teamID, err)
	}

	if key := derefString(team.LogoKey); key != "" && s.uploader != nil {
		if err := s.uploader.Delete(ctx, key); err != nil {
			s.log.Warn("failed to delete logo of removed team", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

func (s *teamService) publish(ctx context.Context, name string, teamID uuid.UUID, data interface{}) {
	publishDomainEvent(ctx, s.events, s.log, name, teamID.String(), data, timestamp(s.now))
}
