package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/team-hub/models"
	"github.com/Dosada05/team-hub/realtime"
	"github.com/Dosada05/team-hub/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AttendanceService interface {
	Vote(ctx context.Context, userID, eventID uuid.UUID, status models.AttendanceStatus) (*models.EventAttendance, error)
	AttendeeCount(ctx context.Context, eventID uuid.UUID) (int, error)
	ListAttendance(ctx context.Context, actorID, eventID uuid.UUID) ([]*models.EventAttendance, error)
}

// AttendanceUpdate is pushed to the team room after every vote.
type AttendanceUpdate struct {
	EventID           uuid.UUID               `json:"event_id"`
	UserID            uuid.UUID               `json:"user_id"`
	Status            models.AttendanceStatus `json:"status"`
	AttendingCount    int                     `json:"attending_count"`
	NotAttendingCount int                     `json:"not_attending_count"`
}

type attendanceService struct {
	teamAccess
	eventRepo      repositories.EventRepository
	attendanceRepo repositories.AttendanceRepository
	publisher      realtime.Publisher
	log            *zap.Logger
	now            func() time.Time
}

func NewAttendanceService(
	teamRepo repositories.TeamRepository,
	memberRepo repositories.TeamMemberRepository,
	eventRepo repositories.EventRepository,
	attendanceRepo repositories.AttendanceRepository,
	publisher realtime.Publisher,
	log *zap.Logger,
) AttendanceService {
	return &attendanceService{
		teamAccess:     teamAccess{teamRepo: teamRepo, memberRepo: memberRepo},
		eventRepo:      eventRepo,
		attendanceRepo: attendanceRepo,
		publisher:      publisher,
		log:            named(log, "attendance"),
		now:            time.Now,
	}
}

// Vote записывает голос участника. Повторный голос перезаписывает прежний.
func (s *attendanceService) Vote(ctx context.Context, userID, eventID uuid.UUID, status models.AttendanceStatus) (*models.EventAttendance, error) {
	if !status.Valid() {
		return nil, ErrInvalidAttendanceStatus
	}

	event, err := getEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireMember(ctx, event.TeamID, userID); err != nil {
		return nil, err
	}

	now := timestamp(s.now)
	if event.VoteDeadline != nil && now.After(*event.VoteDeadline) {
		return nil, ErrVotingClosed
	}
	if !now.Before(event.EndTime) {
		return nil, ErrVotingClosed
	}

	attendance := &models.EventAttendance{
		ID:        uuid.New(),
		EventID:   eventID,
		UserID:    userID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.attendanceRepo.Upsert(ctx, attendance); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to record vote: %w", err)
	}

	stored, err := s.attendanceRepo.Get(ctx, eventID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload vote: %w", err)
	}

	counts, err := s.attendanceRepo.CountByStatus(ctx, eventID)
	if err != nil {
		s.log.Warn("failed to count attendance", zap.String("event_id", eventID.String()), zap.Error(err))
	} else {
		broadcast(ctx, s.publisher, s.log, event.TeamID, realtime.TypeAttendanceUpdated, AttendanceUpdate{
			EventID:           eventID,
			UserID:            userID,
			Status:            status,
			AttendingCount:    counts.Attending,
			NotAttendingCount: counts.NotAttending,
		})
	}

	return stored, nil
}

// AttendeeCount считает голоса attending.
func (s *attendanceService) AttendeeCount(ctx context.Context, eventID uuid.UUID) (int, error) {
	if _, err := getEvent(ctx, s.eventRepo, eventID); err != nil {
		return 0, err
	}
	counts, err := s.attendanceRepo.CountByStatus(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to count attendance: %w", err)
	}
	return counts.Attending, nil
}

func (s *attendanceService) ListAttendance(ctx context.Context, actorID, eventID uuid.UUID) ([]*models.EventAttendance, error) {
	event, err := getEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireMember(ctx, event.TeamID, actorID); err != nil {
		return nil, err
	}
	list, err := s.attendanceRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return list, nil
}
