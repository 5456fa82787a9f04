package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/team-hub/models"
	"github.com/Dosada05/team-hub/notify"
	"github.com/Dosada05/team-hub/realtime"
	"github.com/Dosada05/team-hub/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventService interface {
	CreateEvent(ctx context.Context, actorID, teamID uuid.UUID, input CreateEventInput) (*models.Event, error)
	UpdateEvent(ctx context.Context, actorID, eventID uuid.UUID, patch EventPatch) (*models.Event, error)
	ConfirmEvent(ctx context.Context, actorID, eventID uuid.UUID) (*models.Event, error)
	ListTeamEvents(ctx context.Context, actorID, teamID uuid.UUID, filter EventListFilter) ([]*models.Event, error)
	GetEventSummary(ctx context.Context, actorID, eventID uuid.UUID) (*models.EventSummary, error)
	DeleteEvent(ctx context.Context, actorID, eventID uuid.UUID) error
}

type CreateEventInput struct {
	Title        string     `json:"title"`
	Description  *string    `json:"description,omitempty"`
	Location     *string    `json:"location,omitempty"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      time.Time  `json:"end_time"`
	MinPlayers   int        `json:"min_players"`
	MaxPlayers   *int       `json:"max_players,omitempty"`
	VoteDeadline *time.Time `json:"vote_deadline,omitempty"`
}

// EventPatch is merged over the stored event; nil fields are untouched.
type EventPatch struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Location     *string    `json:"location,omitempty"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	MinPlayers   *int       `json:"min_players,omitempty"`
	MaxPlayers   *int       `json:"max_players,omitempty"` // 0 снимает ограничение
	VoteDeadline *time.Time `json:"vote_deadline,omitempty"`
	IsConfirmed  *bool      `json:"is_confirmed,omitempty"`
}

type EventListFilter struct {
	Confirmed *bool
	Upcoming  bool
}

type eventService struct {
	teamAccess
	eventRepo      repositories.EventRepository
	attendanceRepo repositories.AttendanceRepository
	publisher      realtime.Publisher
	events         notify.EventPublisher
	log            *zap.Logger
	now            func() time.Time
}

func NewEventService(
	teamRepo repositories.TeamRepository,
	memberRepo repositories.TeamMemberRepository,
	eventRepo repositories.EventRepository,
	attendanceRepo repositories.AttendanceRepository,
	publisher realtime.Publisher,
	events notify.EventPublisher,
	log *zap.Logger,
) EventService {
	return &eventService{
		teamAccess:     teamAccess{teamRepo: teamRepo, memberRepo: memberRepo},
		eventRepo:      eventRepo,
		attendanceRepo: attendanceRepo,
		publisher:      publisher,
		events:         events,
		log:            named(log, "events"),
		now:            time.Now,
	}
}

func validateEvent(event *models.Event) error {
	if strings.TrimSpace(event.Title) == "" {
		return ErrEventTitleRequired
	}
	if !event.StartTime.Before(event.EndTime) {
		return ErrEventInvalidTimeRange
	}
	if event.MinPlayers < 1 {
		return ErrEventInvalidMinPlayers
	}
	if event.MaxPlayers != nil && *event.MaxPlayers < event.MinPlayers {
		return ErrEventInvalidMaxPlayers
	}
	if event.VoteDeadline != nil && event.VoteDeadline.After(event.StartTime) {
		return ErrEventInvalidVoteDeadline
	}
	return nil
}

func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func normalizeOptionalTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := normalizeTime(*t)
	return &v
}

func (s *eventService) CreateEvent(ctx context.Context, actorID, teamID uuid.UUID, input CreateEventInput) (*models.Event, error) {
	if _, err := s.requireTeamAdmin(ctx, teamID, actorID); err != nil {
		return nil, err
	}

	now := timestamp(s.now)
	event := &models.Event{
		ID:           uuid.New(),
		TeamID:       teamID,
		Title:        strings.TrimSpace(input.Title),
		Description:  trimOptional(input.Description),
		Location:     trimOptional(input.Location),
		StartTime:    normalizeTime(input.StartTime),
		EndTime:      normalizeTime(input.EndTime),
		MinPlayers:   input.MinPlayers,
		MaxPlayers:   input.MaxPlayers,
		VoteDeadline: normalizeOptionalTime(input.VoteDeadline),
		IsConfirmed:  false,
		CreatedBy:    actorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := validateEvent(event); err != nil {
		return nil, err
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNotFound):
			return nil, ErrTeamNotFound
		case errors.Is(err, repositories.ErrEventCheckViolation):
			return nil, ErrValidationFailed
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	broadcast(ctx, s.publisher, s.log, teamID, realtime.TypeEventCreated, event)
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, actorID, eventID uuid.UUID, patch EventPatch) (*models.Event, error) {
	event, err := getEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireTeamAdmin(ctx, event.TeamID, actorID); err != nil {
		return nil, err
	}

	wasConfirmed := event.IsConfirmed
	if patch.Title != nil {
		event.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		event.Description = trimOptional(patch.Description)
	}
	if patch.Location != nil {
		event.Location = trimOptional(patch.Location)
	}
	if patch.StartTime != nil {
		start := normalizeTime(*patch.StartTime)
		if !start.Equal(event.StartTime) {
			// Напоминание относилось к старому времени.
			event.ReminderSent = false
		}
		event.StartTime = start
	}
	if patch.EndTime != nil {
		event.EndTime = normalizeTime(*patch.EndTime)
	}
	if patch.MinPlayers != nil {
		event.MinPlayers = *patch.MinPlayers
	}
	if patch.MaxPlayers != nil {
		if *patch.MaxPlayers == 0 {
			event.MaxPlayers = nil
		} else {
			event.MaxPlayers = patch.MaxPlayers
		}
	}
	if patch.VoteDeadline != nil {
		event.VoteDeadline = normalizeOptionalTime(patch.VoteDeadline)
	}
	if patch.IsConfirmed != nil {
		next := models.EventPending
		if *patch.IsConfirmed {
			next = models.EventConfirmed
		}
		if !isValidEventTransition(event.State(), next) {
			return nil, ErrEventInvalidTransition
		}
		event.IsConfirmed = *patch.IsConfirmed
	}

	if err := validateEvent(event); err != nil {
		return nil, err
	}
	event.UpdatedAt = timestamp(s.now)

	if err := s.eventRepo.Update(ctx, event); err != nil {
		switch {
		case errors.Is(err, repositories.ErrEventNotFound):
			return nil, ErrEventNotFound
		case errors.Is(err, repositories.ErrEventCheckViolation):
			return nil, ErrValidationFailed
		}
		return nil, fmt.Errorf("failed to update event %s: %w", eventID, err)
	}

	// Перечитываем: параллельный ConfirmEvent мог поменять флаги.
	updated, err := getEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}

	broadcast(ctx, s.publisher, s.log, updated.TeamID, realtime.TypeEventUpdated, updated)
	if !wasConfirmed && event.IsConfirmed {
		s.announceConfirmed(ctx, updated)
	}
	return updated, nil
}

// ConfirmEvent идемпотентен: повторное подтверждение не ошибка.
func (s *eventService) ConfirmEvent(ctx context.Context, actorID, eventID uuid.UUID) (*models.Event, error) {
	event, err := getEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireTeamAdmin(ctx, event.TeamID, actorID); err != nil {
		return nil, err
	}
	if event.IsConfirmed {
		return event, nil
	}

	if err := s.eventRepo.Confirm(ctx, eventID, timestamp(s.now)); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to confirm event %s: %w", eventID, err)
	}

	confirmed, err := getEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}
	s.announceConfirmed(ctx, confirmed)
	return confirmed, nil
}

func (s *eventService) announceConfirmed(ctx context.Context, event *models.Event) {
	s.log.Info("event confirmed",
		zap.String("event_id", event.ID.String()),
		zap.String("team_id", event.TeamID.String()),
	)
	broadcast(ctx, s.publisher, s.log, event.TeamID, realtime.TypeEventConfirmed, event)
	publishDomainEvent(ctx, s.events, s.log, notify.EventEventConfirmed, event.TeamID.String(), map[string]interface{}{
		"event_id":   event.ID,
		"team_id":    event.TeamID,
		"title":      event.Title,
		"start_time": event.StartTime,
	}, timestamp(s.now))
}

func (s *eventService) ListTeamEvents(ctx context.Context, actorID, teamID uuid.UUID, filter EventListFilter) ([]*models.Event, error) {
	if _, err := s.requireMember(ctx, teamID, actorID); err != nil {
		return nil, err
	}

	repoFilter := repositories.EventFilter{Confirmed: filter.Confirmed}
	if filter.Upcoming {
		now := timestamp(s.now)
		repoFilter.StartsAfter = &now
	}

	events, err := s.eventRepo.ListByTeam(ctx, teamID, repoFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for team %s: %w", teamID, err)
	}
	return events, nil
}

func (s *eventService) GetEventSummary(ctx context.Context, actorID, eventID uuid.UUID) (*models.EventSummary, error) {
	event, err := getEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireMember(ctx, event.TeamID, actorID); err != nil {
		return nil, err
	}

	counts, err := s.attendanceRepo.CountByStatus(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attendance: %w", err)
	}

	summary := &models.EventSummary{
		Event:             event,
		State:             event.State(),
		AttendingCount:    counts.Attending,
		NotAttendingCount: counts.NotAttending,
		QuorumReached:     counts.Attending >= event.MinPlayers,
		IsFull:            event.MaxPlayers != nil && counts.Attending >= *event.MaxPlayers,
	}

	mine, err := s.attendanceRepo.Get(ctx, eventID, actorID)
	switch {
	case err == nil:
		status := mine.Status
		summary.MyStatus = &status
	case !errors.Is(err, repositories.ErrAttendanceNotFound):
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}

	return summary, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, actorID, eventID uuid.UUID) error {
	event, err := getEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return err
	}
	if _, err := s.requireTeamAdmin(ctx, event.TeamID, actorID); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}
	return nil
}
