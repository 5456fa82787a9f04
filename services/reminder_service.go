package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/team-hub/notify"
	"github.com/Dosada05/team-hub/repositories"
	"go.uber.org/zap"
)

// ReminderService напоминает участникам о подтверждённых событиях.
type ReminderService interface {
	// RunOnce sends every due reminder and returns how many were sent.
	RunOnce(ctx context.Context) (int, error)
	// Run calls RunOnce every interval until ctx is done.
	Run(ctx context.Context, interval time.Duration) error
}

type reminderService struct {
	teamRepo   repositories.TeamRepository
	memberRepo repositories.TeamMemberRepository
	eventRepo  repositories.EventRepository
	mailer     notify.Mailer
	events     notify.EventPublisher
	leadTime   time.Duration
	log        *zap.Logger
	now        func() time.Time
}

func NewReminderService(
	teamRepo repositories.TeamRepository,
	memberRepo repositories.TeamMemberRepository,
	eventRepo repositories.EventRepository,
	mailer notify.Mailer,
	events notify.EventPublisher,
	leadTime time.Duration,
	log *zap.Logger,
) ReminderService {
	return &reminderService{
		teamRepo:   teamRepo,
		memberRepo: memberRepo,
		eventRepo:  eventRepo,
		mailer:     mailer,
		events:     events,
		leadTime:   leadTime,
		log:        named(log, "reminders"),
		now:        time.Now,
	}
}

func (s *reminderService) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("reminder scheduler started", zap.Duration("interval", interval), zap.Duration("lead_time", s.leadTime))
	for {
		if sent, err := s.RunOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			s.log.Error("reminder run failed", zap.Error(err))
		} else if sent > 0 {
			s.log.Info("reminders sent", zap.Int("count", sent))
		}

		select {
		case <-ctx.Done():
			s.log.Info("reminder scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (s *reminderService) RunOnce(ctx context.Context) (int, error) {
	now := timestamp(s.now)
	due, err := s.eventRepo.ListDueReminders(ctx, now, now.Add(s.leadTime))
	if err != nil {
		return 0, fmt.Errorf("failed to list due reminders: %w", err)
	}

	sent := 0
	for _, event := range due {
		// Сначала захватываем событие, потом шлём: при нескольких
		// экземплярах напоминание уйдёт один раз.
		claimed, err := s.eventRepo.MarkReminderSent(ctx, event.ID)
		if err != nil {
			return sent, fmt.Errorf("failed to claim reminder for event %s: %w", event.ID, err)
		}
		if !claimed {
			continue
		}

		log := s.log.With(zap.String("event_id", event.ID.String()))

		team, err := s.teamRepo.GetByID(ctx, event.TeamID)
		if err != nil {
			log.Error("failed to load team for reminder", zap.Error(err))
			continue
		}
		members, err := s.memberRepo.ListByTeam(ctx, event.TeamID)
		if err != nil {
			log.Error("failed to load members for reminder", zap.Error(err))
			continue
		}

		recipients := make([]string, 0, len(members))
		for _, m := range members {
			if m.UserEmail != "" {
				recipients = append(recipients, m.UserEmail)
			}
		}

		if len(recipients) > 0 {
			if err := s.mailer.SendEventReminder(ctx, recipients, team.Name, event.Title, event.Location, event.StartTime); err != nil {
				log.Warn("failed to email reminder", zap.Error(err))
			}
		}

		publishDomainEvent(ctx, s.events, log, notify.EventEventReminder, event.TeamID.String(), map[string]interface{}{
			"event_id":   event.ID,
			"team_id":    event.TeamID,
			"title":      event.Title,
			"start_time": event.StartTime,
			"recipients": len(recipients),
		}, now)
		sent++
	}
	return sent, nil
}
