package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/team-hub/models"
	"github.com/Dosada05/team-hub/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const dashboardUpcomingLimit = 10

type DashboardService interface {
	GetStats(ctx context.Context, adminID uuid.UUID) (models.DashboardStats, error)
	GetPlayerDashboard(ctx context.Context, userID uuid.UUID) (*models.PlayerDashboard, error)
}

type dashboardService struct {
	userRepo    repositories.UserRepository
	teamRepo    repositories.TeamRepository
	memberRepo  repositories.TeamMemberRepository
	eventRepo   repositories.EventRepository
	paymentRepo repositories.PaymentRepository
	chatRepo    repositories.ChatRepository
	now         func() time.Time
}

func NewDashboardService(
	userRepo repositories.UserRepository,
	teamRepo repositories.TeamRepository,
	memberRepo repositories.TeamMemberRepository,
	eventRepo repositories.EventRepository,
	paymentRepo repositories.PaymentRepository,
	chatRepo repositories.ChatRepository,
) DashboardService {
	return &dashboardService{
		userRepo:    userRepo,
		teamRepo:    teamRepo,
		memberRepo:  memberRepo,
		eventRepo:   eventRepo,
		paymentRepo: paymentRepo,
		chatRepo:    chatRepo,
		now:         time.Now,
	}
}

// GetStats доступна только администраторам платформы. Счётчики читаются
// параллельно.
func (s *dashboardService) GetStats(ctx context.Context, adminID uuid.UUID) (models.DashboardStats, error) {
	var stats models.DashboardStats

	admin, err := s.userRepo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return stats, ErrAuthenticationFailed
		}
		return stats, fmt.Errorf("failed to get user: %w", err)
	}
	if !admin.IsAdmin {
		return stats, ErrPlatformAdminRequired
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.userRepo.Count(gctx)
		stats.UsersTotal = n
		return err
	})
	g.Go(func() error {
		n, err := s.teamRepo.Count(gctx)
		stats.TeamsTotal = n
		return err
	})
	g.Go(func() error {
		n, err := s.eventRepo.CountByConfirmation(gctx, true)
		stats.ConfirmedEvents = n
		return err
	})
	g.Go(func() error {
		n, err := s.eventRepo.CountByConfirmation(gctx, false)
		stats.PendingEvents = n
		return err
	})
	g.Go(func() error {
		n, err := s.chatRepo.Count(gctx)
		stats.MessagesTotal = n
		return err
	})

	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, fmt.Errorf("failed to collect dashboard stats: %w", err)
	}
	return stats, nil
}

func (s *dashboardService) GetPlayerDashboard(ctx context.Context, userID uuid.UUID) (*models.PlayerDashboard, error) {
	dashboard := &models.PlayerDashboard{}
	now := timestamp(s.now)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.memberRepo.CountByUser(gctx, userID)
		dashboard.TeamsCount = n
		return err
	})
	g.Go(func() error {
		events, err := s.eventRepo.ListUpcomingForUser(gctx, userID, now, dashboardUpcomingLimit)
		dashboard.UpcomingEvents = events
		return err
	})
	g.Go(func() error {
		payments, err := s.paymentRepo.ListByUserAndStatus(gctx, userID, models.PaymentPending)
		dashboard.PendingPayments = payments
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	if dashboard.UpcomingEvents == nil {
		dashboard.UpcomingEvents = []*models.Event{}
	}
	if dashboard.PendingPayments == nil {
		dashboard.PendingPayments = []*models.EventPayment{}
	}
	return dashboard, nil
}
