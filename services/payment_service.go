package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/team-hub/models"
	"github.com/Dosada05/team-hub/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PaymentService interface {
	CreatePayment(ctx context.Context, userID, eventID uuid.UUID, amountCents int64) (*models.EventPayment, error)
	UpdatePaymentStatus(ctx context.Context, actorID, paymentID uuid.UUID, status models.PaymentStatus) (*models.EventPayment, error)
	ListEventPayments(ctx context.Context, actorID, eventID uuid.UUID) ([]*models.EventPayment, error)
	ListMyPendingPayments(ctx context.Context, userID uuid.UUID) ([]*models.EventPayment, error)
}

type paymentService struct {
	teamAccess
	eventRepo   repositories.EventRepository
	paymentRepo repositories.PaymentRepository
	log         *zap.Logger
	now         func() time.Time
}

func NewPaymentService(
	teamRepo repositories.TeamRepository,
	memberRepo repositories.TeamMemberRepository,
	eventRepo repositories.EventRepository,
	paymentRepo repositories.PaymentRepository,
	log *zap.Logger,
) PaymentService {
	return &paymentService{
		teamAccess:  teamAccess{teamRepo: teamRepo, memberRepo: memberRepo},
		eventRepo:   eventRepo,
		paymentRepo: paymentRepo,
		log:         named(log, "payments"),
		now:         time.Now,
	}
}

func (s *paymentService) CreatePayment(ctx context.Context, userID, eventID uuid.UUID, amountCents int64) (*models.EventPayment, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	event, err := getEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireMember(ctx, event.TeamID, userID); err != nil {
		return nil, err
	}

	now := timestamp(s.now)
	payment := &models.EventPayment{
		ID:          uuid.New(),
		EventID:     eventID,
		UserID:      userID,
		AmountCents: amountCents,
		Status:      models.PaymentPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		EventTitle:  event.Title,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPaymentConflict):
			return nil, ErrPaymentExists
		case errors.Is(err, repositories.ErrEventNotFound):
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	return payment, nil
}

// UpdatePaymentStatus: pending→paid может отметить сам плательщик или админ
// команды, paid→refunded только админ. Тот же статус ничего не меняет.
func (s *paymentService) UpdatePaymentStatus(ctx context.Context, actorID, paymentID uuid.UUID, status models.PaymentStatus) (*models.EventPayment, error) {
	if status != models.PaymentPaid && status != models.PaymentRefunded && status != models.PaymentPending {
		return nil, ErrInvalidPaymentStatus
	}

	payment, err := s.getPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	event, err := getEvent(ctx, s.eventRepo, payment.EventID)
	if err != nil {
		return nil, err
	}
	member, err := s.requireMember(ctx, event.TeamID, actorID)
	if err != nil {
		return nil, err
	}

	if payment.Status == status {
		return payment, nil
	}
	if !isValidPaymentTransition(payment.Status, status) {
		return nil, ErrPaymentInvalidTransition
	}

	switch status {
	case models.PaymentPaid:
		if payment.UserID != actorID && !member.IsAdmin() {
			return nil, ErrForbiddenOperation
		}
	case models.PaymentRefunded:
		if !member.IsAdmin() {
			return nil, ErrTeamAdminRequired
		}
	}

	if err := s.paymentRepo.UpdateStatus(ctx, paymentID, payment.Status, status, timestamp(s.now)); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPaymentStale):
			return nil, ErrPaymentConcurrentUpdate
		case errors.Is(err, repositories.ErrPaymentNotFound):
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to update payment %s: %w", paymentID, err)
	}

	s.log.Info("payment status changed",
		zap.String("payment_id", paymentID.String()),
		zap.String("from", string(payment.Status)),
		zap.String("to", string(status)),
	)
	return s.getPayment(ctx, paymentID)
}

func (s *paymentService) getPayment(ctx context.Context, paymentID uuid.UUID) (*models.EventPayment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment %s: %w", paymentID, err)
	}
	return payment, nil
}

func (s *paymentService) ListEventPayments(ctx context.Context, actorID, eventID uuid.UUID) ([]*models.EventPayment, error) {
	event, err := getEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireTeamAdmin(ctx, event.TeamID, actorID); err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (s *paymentService) ListMyPendingPayments(ctx context.Context, userID uuid.UUID) ([]*models.EventPayment, error) {
	payments, err := s.paymentRepo.ListByUserAndStatus(ctx, userID, models.PaymentPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending payments: %w", err)
	}
	return payments, nil
}
