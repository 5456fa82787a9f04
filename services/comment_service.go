package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Dosada05/team-hub/models"
	"github.com/Dosada05/team-hub/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CommentService interface {
	AddComment(ctx context.Context, userID, eventID uuid.UUID, input AddCommentInput) (*models.EventComment, error)
	ListComments(ctx context.Context, actorID, eventID uuid.UUID) (*models.CommentThread, error)
}

type AddCommentInput struct {
	Comment string `json:"comment"`
	Rating  *int   `json:"rating,omitempty"`
}

type commentService struct {
	teamAccess
	eventRepo   repositories.EventRepository
	commentRepo repositories.CommentRepository
	log         *zap.Logger
	now         func() time.Time
}

func NewCommentService(
	teamRepo repositories.TeamRepository,
	memberRepo repositories.TeamMemberRepository,
	eventRepo repositories.EventRepository,
	commentRepo repositories.CommentRepository,
	log *zap.Logger,
) CommentService {
	return &commentService{
		teamAccess:  teamAccess{teamRepo: teamRepo, memberRepo: memberRepo},
		eventRepo:   eventRepo,
		commentRepo: commentRepo,
		log:         named(log, "comments"),
		now:         time.Now,
	}
}

func (s *commentService) AddComment(ctx context.Context, userID, eventID uuid.UUID, input AddCommentInput) (*models.EventComment, error) {
	text := strings.TrimSpace(input.Comment)
	if text == "" {
		return nil, ErrCommentEmpty
	}
	if utf8.RuneCountInString(text) > maxTextLength {
		return nil, ErrCommentTooLong
	}
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		return nil, ErrInvalidRating
	}

	event, err := getEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}
	member, err := s.requireMember(ctx, event.TeamID, userID)
	if err != nil {
		return nil, err
	}

	comment := &models.EventComment{
		ID:        uuid.New(),
		EventID:   eventID,
		UserID:    userID,
		Comment:   text,
		Rating:    input.Rating,
		CreatedAt: timestamp(s.now),
		UserEmail: member.UserEmail,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return comment, nil
}

func (s *commentService) ListComments(ctx context.Context, actorID, eventID uuid.UUID) (*models.CommentThread, error) {
	event, err := getEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireMember(ctx, event.TeamID, actorID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	stats, err := s.commentRepo.RatingStats(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute rating: %w", err)
	}

	if comments == nil {
		comments = []*models.EventComment{}
	}
	return &models.CommentThread{
		Comments:      comments,
		AverageRating: stats.Average,
		RatingCount:   stats.Count,
	}, nil
}
