package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Dosada05/team-hub/models"
	"github.com/Dosada05/team-hub/realtime"
	"github.com/Dosada05/team-hub/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultChatHistoryLimit = 50
	MaxChatHistoryLimit     = 200
)

type ChatService interface {
	Send(ctx context.Context, userID, teamID uuid.UUID, text string) (*models.ChatMessage, error)
	History(ctx context.Context, userID, teamID uuid.UUID, limit int) ([]*models.ChatMessage, error)
	// OpenFeed backfills recent history and then streams live room traffic.
	// Every chat message is delivered once, in created_at order.
	OpenFeed(ctx context.Context, userID, teamID uuid.UUID) (*ChatFeed, error)
}

type chatService struct {
	teamAccess
	chatRepo repositories.ChatRepository
	broker   realtime.Broker
	log      *zap.Logger
	now      func() time.Time

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewChatService(
	teamRepo repositories.TeamRepository,
	memberRepo repositories.TeamMemberRepository,
	chatRepo repositories.ChatRepository,
	broker realtime.Broker,
	log *zap.Logger,
) ChatService {
	return &chatService{
		teamAccess: teamAccess{teamRepo: teamRepo, memberRepo: memberRepo},
		chatRepo:   chatRepo,
		broker:     broker,
		log:        named(log, "chat"),
		now:        time.Now,
		locks:      make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *chatService) teamLock(teamID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[teamID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[teamID] = l
	}
	return l
}

// Send сохраняет сообщение и рассылает его, удерживая блокировку команды:
// created_at строго растёт, порядок рассылки совпадает с порядком вставки.
func (s *chatService) Send(ctx context.Context, userID, teamID uuid.UUID, text string) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrMessageEmpty
	}
	if utf8.RuneCountInString(text) > maxTextLength {
		return nil, ErrMessageTooLong
	}

	member, err := s.requireMember(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}

	lock := s.teamLock(teamID)
	lock.Lock()
	defer lock.Unlock()

	latest, err := s.chatRepo.LatestCreatedAt(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to read chat clock: %w", err)
	}
	createdAt := timestamp(s.now)
	if !createdAt.After(latest) {
		createdAt = latest.UTC().Add(time.Microsecond)
	}

	message := &models.ChatMessage{
		ID:        uuid.New(),
		TeamID:    teamID,
		UserID:    userID,
		Message:   text,
		CreatedAt: createdAt,
		UserEmail: member.UserEmail,
	}
	if err := s.chatRepo.Create(ctx, message); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	broadcast(ctx, s.broker, s.log, teamID, realtime.TypeChatMessage, message)
	return message, nil
}

func (s *chatService) History(ctx context.Context, userID, teamID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	if _, err := s.requireMember(ctx, teamID, userID); err != nil {
		return nil, err
	}
	messages, err := s.chatRepo.ListByTeam(ctx, teamID, clampHistoryLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	if messages == nil {
		messages = []*models.ChatMessage{}
	}
	return messages, nil
}

func clampHistoryLimit(limit int) int {
	if limit <= 0 {
		return DefaultChatHistoryLimit
	}
	if limit > MaxChatHistoryLimit {
		return MaxChatHistoryLimit
	}
	return limit
}

func (s *chatService) OpenFeed(ctx context.Context, userID, teamID uuid.UUID) (*ChatFeed, error) {
	if _, err := s.requireMember(ctx, teamID, userID); err != nil {
		return nil, err
	}

	// Сначала подписка, потом история: сообщение, вставленное между ними,
	// придёт дважды и будет отброшено по id, но не потеряется.
	sub := s.broker.Subscribe(realtime.TeamRoom(teamID))
	history, err := s.chatRepo.ListByTeam(ctx, teamID, DefaultChatHistoryLimit)
	if err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	backlog := make([]realtime.Envelope, 0, len(history))
	seen := make(map[uuid.UUID]struct{}, len(history))
	for _, message := range history {
		env, err := realtime.NewEnvelope(realtime.TypeChatMessage, sub.Room(), message)
		if err != nil {
			sub.Close()
			return nil, fmt.Errorf("failed to encode chat history: %w", err)
		}
		backlog = append(backlog, env)
		seen[message.ID] = struct{}{}
	}

	feed := &ChatFeed{
		sub:  sub,
		out:  make(chan realtime.Envelope),
		done: make(chan struct{}),
		log:  s.log,
	}
	go feed.run(backlog, seen)
	return feed, nil
}

// ChatFeed is one subscriber's view of a team room: backlog first, then push.
type ChatFeed struct {
	sub  *realtime.Subscription
	out  chan realtime.Envelope
	done chan struct{}
	once sync.Once
	log  *zap.Logger
}

func (f *ChatFeed) Messages() <-chan realtime.Envelope { return f.out }

func (f *ChatFeed) Close() {
	f.once.Do(func() {
		close(f.done)
		f.sub.Close()
	})
}

func (f *ChatFeed) run(backlog []realtime.Envelope, seen map[uuid.UUID]struct{}) {
	defer close(f.out)

	for _, env := range backlog {
		if !f.emit(env) {
			return
		}
	}

	for {
		select {
		case <-f.done:
			return
		case env, ok := <-f.sub.Messages():
			if !ok {
				return
			}
			if len(seen) > 0 && env.Type == realtime.TypeChatMessage {
				var ref struct {
					ID uuid.UUID `json:"id"`
				}
				if err := json.Unmarshal(env.Payload, &ref); err != nil {
					f.log.Warn("dropping malformed chat message", zap.Error(err))
					continue
				}
				if _, dup := seen[ref.ID]; dup {
					delete(seen, ref.ID)
					continue
				}
			}
			if !f.emit(env) {
				return
			}
		}
	}
}

func (f *ChatFeed) emit(env realtime.Envelope) bool {
	select {
	case f.out <- env:
		return true
	case <-f.done:
		return false
	}
}
