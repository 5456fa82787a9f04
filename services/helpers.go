package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Dosada05/team-hub/models"
	"github.com/Dosada05/team-hub/notify"
	"github.com/Dosada05/team-hub/realtime"
	"github.com/Dosada05/team-hub/repositories"
	"github.com/Dosada05/team-hub/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxTextLength = 2000

	inviteCodeAlphabet      = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	inviteCodeSuffixLength  = 6
	inviteCodeMaxPrefix     = 5
	inviteCodeMaxAttempts   = 5
	inviteCodeDefaultPrefix = "TEAM"
)

// --- Общие хелперы ---

// timestamp приводит время к UTC с точностью до микросекунд: столько
// хранят и Postgres, и SQLite, поэтому значения в памяти и в БД совпадают.
func timestamp(now func() time.Time) time.Time {
	return now().UTC().Truncate(time.Microsecond)
}

func named(log *zap.Logger, name string) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log.Named(name)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// trimOptional возвращает nil для пустых строк.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func generateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// --- Коды приглашения ---

func inviteCodePrefix(teamName string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(teamName) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == inviteCodeMaxPrefix {
				break
			}
		}
	}
	if b.Len() == 0 {
		return inviteCodeDefaultPrefix
	}
	return b.String()
}

func generateInviteCode(teamName string) (string, error) {
	suffix := make([]byte, inviteCodeSuffixLength)
	alphabetSize := big.NewInt(int64(len(inviteCodeAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		suffix[i] = inviteCodeAlphabet[n.Int64()]
	}
	return inviteCodePrefix(teamName) + "-" + string(suffix), nil
}

func normalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// --- Переходы статусов ---

func isValidEventTransition(current, next models.EventState) bool {
	return isAllowedTransition(current, next, map[models.EventState][]models.EventState{
		models.EventPending:   {models.EventConfirmed},
		models.EventConfirmed: {},
	})
}

func isValidPaymentTransition(current, next models.PaymentStatus) bool {
	return isAllowedTransition(current, next, map[models.PaymentStatus][]models.PaymentStatus{
		models.PaymentPending:  {models.PaymentPaid},
		models.PaymentPaid:     {models.PaymentRefunded},
		models.PaymentRefunded: {},
	})
}

func isAllowedTransition[S comparable](current, next S, allowed map[S][]S) bool {
	if current == next {
		return true
	}
	for _, candidate := range allowed[current] {
		if next == candidate {
			return true
		}
	}
	return false
}

// --- Доступ к командам ---

// teamAccess проверяет членство в команде. Сервисы, которые работают с
// событиями и чатом, встраивают его.
type teamAccess struct {
	teamRepo   repositories.TeamRepository
	memberRepo repositories.TeamMemberRepository
}

func (a teamAccess) getTeam(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	team, err := a.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %s: %w", teamID, err)
	}
	return team, nil
}

func (a teamAccess) requireMember(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMember, error) {
	member, err := a.memberRepo.Get(ctx, teamID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			if _, teamErr := a.getTeam(ctx, teamID); teamErr != nil {
				return nil, teamErr
			}
			return nil, ErrNotTeamMember
		}
		return nil, fmt.Errorf("failed to check membership in team %s: %w", teamID, err)
	}
	return member, nil
}

func (a teamAccess) requireTeamAdmin(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMember, error) {
	member, err := a.requireMember(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	if !member.IsAdmin() {
		return nil, ErrTeamAdminRequired
	}
	return member, nil
}

func getEvent(ctx context.Context, eventRepo repositories.EventRepository, eventID uuid.UUID) (*models.Event, error) {
	event, err := eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %s: %w", eventID, err)
	}
	return event, nil
}

// --- Хелперы для заполнения URL логотипов ---

func populateTeamLogoURLFunc(team *models.Team, uploader storage.FileUploader) {
	if team != nil && team.LogoKey != nil && *team.LogoKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*team.LogoKey)
		if url != "" {
			team.LogoURL = &url
		}
	}
}

// --- Публикация ---

// broadcast отправляет сообщение в комнату команды. Доставка best-effort:
// ошибка только логируется, операция уже выполнена.
func broadcast(ctx context.Context, publisher realtime.Publisher, log *zap.Logger, teamID uuid.UUID, msgType string, payload interface{}) {
	if publisher == nil {
		return
	}
	env, err := realtime.NewEnvelope(msgType, realtime.TeamRoom(teamID), payload)
	if err != nil {
		log.Error("failed to encode realtime message", zap.String("type", msgType), zap.Error(err))
		return
	}
	if err := publisher.Publish(ctx, env); err != nil {
		log.Warn("failed to publish realtime message", zap.String("type", msgType), zap.Error(err))
	}
}

func publishDomainEvent(ctx context.Context, publisher notify.EventPublisher, log *zap.Logger, name, key string, data interface{}, at time.Time) {
	if publisher == nil {
		return
	}
	event, err := notify.NewEvent(name, key, data, at)
	if err != nil {
		log.Error("failed to encode domain event", zap.String("name", name), zap.Error(err))
		return
	}
	if err := publisher.PublishEvent(ctx, event); err != nil {
		log.Warn("failed to publish domain event", zap.String("name", name), zap.Error(err))
	}
}
