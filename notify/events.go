package notify

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Названия доменных событий, которые уходят во внешние системы.
const (
	EventTeamJoined     = "team.member_joined"
	EventEventConfirmed = "event.confirmed"
	EventEventReminder  = "event.reminder"
)

// Event is a domain event published outside the process. Key groups related
// events on one partition.
type Event struct {
	Name       string          `json:"name"`
	Key        string          `json:"key"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

func NewEvent(name, key string, data interface{}, occurredAt time.Time) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{Name: name, Key: key, OccurredAt: occurredAt.UTC(), Data: raw}, nil
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, event Event) error
}

// LogPublisher пишет события в лог, когда Kafka не настроена.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogPublisher{log: log.Named("events")}
}

func (p *LogPublisher) PublishEvent(_ context.Context, event Event) error {
	p.log.Info("domain event",
		zap.String("name", event.Name),
		zap.String("key", event.Key),
		zap.ByteString("data", event.Data),
	)
	return nil
}
