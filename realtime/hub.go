package realtime

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

const defaultSubscriberBuffer = 256

type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}

type Subscriber interface {
	Subscribe(room string) *Subscription
}

// Broker is what services depend on: fan-out plus room subscriptions.
type Broker interface {
	Publisher
	Subscriber
}

// Feed is a stream of envelopes for one connected consumer.
type Feed interface {
	Messages() <-chan Envelope
	Close()
}

// Subscription is a buffered receiver registered in one room.
type Subscription struct {
	hub  *Hub
	room string
	ch   chan Envelope
	once sync.Once
}

func (s *Subscription) Messages() <-chan Envelope { return s.ch }

func (s *Subscription) Room() string { return s.room }

// Close unregisters the subscription and closes its channel. Safe to call
// more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.unsubscribe(s) })
}

// Hub рассылает сообщения подписчикам внутри одного процесса. Отправка
// не блокируется: если буфер подписчика полон, сообщение для него теряется.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]map[*Subscription]struct{}
	bufferSize int
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return NewHubWithBuffer(log, defaultSubscriberBuffer)
}

func NewHubWithBuffer(log *zap.Logger, bufferSize int) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	if bufferSize <= 0 {
		bufferSize = defaultSubscriberBuffer
	}
	return &Hub{
		rooms:      make(map[string]map[*Subscription]struct{}),
		bufferSize: bufferSize,
		log:        log.Named("hub"),
	}
}

func (h *Hub) Subscribe(room string) *Subscription {
	sub := &Subscription{hub: h, room: room, ch: make(chan Envelope, h.bufferSize)}

	h.mu.Lock()
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Subscription]struct{})
	}
	h.rooms[room][sub] = struct{}{}
	total := len(h.rooms[room])
	h.mu.Unlock()

	h.log.Debug("subscriber registered", zap.String("room", room), zap.Int("subscribers", total))
	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.rooms[sub.room]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	close(sub.ch)
	if len(subs) == 0 {
		delete(h.rooms, sub.room)
		h.log.Debug("room closed as it's empty", zap.String("room", sub.room))
	}
}

// Publish delivers env to every subscriber of env.RoomID in call order.
func (h *Hub) Publish(_ context.Context, env Envelope) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.rooms[env.RoomID] {
		select {
		case sub.ch <- env:
		default:
			h.log.Warn("subscriber buffer full, dropping message",
				zap.String("room", env.RoomID),
				zap.String("type", env.Type),
			)
		}
	}
	return nil
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
