package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisChannel = "teamhub:realtime"

// NewRedisClient создаёт клиент и делает Ping, чтобы упасть при старте,
// а не на первой публикации.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}

// RedisBroker publishes through Redis pub/sub and delivers whatever arrives
// on the channel to the local hub, so every instance sees every message.
type RedisBroker struct {
	client *redis.Client
	hub    *Hub
	log    *zap.Logger
}

func NewRedisBroker(client *redis.Client, hub *Hub, log *zap.Logger) *RedisBroker {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisBroker{client: client, hub: hub, log: log.Named("redis_broker")}
}

func (b *RedisBroker) Publish(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}
	if err := b.client.Publish(ctx, redisChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(room string) *Subscription {
	return b.hub.Subscribe(room)
}

// Run forwards Redis messages to the hub until ctx is cancelled.
func (b *RedisBroker) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", redisChannel, err)
	}
	b.log.Info("listening for realtime messages", zap.String("channel", redisChannel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.dispatch(ctx, msg.Payload)
		}
	}
}

func (b *RedisBroker) dispatch(ctx context.Context, payload string) {
	var env Envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		b.log.Warn("dropping malformed realtime message", zap.Error(err))
		return
	}
	_ = b.hub.Publish(ctx, env)
}
