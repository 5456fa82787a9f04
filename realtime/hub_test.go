package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEnvelope(t *testing.T, room string, n int) Envelope {
	t.Helper()
	env, err := NewEnvelope(TypeChatMessage, room, map[string]int{"n": n})
	require.NoError(t, err)
	return env
}

func payloadN(t *testing.T, env Envelope) int {
	t.Helper()
	var p map[string]int
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	return p["n"]
}

func TestHub_DeliversInOrderPerRoom(t *testing.T) {
	hub := NewHub(nil)
	room := TeamRoom(uuid.New())
	other := TeamRoom(uuid.New())

	sub := hub.Subscribe(room)
	defer sub.Close()
	otherSub := hub.Subscribe(other)
	defer otherSub.Close()

	for i := 0; i < 10; i++ {
		require.NoError(t, hub.Publish(context.Background(), mustEnvelope(t, room, i)))
	}

	for i := 0; i < 10; i++ {
		env := <-sub.Messages()
		assert.Equal(t, i, payloadN(t, env))
		assert.Equal(t, room, env.RoomID)
	}
	assert.Len(t, otherSub.Messages(), 0)
}

func TestHub_DropsWhenBufferFull(t *testing.T) {
	hub := NewHubWithBuffer(nil, 2)
	room := "team_x"
	sub := hub.Subscribe(room)
	defer sub.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, hub.Publish(context.Background(), mustEnvelope(t, room, i)))
	}

	assert.Equal(t, 0, payloadN(t, <-sub.Messages()))
	assert.Equal(t, 1, payloadN(t, <-sub.Messages()))
	assert.Len(t, sub.Messages(), 0)
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe("team_y")
	assert.Equal(t, 1, hub.RoomSize("team_y"))

	sub.Close()
	sub.Close()

	_, ok := <-sub.Messages()
	assert.False(t, ok)
	assert.Equal(t, 0, hub.RoomSize("team_y"))
	assert.NoError(t, hub.Publish(context.Background(), mustEnvelope(t, "team_y", 1)))
}

func TestRedisBroker_DispatchForwardsToHub(t *testing.T) {
	hub := NewHub(nil)
	broker := NewRedisBroker(nil, hub, nil)
	sub := broker.Subscribe("team_z")
	defer sub.Close()

	env := mustEnvelope(t, "team_z", 7)
	data, err := json.Marshal(env)
	require.NoError(t, err)

	broker.dispatch(context.Background(), "not json")
	broker.dispatch(context.Background(), string(data))

	got := <-sub.Messages()
	assert.Equal(t, TypeChatMessage, got.Type)
	assert.Equal(t, 7, payloadN(t, got))
	assert.Len(t, sub.Messages(), 0, fmt.Sprintf("unexpected extra messages in %s", sub.Room()))
}

func TestTeamRoom(t *testing.T) {
	id := uuid.MustParse("7f3c2a4e-3d0b-4b7e-9a55-0c8d1e2f3a4b")
	assert.Equal(t, "team_7f3c2a4e-3d0b-4b7e-9a55-0c8d1e2f3a4b", TeamRoom(id))
}
