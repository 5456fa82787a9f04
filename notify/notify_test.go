package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRenderTemplates(t *testing.T) {
	expires := time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC)

	body, err := renderAdminInvite("boss@example.com", "tok123", expires)
	require.NoError(t, err)
	assert.Contains(t, body, "boss@example.com")
	assert.Contains(t, body, "tok123")
	assert.Contains(t, body, "01.03.2026 18:30 UTC")

	loc := "Central <Park>"
	body, err = renderEventReminder("Hawks", "Training", &loc, expires)
	require.NoError(t, err)
	assert.Contains(t, body, "Hawks")
	assert.Contains(t, body, "Central &lt;Park&gt;")

	body, err = renderEventReminder("Hawks", "Training", nil, expires)
	require.NoError(t, err)
	assert.NotContains(t, body, "Место")
}

func TestNewEvent(t *testing.T) {
	at := time.Date(2026, 3, 1, 18, 30, 0, 0, time.FixedZone("X", 3600))
	event, err := NewEvent(EventEventConfirmed, "team-1", map[string]string{"event_id": "e1"}, at)
	require.NoError(t, err)

	assert.Equal(t, time.UTC, event.OccurredAt.Location())
	var data map[string]string
	require.NoError(t, json.Unmarshal(event.Data, &data))
	assert.Equal(t, "e1", data["event_id"])
}

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	pub := NewLogPublisher(zap.New(core))

	event, err := NewEvent(EventTeamJoined, "team-1", map[string]string{"user_id": "u1"}, time.Now())
	require.NoError(t, err)
	require.NoError(t, pub.PublishEvent(context.Background(), event))

	entries := logs.FilterField(zap.String("name", EventTeamJoined)).All()
	assert.Len(t, entries, 1)
}
