package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamLogoKey(t *testing.T) {
	teamID := uuid.New()

	key, err := TeamLogoKey(teamID, "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "teams/"+teamID.String()+"/logo-"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	other, err := TeamLogoKey(teamID, "image/jpeg; charset=binary")
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
	assert.True(t, strings.HasSuffix(other, ".jpg"))

	_, err = TeamLogoKey(teamID, "image/svg+xml")
	assert.ErrorIs(t, err, ErrUnsupportedContentType)
}

func TestMemoryUploader(t *testing.T) {
	up, err := NewMemoryUploader("https://cdn.example.com/assets")
	require.NoError(t, err)
	ctx := context.Background()

	res, err := up.Upload(ctx, "teams/1/logo.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/assets/teams/1/logo.png", res.Location)
	assert.True(t, up.Has("teams/1/logo.png"))

	require.NoError(t, up.Delete(ctx, "teams/1/logo.png"))
	assert.False(t, up.Has("teams/1/logo.png"))
	assert.Equal(t, "", up.GetPublicURL(""))
}
