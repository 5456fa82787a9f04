package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dosada05/team-hub/logger"
	"github.com/Dosada05/team-hub/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubAuthenticator struct {
	tokens map[string]*services.Claims
}

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*services.Claims, error) {
	claims, ok := s.tokens[token]
	if !ok {
		return nil, services.ErrAuthenticationFailed
	}
	return claims, nil
}

func echoUserID(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetUserIDFromContext(r.Context())
		require.NoError(t, err)
		_, _ = w.Write([]byte(id.String()))
	})
}

func TestAuthenticate(t *testing.T) {
	player := &services.Claims{UserID: uuid.New()}
	admin := &services.Claims{UserID: uuid.New(), IsAdmin: true}
	auth := stubAuthenticator{tokens: map[string]*services.Claims{"player": player, "admin": admin}}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic player", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer player", http.StatusOK},
		{"case-insensitive scheme", "bearer player", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			Authenticate(auth)(echoUserID(t)).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, player.UserID.String(), rec.Body.String())
			}
		})
	}

	t.Run("websocket token from query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ws?token=player", nil)
		rec := httptest.NewRecorder()
		AuthenticateWS(auth)(echoUserID(t)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("platform admin guard", func(t *testing.T) {
		handler := Authenticate(auth)(RequirePlatformAdmin(echoUserID(t)))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer player")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		req.Header.Set("Authorization", "Bearer admin")
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestGetClaimsFromContext(t *testing.T) {
	_, err := GetClaimsFromContext(context.Background())
	assert.ErrorIs(t, err, ErrNoClaims)

	claims := &services.Claims{UserID: uuid.New()}
	got, err := GetClaimsFromContext(WithClaims(context.Background(), claims))
	require.NoError(t, err)
	assert.Same(t, claims, got)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	handler := RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/teams", nil))

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, "inside handler", entries[0].Message)
	assert.Equal(t, "/teams", entries[0].ContextMap()["path"])

	access := entries[1]
	assert.Equal(t, zapcore.WarnLevel, access.Level)
	assert.EqualValues(t, http.StatusTeapot, access.ContextMap()["status"])
}
