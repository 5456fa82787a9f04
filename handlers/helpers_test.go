package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/team-hub/services"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{services.ErrTeamNotFound, http.StatusNotFound},
		{services.ErrInviteCodeNotFound, http.StatusNotFound},
		{services.ErrAlreadyMember, http.StatusConflict},
		{services.ErrPaymentConcurrentUpdate, http.StatusConflict},
		{services.ErrVotingClosed, http.StatusUnprocessableEntity},
		{services.ErrLastAdmin, http.StatusUnprocessableEntity},
		{services.ErrAuthInvalidCredentials, http.StatusUnauthorized},
		{services.ErrNotTeamMember, http.StatusForbidden},
		{services.ErrTeamAdminRequired, http.StatusForbidden},
		{services.ErrLogoStorageDisabled, http.StatusServiceUnavailable},
		{fmt.Errorf("failed to load team: %w", services.ErrTeamNotFound), http.StatusNotFound},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			if tt.status == http.StatusInternalServerError {
				assert.NotContains(t, body["error"], "connection reset")
			}
		})
	}
}

func TestReadJSON(t *testing.T) {
	var input struct {
		Name string `json:"name"`
	}

	read := func(body string) error {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		return readJSON(httptest.NewRecorder(), req, &input)
	}

	require.NoError(t, read(`{"name":"Hawks"}`))
	assert.Equal(t, "Hawks", input.Name)

	assert.EqualError(t, read(``), "body must not be empty")
	assert.EqualError(t, read(`{"name":"a","extra":1}`), `body contains unknown key "extra"`)
	assert.EqualError(t, read(`{"name":1}`), `body contains incorrect JSON type for field "name"`)
	assert.EqualError(t, read(`{"name":"a"}{"name":"b"}`), "body must only contain a single JSON value")
	assert.Contains(t, read(`{"name":`).Error(), "badly-formed JSON")
}

func TestQueryParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=20&confirmed=false&bad=maybe", nil)

	n, err := queryInt(req, "limit", 50)
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	n, err = queryInt(req, "missing", 50)
	require.NoError(t, err)
	assert.Equal(t, 50, n)

	confirmed, err := queryBool(req, "confirmed")
	require.NoError(t, err)
	require.NotNil(t, confirmed)
	assert.False(t, *confirmed)

	missing, err := queryBool(req, "upcoming")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = queryBool(req, "bad")
	assert.Error(t, err)
}

func TestGetUUIDFromURL(t *testing.T) {
	id := uuid.New()
	router := chi.NewRouter()

	var got uuid.UUID
	var gotErr error
	router.Get("/teams/{teamID}", func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = getUUIDFromURL(r, "teamID")
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teams/"+id.String(), nil))
	require.NoError(t, gotErr)
	assert.Equal(t, id, got)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teams/42", nil))
	assert.Error(t, gotErr)
}

func TestCurrentUserIDRequiresClaims(t *testing.T) {
	rec := httptest.NewRecorder()
	_, ok := currentUserID(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/ws/teams/x", nil)
	assert.True(t, check(req), "non-browser clients send no Origin")

	req.Header.Set("Origin", "https://APP.example.com")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))

	req.Header.Set("Origin", "https://anything.example.com")
	assert.True(t, originChecker([]string{"*"})(req))
}

func TestSniffContentType(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 1024)...)

	contentType, reader, err := sniffContentType(bytes.NewReader(png))
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)

	all, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, png, all, "sniffing must not consume the file")

	contentType, _, err = sniffContentType(strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", contentType)
}
