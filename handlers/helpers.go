package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dosada05/team-hub/logger"
	"github.com/Dosada05/team-hub/middleware"
	"github.com/Dosada05/team-hub/services"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type jsonResponse map[string]interface{}

const internalErrorMessage = "the server encountered a problem and could not process your request"

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // ошибка программиста: передан не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		logger.FromContext(r.Context()).Error("failed to write error response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).Error("internal server error", zap.Error(err))
	errorResponse(w, r, http.StatusInternalServerError, internalErrorMessage)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func failedValidationResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnprocessableEntity, message)
}

func notFoundResponse(w http.ResponseWriter, r *http.Request, message string) {
	if message == "" {
		message = "the requested resource could not be found"
	}
	errorResponse(w, r, http.StatusNotFound, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message)
}

func serviceUnavailableResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusServiceUnavailable, message)
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch serviceErrorStatus(err) {
	case http.StatusNotFound:
		notFoundResponse(w, r, err.Error())
	case http.StatusConflict:
		conflictResponse(w, r, err.Error())
	case http.StatusUnprocessableEntity:
		failedValidationResponse(w, r, err.Error())
	case http.StatusUnauthorized:
		unauthorizedResponse(w, r, err.Error())
	case http.StatusForbidden:
		forbiddenResponse(w, r, err.Error())
	case http.StatusServiceUnavailable:
		serviceUnavailableResponse(w, r, err.Error())
	default:
		serverErrorResponse(w, r, err)
	}
}

// serviceErrorStatus: 500 для всего, что не является известной ошибкой сервиса.
func serviceErrorStatus(err error) int {
	switch {
	// Не найдено
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrInviteCodeNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrPaymentNotFound):
		return http.StatusNotFound

	// Конфликты
	case errors.Is(err, services.ErrUserEmailConflict),
		errors.Is(err, services.ErrAlreadyMember),
		errors.Is(err, services.ErrPaymentExists),
		errors.Is(err, services.ErrPaymentConcurrentUpdate):
		return http.StatusConflict

	// Невалидные данные и бизнес-правила
	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrTeamNameRequired),
		errors.Is(err, services.ErrTeamSportRequired),
		errors.Is(err, services.ErrEventTitleRequired),
		errors.Is(err, services.ErrEventInvalidTimeRange),
		errors.Is(err, services.ErrEventInvalidMinPlayers),
		errors.Is(err, services.ErrEventInvalidMaxPlayers),
		errors.Is(err, services.ErrEventInvalidVoteDeadline),
		errors.Is(err, services.ErrEventInvalidTransition),
		errors.Is(err, services.ErrInvalidAttendanceStatus),
		errors.Is(err, services.ErrVotingClosed),
		errors.Is(err, services.ErrCommentEmpty),
		errors.Is(err, services.ErrCommentTooLong),
		errors.Is(err, services.ErrInvalidRating),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidPaymentStatus),
		errors.Is(err, services.ErrPaymentInvalidTransition),
		errors.Is(err, services.ErrMessageEmpty),
		errors.Is(err, services.ErrMessageTooLong),
		errors.Is(err, services.ErrInvalidLogo),
		errors.Is(err, services.ErrLastAdmin):
		return http.StatusUnprocessableEntity

	// Аутентификация
	case errors.Is(err, services.ErrAuthInvalidCredentials),
		errors.Is(err, services.ErrAuthenticationFailed),
		errors.Is(err, services.ErrInvalidAdminInvite):
		return http.StatusUnauthorized

	// Нет прав
	case errors.Is(err, services.ErrForbiddenOperation),
		errors.Is(err, services.ErrNotTeamMember),
		errors.Is(err, services.ErrTeamAdminRequired),
		errors.Is(err, services.ErrPlatformAdminRequired):
		return http.StatusForbidden

	case errors.Is(err, services.ErrLogoStorageDisabled):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

func getUUIDFromURL(r *http.Request, paramName string) (uuid.UUID, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("missing %s in URL path", paramName)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}
	return id, nil
}

// currentUserID достаёт пользователя из контекста; при ошибке ответ уже записан.
func currentUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return uuid.Nil, false
	}
	return userID, true
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s query parameter: %q", name, raw)
	}
	return n, nil
}

func queryBool(r *http.Request, name string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s query parameter: %q", name, raw)
	}
	return &b, nil
}
