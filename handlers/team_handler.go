package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Dosada05/team-hub/services"
)

const maxLogoUploadSize = 5 << 20

type TeamHandler struct {
	teamService services.TeamService
}

func NewTeamHandler(ts services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: ts}
}

type joinTeamInput struct {
	InviteCode string `json:"invite_code"`
}

// CreateTeam godoc
// @Summary Создать команду
// @Tags teams
// @Description Создатель становится администратором команды, код приглашения генерируется автоматически.
// @Accept json
// @Produce json
// @Param body body services.CreateTeamInput true "Название, вид спорта, описание, место"
// @Success 201 {object} map[string]interface{} "Команда создана"
// @Failure 422 {object} map[string]string "Ошибка валидации"
// @Security BearerAuth
// @Router /teams [post]
func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var input services.CreateTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.CreateTeam(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// JoinTeam godoc
// @Summary Вступить в команду по коду
// @Tags teams
// @Accept json
// @Produce json
// @Param body body joinTeamInput true "Код приглашения"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Код не найден"
// @Failure 409 {object} map[string]string "Уже в команде"
// @Security BearerAuth
// @Router /teams/join [post]
func (h *TeamHandler) JoinTeam(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var input joinTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if strings.TrimSpace(input.InviteCode) == "" {
		badRequestResponse(w, r, errors.New("invite_code is required"))
		return
	}

	team, err := h.teamService.JoinTeam(r.Context(), userID, input.InviteCode)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMyTeams godoc
// @Summary Мои команды
// @Tags teams
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /teams [get]
func (h *TeamHandler) ListMyTeams(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	teams, err := h.teamService.ListMyTeams(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	teamID, err := getUUIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.GetTeam(r.Context(), userID, teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	teamID, err := getUUIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.UpdateTeam(r.Context(), userID, teamID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	teamID, err := getUUIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.teamService.DeleteTeam(r.Context(), userID, teamID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TeamHandler) RegenerateInviteCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	teamID, err := getUUIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.RegenerateInviteCode(r.Context(), userID, teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	teamID, err := getUUIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	members, err := h.teamService.ListMembers(r.Context(), userID, teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"members": members}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RemoveMember: админ удаляет любого, игрок может выйти сам.
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	teamID, err := getUUIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	memberID, err := getUUIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.teamService.RemoveMember(r.Context(), userID, teamID, memberID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadLogo godoc
// @Summary Загрузить логотип команды
// @Tags teams
// @Accept multipart/form-data
// @Produce json
// @Param teamID path string true "Team ID"
// @Param logo formData file true "Картинка (jpeg, png, gif, webp)"
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]string "Хранилище не настроено"
// @Security BearerAuth
// @Router /teams/{teamID}/logo [post]
func (h *TeamHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	teamID, err := getUUIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxLogoUploadSize+1024)
	if err := r.ParseMultipartForm(maxLogoUploadSize); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	file, _, err := r.FormFile("logo")
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to get logo file from form: %w", err))
		return
	}
	defer file.Close()

	// Заголовку клиента не верим, тип определяем по содержимому.
	contentType, logo, err := sniffContentType(file)
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to read logo file: %w", err))
		return
	}

	team, err := h.teamService.UploadLogo(r.Context(), userID, teamID, contentType, logo)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// sniffContentType читает первые 512 байт и возвращает reader, который
// отдаёт файл целиком.
func sniffContentType(file io.Reader) (string, io.Reader, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, err
	}
	head = head[:n]
	return http.DetectContentType(head), io.MultiReader(bytes.NewReader(head), file), nil
}
