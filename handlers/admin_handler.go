package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Dosada05/team-hub/services"
)

type AdminHandler struct {
	authService services.AuthService
}

func NewAdminHandler(s services.AuthService) *AdminHandler {
	return &AdminHandler{authService: s}
}

type adminInviteInput struct {
	Email string `json:"email"`
}

// CreateInvite godoc
// @Summary Пригласить администратора
// @Tags admin
// @Description Письмо с токеном уходит на указанный email, токен одноразовый.
// @Accept json
// @Produce json
// @Param body body adminInviteInput true "Email"
// @Success 201 {object} services.AdminInviteResult
// @Failure 403 {object} map[string]string "Только для администраторов"
// @Security BearerAuth
// @Router /admin/invites [post]
func (h *AdminHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var input adminInviteInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if strings.TrimSpace(input.Email) == "" {
		badRequestResponse(w, r, errors.New("email is required"))
		return
	}

	result, err := h.authService.IssueAdminInvite(r.Context(), userID, input.Email)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
