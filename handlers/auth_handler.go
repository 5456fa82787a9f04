package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/team-hub/middleware"
	"github.com/Dosada05/team-hub/models"
	"github.com/Dosada05/team-hub/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignUp godoc
// @Summary Регистрация
// @Tags auth
// @Description Создаёт пользователя. С действующим admin_invite пользователь становится администратором платформы.
// @Accept json
// @Produce json
// @Param body body services.SignUpInput true "Email, пароль и необязательное приглашение администратора"
// @Success 201 {object} services.AuthResult
// @Failure 400 {object} map[string]string "Некорректный JSON"
// @Failure 401 {object} map[string]string "Недействительное приглашение"
// @Failure 409 {object} map[string]string "Email уже занят"
// @Failure 422 {object} map[string]string "Ошибка валидации"
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var input services.SignUpInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Email == "" || input.Password == "" {
		badRequestResponse(w, r, errors.New("email and password are required"))
		return
	}

	result, err := h.authService.SignUp(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SignIn godoc
// @Summary Вход
// @Tags auth
// @Accept json
// @Produce json
// @Param body body models.Credentials true "Email и пароль"
// @Success 200 {object} services.AuthResult
// @Failure 401 {object} map[string]string "Неверный email или пароль"
// @Router /auth/signin [post]
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var input models.Credentials
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Email == "" || input.Password == "" {
		badRequestResponse(w, r, errors.New("email and password are required"))
		return
	}

	result, err := h.authService.SignIn(r.Context(), input.Email, input.Password)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SignOut godoc
// @Summary Выход
// @Tags auth
// @Description Отзывает текущий токен до истечения его срока.
// @Success 204
// @Security BearerAuth
// @Router /auth/signout [post]
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.GetClaimsFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := h.authService.SignOut(r.Context(), claims); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me godoc
// @Summary Текущий пользователь
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	user, err := h.authService.Me(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
