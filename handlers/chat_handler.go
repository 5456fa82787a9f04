package handlers

import (
	"net/http"

	"github.com/Dosada05/team-hub/services"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(cs services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: cs}
}

type sendMessageInput struct {
	Message string `json:"message"`
}

// History godoc
// @Summary История чата команды
// @Tags chat
// @Description Последние сообщения в порядке отправки, limit по умолчанию 50, максимум 200.
// @Produce json
// @Param teamID path string true "Team ID"
// @Param limit query int false "Количество сообщений"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /teams/{teamID}/chat [get]
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	teamID, err := getUUIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", services.DefaultChatHistoryLimit)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	messages, err := h.chatService.History(r.Context(), userID, teamID, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"messages": messages}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	teamID, err := getUUIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input sendMessageInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	msg, err := h.chatService.Send(r.Context(), userID, teamID, input.Message)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"message": msg}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
