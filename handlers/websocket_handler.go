package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Dosada05/team-hub/logger"
	"github.com/Dosada05/team-hub/realtime"
	"github.com/Dosada05/team-hub/services"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WebSocketHandler struct {
	chatService services.ChatService
	upgrader    websocket.Upgrader
}

// NewWebSocketHandler: allowedOrigins с "*" пропускает любой Origin.
func NewWebSocketHandler(cs services.ChatService, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		chatService: cs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// ServeWs подключает участника к комнате команды: /ws/teams/{teamID}?token=...
// Сначала приходит история чата, потом живые события комнаты.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	teamID, err := getUUIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Ошибки доступа отдаём обычным HTTP ответом, до апгрейда.
	feed, err := h.chatService.OpenFeed(r.Context(), userID, teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	log := logger.FromContext(r.Context()).With(zap.String("team_id", teamID.String()))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		feed.Close()
		// Upgrade сам пишет HTTP ошибку клиенту.
		log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	log.Debug("websocket connected")

	room := realtime.TeamRoom(teamID)
	client := realtime.NewClient(conn, feed, room, h.inboundHandler(userID, teamID, log), log)
	client.Run(r.Context())

	log.Debug("websocket disconnected")
}

// inboundHandler возвращает клиенту только ошибки сервиса; остальное логируется.
func (h *WebSocketHandler) inboundHandler(userID, teamID uuid.UUID, log *zap.Logger) realtime.InboundHandler {
	return func(ctx context.Context, env realtime.Envelope) error {
		if env.Type != realtime.TypeChatSend {
			return fmt.Errorf("unsupported message type %q", env.Type)
		}

		var input sendMessageInput
		if err := json.Unmarshal(env.Payload, &input); err != nil {
			return errors.New("malformed CHAT_SEND payload")
		}

		// Сообщение вернётся отправителю через комнату, как и остальным.
		if _, err := h.chatService.Send(ctx, userID, teamID, input.Message); err != nil {
			if serviceErrorStatus(err) == http.StatusInternalServerError {
				log.Error("failed to send chat message", zap.Error(err))
				return errors.New(internalErrorMessage)
			}
			return err
		}
		return nil
	}
}
