package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Типы сообщений, которые уходят подписчикам комнаты команды.
const (
	TypeChatMessage       = "CHAT_MESSAGE"
	TypeEventCreated      = "EVENT_CREATED"
	TypeEventUpdated      = "EVENT_UPDATED"
	TypeEventConfirmed    = "EVENT_CONFIRMED"
	TypeAttendanceUpdated = "ATTENDANCE_UPDATED"

	// TypeChatSend приходит от клиента по websocket.
	TypeChatSend = "CHAT_SEND"
	TypeError    = "ERROR"
)

type Envelope struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"room_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewEnvelope(msgType, roomID string, payload interface{}) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", msgType, err)
	}
	return Envelope{Type: msgType, RoomID: roomID, Payload: raw}, nil
}

func TeamRoom(teamID uuid.UUID) string {
	return "team_" + teamID.String()
}
