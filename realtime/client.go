package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// InboundHandler обрабатывает сообщения, пришедшие от клиента. Ошибка
// отправляется обратно этому же клиенту как сообщение типа ERROR.
type InboundHandler func(ctx context.Context, env Envelope) error

type Client struct {
	conn      *websocket.Conn
	feed      Feed
	room      string
	onMessage InboundHandler
	replies   chan Envelope
	log       *zap.Logger
}

func NewClient(conn *websocket.Conn, feed Feed, room string, onMessage InboundHandler, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		conn:      conn,
		feed:      feed,
		room:      room,
		onMessage: onMessage,
		replies:   make(chan Envelope, 16),
		log:       log.With(zap.String("room", room)),
	}
}

// Run блокируется, пока клиент не отключится. Запись идёт в отдельной
// горутине, чтение в текущей, поэтому ctx запроса остаётся живым.
func (c *Client) Run(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writePump()
	}()

	c.readPump(ctx)
	c.feed.Close()
	<-done
}

func (c *Client) readPump(ctx context.Context) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("websocket read failed", zap.Error(err))
			}
			c.log.Debug("client disconnected", zap.Error(err))
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.reply(TypeError, "malformed message")
			continue
		}
		if c.onMessage == nil {
			continue
		}
		if err := c.onMessage(ctx, env); err != nil {
			c.reply(TypeError, err.Error())
		}
	}
}

func (c *Client) reply(msgType, message string) {
	env, err := NewEnvelope(msgType, c.room, map[string]string{"error": message})
	if err != nil {
		return
	}
	select {
	case c.replies <- env:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	messages := c.feed.Messages()
	for {
		select {
		case env, ok := <-messages:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
				c.log.Debug("websocket write failed", zap.Error(err))
				return
			}
		case env := <-c.replies:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.Debug("websocket ping failed", zap.Error(err))
				return
			}
		}
	}
}
