// internal/ws/client.go
package ws

import (
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"arrears-service/internal/domain/auth"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Client is one websocket connection bound to an authenticated principal.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	principal auth.Principal
	jti       string
}

func NewClient(hub *Hub, conn *websocket.Conn, principal auth.Principal, jti string) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, 64),
		principal: principal,
		jti:       jti,
	}
}

// ReadPump drains inbound frames. The only inbound message the service
// understands is a ping; everything else is ignored.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		msg, err := ParseMessage(data)
		if err != nil {
			continue
		}
		if msg.Type == EventPing {
			c.Send(NewMessage(EventPong, nil))
		}
	}
}

// WritePump flushes queued messages and keeps the connection alive with
// pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Send queues a message; a full buffer drops the connection rather than
// blocking the hub.
func (c *Client) Send(msg *Message) {
	data, err := msg.ToJSON()
	if err != nil {
		c.hub.logger.Warn("failed to marshal ws message", zap.Error(err))
		return
	}

	select {
	case c.send <- data:
	default:
		c.hub.unregister <- c
	}
}
