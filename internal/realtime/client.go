// ABOUTME: One websocket connection: read/write pumps and buffered outbound queue.
// ABOUTME: Adapted pump timings keep dead connections from lingering.

package realtime

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 20 // 1MB
)

// Client is one websocket connection registered with the hub.
type Client struct {
	ID string

	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	done chan struct{} // closed on unregister

	// UserID is empty for anonymous connections.
	UserID string
}

// NewClient wraps an upgraded connection. UserID may be empty.
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		ID:     uuid.New().String(),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		done:   make(chan struct{}),
		UserID: userID,
	}
}

// SendJSON queues an event for delivery. Drops the frame if the client's
// buffer is full rather than blocking the caller.
func (c *Client) SendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("marshal error", "error", err)
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
	default:
		slog.Warn("client send buffer full, dropping message", "connection_id", c.ID)
	}
}

// ReadPump reads frames until the connection drops, dispatching each to the
// hub. Runs on its own goroutine per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Info("client disconnected", "connection_id", c.ID, "error", err)
			}
			return
		}
		c.hub.handleMessage(c, message)
	}
}

// WritePump drains the send queue and keeps the connection alive with pings.
// Runs on its own goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
