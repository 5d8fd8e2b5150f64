package realtime

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
	sendBuffer     = 64
)

// Client is one authenticated WebSocket connection. The channel is
// receive-only for the peer: inbound frames are drained solely to keep
// the connection and its pong handler alive.
type Client struct {
	userID string
	conn   *websocket.Conn
	send   chan Event
	logger *slog.Logger
}

func newClient(userID string, conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		userID: userID,
		conn:   conn,
		send:   make(chan Event, sendBuffer),
		logger: logger,
	}
}

// readPump drains inbound frames until the connection dies, then releases
// the presence entry. Must run in its own goroutine.
func (c *Client) readPump(registry *Registry, gen uint64) {
	defer func() {
		registry.Release(c.userID, gen)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read failed", slog.String("user_id", c.userID), slog.Any("error", err))
			}
			return
		}
	}
}

// writePump forwards queued events to the peer and keeps the connection
// alive with pings. Exits when the send channel is closed by the
// registry. Must run in its own goroutine.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
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
