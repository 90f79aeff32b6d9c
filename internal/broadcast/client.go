package broadcast

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Conn is the subset of the WebSocket connection the hub uses.
// *websocket.Conn satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one subscriber connection. Ephemeral: it carries no state
// beyond its send queue and lives exactly as long as the connection.
type Client struct {
	id   uuid.UUID
	hub  *Hub
	conn Conn

	send chan []byte
	done chan struct{}

	closeOnce sync.Once
	termOnce  sync.Once
}

func newClient(h *Hub, conn Conn) *Client {
	return &Client{
		id:   uuid.New(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, h.cfg.SendBuffer),
		done: make(chan struct{}),
	}
}

// ID returns the connection identifier used in logs.
func (c *Client) ID() string {
	return c.id.String()
}

// enqueue offers a payload to the send queue without blocking.
func (c *Client) enqueue(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// requestClose asks the writer to send a close frame and stop. The
// connection is torn down when the peer completes the close handshake,
// or forcibly via terminate.
func (c *Client) requestClose() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// terminate closes the underlying connection immediately, which also
// unblocks the read pump.
func (c *Client) terminate() {
	c.termOnce.Do(func() {
		c.conn.Close()
	})
}

// writePump owns all writes to the connection. A write failure tears
// down this connection only.
func (c *Client) writePump() {
	for {
		select {
		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.hub.logger.Warn("subscriber write failed", "client", c.ID(), "error", err)
				c.terminate()
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		}
	}
}

// readPump discards inbound frames; subscribers are push-only. Its real
// job is detecting close and errors, then deregistering.
func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.requestClose() // release the write pump
		c.terminate()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
