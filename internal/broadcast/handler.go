package broadcast

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Subscribers are passive and unauthenticated; any origin may listen.
		return true
	},
}

// Handler returns the HTTP handler that upgrades subscriber connections
// and registers them with the hub.
func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}

		client := newClient(h, conn)
		if err := h.add(client); err != nil {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	})
}
