package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/houseboard/internal/session"
)

// HandleWebSocket returns an HTTP handler that upgrades connections to
// WebSocket and subscribes them to their session's notifications.
func HandleWebSocket(hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}
		defer conn.CloseNow()

		client := NewClient(hub, conn, session.Key(r.Context()))
		client.Run(r.Context())
	}
}
