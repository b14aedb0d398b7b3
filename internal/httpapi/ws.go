package httpapi

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"

	"go.klb.dev/clipmunk/internal/message"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: localOrigin,
}

// localOrigin admits non-browser clients (no Origin header) and pages served
// from the loopback interface.
func localOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// handleWS answers wire-protocol envelopes sent as JSON text frames. Replies
// are written from this goroutine only, so no write lock is needed.
func (h *handler) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxBody)

	for {
		var req message.Message
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("ws read failed", "err", err)
			}
			return
		}
		if err := conn.WriteJSON(h.srv.Handle(r.Context(), &req)); err != nil {
			slog.Debug("ws write failed", "err", err)
			return
		}
	}
}
