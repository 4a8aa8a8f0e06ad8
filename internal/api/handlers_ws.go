package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/kolapsis/vocalboard/internal/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Auth is the bearer token, not cookies, so cross-origin upgrades
	// carry no ambient credentials.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebsocket joins the authenticated user's realtime room. The
// connection receives task-created, task-updated, task-deleted and
// calendar-updated events until the peer disconnects.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("websocket upgrade failed", "user_id", user.ID, "error", err)
		return
	}

	s.deps.Hub.Join(user.ID, conn)
}
