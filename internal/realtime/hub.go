package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event is the wire frame pushed to clients.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 16
)

// Hub fans realtime events out to a user's live connections. Delivery is
// best-effort, at-most-once: a slow or gone client is dropped, and there is
// no replay for events missed while disconnected.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*client]struct{})}
}

// Join registers conn in the user's room and serves it until the peer
// disconnects. Blocks; call from the websocket handler goroutine.
func (h *Hub) Join(userID string, conn *websocket.Conn) {
	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	room, ok := h.rooms[userID]
	if !ok {
		room = make(map[*client]struct{})
		h.rooms[userID] = room
	}
	room[c] = struct{}{}
	h.mu.Unlock()

	slog.Debug("realtime client joined", "user_id", userID)

	go c.writeLoop()
	c.readLoop()

	h.leave(userID, c)
	slog.Debug("realtime client left", "user_id", userID)
}

// Broadcast sends an event to every live connection of the user.
func (h *Hub) Broadcast(userID, event string, payload any) {
	frame, err := json.Marshal(Event{Type: event, Payload: payload})
	if err != nil {
		slog.Warn("dropping unmarshalable realtime event", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[userID] {
		select {
		case c.send <- frame:
		case <-c.done:
		default:
			// Slow consumer; drop the connection rather than block the server.
			c.close()
		}
	}
}

// Connections reports how many live connections the user has.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

func (h *Hub) leave(userID string, c *client) {
	h.mu.Lock()
	if room, ok := h.rooms[userID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, userID)
		}
	}
	h.mu.Unlock()
	c.close()
}

func (c *client) writeLoop() {
	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.close()
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// readLoop drains the connection; clients send nothing we act on, but the
// read is what detects the peer going away.
func (c *client) readLoop() {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
