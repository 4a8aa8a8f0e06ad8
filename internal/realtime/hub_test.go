package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// dialHub connects a websocket client to a hub room and returns the client
// side of the connection.
func dialHub(t *testing.T, h *Hub, userID string) *websocket.Conn {
	t.Helper()

	joined := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		close(joined)
		h.Join(userID, conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	<-joined
	waitForConnections(t, h, userID, 1)
	return conn
}

func waitForConnections(t *testing.T, h *Hub, userID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.Connections(userID) >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("user %s never reached %d connections", userID, want)
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(frame, &ev))
	return ev
}

func TestHub_BroadcastReachesUserClients(t *testing.T) {
	t.Parallel()
	h := NewHub()

	conn := dialHub(t, h, "user-1")
	h.Broadcast("user-1", "task-created", map[string]string{"id": "task-1"})

	ev := readEvent(t, conn)
	assert.Equal(t, "task-created", ev.Type)
	payload, ok := ev.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "task-1", payload["id"])
}

func TestHub_RoomsAreIsolated(t *testing.T) {
	t.Parallel()
	h := NewHub()

	alice := dialHub(t, h, "alice")
	bob := dialHub(t, h, "bob")

	h.Broadcast("alice", "task-created", nil)
	h.Broadcast("alice", "task-updated", nil)

	assert.Equal(t, "task-created", readEvent(t, alice).Type)
	assert.Equal(t, "task-updated", readEvent(t, alice).Type)

	// Bob's connection stays silent.
	require.NoError(t, bob.SetReadDeadline(time.Now().Add(150*time.Millisecond)))
	_, _, err := bob.ReadMessage()
	assert.Error(t, err)
}

func TestHub_BroadcastToEmptyRoomIsNoop(t *testing.T) {
	t.Parallel()
	h := NewHub()

	// Must not panic or block.
	h.Broadcast("nobody", "task-created", map[string]string{"id": "x"})
	assert.Equal(t, 0, h.Connections("nobody"))
}

func TestHub_DisconnectLeavesRoom(t *testing.T) {
	t.Parallel()
	h := NewHub()

	conn := dialHub(t, h, "user-1")
	require.Equal(t, 1, h.Connections("user-1"))

	require.NoError(t, conn.Close())

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && h.Connections("user-1") != 0 {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 0, h.Connections("user-1"))
}

func TestHub_UnmarshalableEventIsDropped(t *testing.T) {
	t.Parallel()
	h := NewHub()

	conn := dialHub(t, h, "user-1")

	// Channels cannot be marshaled; the event is dropped, the next one flows.
	h.Broadcast("user-1", "broken", make(chan int))
	h.Broadcast("user-1", "task-created", nil)

	assert.Equal(t, "task-created", readEvent(t, conn).Type)
}
