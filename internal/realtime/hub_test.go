package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, hub *Hub, accountID string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(accountID, w, r)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool {
		return hub.ConnectionCount(accountID) == 1
	}, time.Second, 10*time.Millisecond)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHubBroadcastToUser(t *testing.T) {
	hub := NewHub()
	alice := dialHub(t, hub, "alice")
	bob := dialHub(t, hub, "bob")

	hub.BroadcastToUser("alice", Message{Event: EventNotificationCreated, Data: map[string]any{"title": "hello"}})
	hub.Broadcast(Message{Event: EventNotificationCreated})

	first := readMessage(t, alice)
	require.Equal(t, StreamNotifications, first.Stream)
	require.Equal(t, EventNotificationCreated, first.Event)
	require.Equal(t, "hello", first.Data.(map[string]any)["title"])

	second := readMessage(t, alice)
	require.Nil(t, second.Data)

	fromBroadcast := readMessage(t, bob)
	require.Equal(t, EventNotificationCreated, fromBroadcast.Event)
	require.Nil(t, fromBroadcast.Data)
}

func TestHubRepliesToPing(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "carol")

	require.NoError(t, conn.WriteJSON(map[string]string{"action": "ping"}))
	msg := readMessage(t, conn)
	require.Equal(t, "pong", msg.Event)
}

func TestHubUnregistersOnClose(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "dave")
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return hub.ConnectionCount("dave") == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSameOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://college.example.com/api/notifications/stream", nil)
	require.True(t, sameOrigin(req))

	req.Header.Set("Origin", "https://college.example.com")
	require.True(t, sameOrigin(req))

	req.Header.Set("Origin", "http://localhost:5173")
	require.True(t, sameOrigin(req))

	req.Header.Set("Origin", "https://evil.example.net")
	require.False(t, sameOrigin(req))
}
