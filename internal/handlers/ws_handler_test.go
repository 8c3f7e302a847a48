package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ai-chat-api/internal/auth"
	"ai-chat-api/internal/config"
	"ai-chat-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// wsFrame is the superset of fields any server frame may carry, for test
// assertions only.
type wsFrame struct {
	Type         string `json:"type"`
	ConnectionID string `json:"connectionId"`
	UserID       string `json:"userId"`
	RoomID       string `json:"roomId"`
	ChatID       string `json:"chatId"`
	Error        string `json:"error"`
}

func newWsTestServer(t *testing.T) (*httptest.Server, *realtime.Registry, *realtime.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := realtime.NewRegistry()
	hub := realtime.NewHub(registry, nil)

	r := gin.New()
	r.GET("/ws", WebSocket(registry, hub, config.WebsocketConfig{}))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, registry, hub
}

func dialWs(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) wsFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var f wsFrame
	require.NoError(t, json.Unmarshal(raw, &f))
	return f
}

func sendFrame(t *testing.T, conn *websocket.Conn, payload string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(payload)))
}

func TestWebSocket_ConnectedFrameAndPingBeforeAuth(t *testing.T) {
	srv, _, _ := newWsTestServer(t)
	conn := dialWs(t, srv)

	greeting := readFrame(t, conn)
	require.Equal(t, "connected", greeting.Type)
	require.NotEmpty(t, greeting.ConnectionID)

	sendFrame(t, conn, `{"type":"ping"}`)
	require.Equal(t, "pong", readFrame(t, conn).Type)
}

func TestWebSocket_AuthSuccess(t *testing.T) {
	srv, registry, _ := newWsTestServer(t)
	conn := dialWs(t, srv)
	readFrame(t, conn) // connected

	token, err := auth.GenerateToken("u-1", "alice")
	require.NoError(t, err)
	sendFrame(t, conn, `{"type":"auth","token":"`+token+`"}`)

	f := readFrame(t, conn)
	require.Equal(t, "auth:success", f.Type)
	require.Equal(t, "u-1", f.UserID)

	require.Len(t, registry.ByUser("u-1"), 1)
}

func TestWebSocket_AuthFailureStaysAnonymous(t *testing.T) {
	srv, registry, _ := newWsTestServer(t)
	conn := dialWs(t, srv)
	readFrame(t, conn) // connected

	sendFrame(t, conn, `{"type":"auth","token":"garbage"}`)

	f := readFrame(t, conn)
	require.Equal(t, "auth:error", f.Type)
	require.NotEmpty(t, f.Error)
	require.Empty(t, registry.ByUser("u-1"))

	// The connection stays usable.
	sendFrame(t, conn, `{"type":"ping"}`)
	require.Equal(t, "pong", readFrame(t, conn).Type)
}

func TestWebSocket_AuthWithInitialRoom(t *testing.T) {
	srv, registry, _ := newWsTestServer(t)
	conn := dialWs(t, srv)
	readFrame(t, conn) // connected

	token, err := auth.GenerateToken("u-1", "alice")
	require.NoError(t, err)
	sendFrame(t, conn, `{"type":"auth","token":"`+token+`","roomId":"chat-1"}`)
	require.Equal(t, "auth:success", readFrame(t, conn).Type)

	require.Len(t, registry.ByRoom("chat-1"), 1)
}

func TestWebSocket_RoomFanOut(t *testing.T) {
	srv, _, hub := newWsTestServer(t)

	connA := dialWs(t, srv)
	connB := dialWs(t, srv)
	connC := dialWs(t, srv)
	readFrame(t, connA)
	readFrame(t, connB)
	readFrame(t, connC)

	sendFrame(t, connA, `{"type":"join-room","roomId":"chat-1"}`)
	require.Equal(t, "joined:room", readFrame(t, connA).Type)
	sendFrame(t, connB, `{"type":"join-room","roomId":"chat-1"}`)
	require.Equal(t, "joined:room", readFrame(t, connB).Type)
	sendFrame(t, connC, `{"type":"join-room","roomId":"chat-2"}`)
	require.Equal(t, "joined:room", readFrame(t, connC).Type)

	report := hub.DeliverToRoom("chat-1", realtime.NewProgressUpdate("chat-1", 50, "generating"))
	require.Equal(t, 2, report.Matched)

	for _, conn := range []*websocket.Conn{connA, connB} {
		f := readFrame(t, conn)
		require.Equal(t, "progress:update", f.Type)
		require.Equal(t, "chat-1", f.ChatID)
	}

	// C must not see the chat-1 event: the next frame C receives is the
	// one addressed to its own room.
	hub.DeliverToRoom("chat-2", realtime.NewProgressUpdate("chat-2", 10, "generating"))
	f := readFrame(t, connC)
	require.Equal(t, "chat-2", f.ChatID)
}

func TestWebSocket_LeaveRoomStopsDelivery(t *testing.T) {
	srv, registry, _ := newWsTestServer(t)
	conn := dialWs(t, srv)
	readFrame(t, conn)

	sendFrame(t, conn, `{"type":"join-room","roomId":"chat-1"}`)
	require.Equal(t, "joined:room", readFrame(t, conn).Type)
	sendFrame(t, conn, `{"type":"leave-room"}`)
	require.Equal(t, "left:room", readFrame(t, conn).Type)

	require.Empty(t, registry.ByRoom("chat-1"))
}

func TestWebSocket_MalformedFrameGetsErrorReply(t *testing.T) {
	srv, _, _ := newWsTestServer(t)
	conn := dialWs(t, srv)
	readFrame(t, conn)

	sendFrame(t, conn, "this is not json")
	f := readFrame(t, conn)
	require.Equal(t, "error", f.Type)
	require.Equal(t, "Invalid message format", f.Error)
}

func TestWebSocket_UnknownFrameTypeIsIgnored(t *testing.T) {
	srv, _, _ := newWsTestServer(t)
	conn := dialWs(t, srv)
	readFrame(t, conn)

	sendFrame(t, conn, `{"type":"from-the-future"}`)
	// No reply for unknown types; the next reply is the pong.
	sendFrame(t, conn, `{"type":"ping"}`)
	require.Equal(t, "pong", readFrame(t, conn).Type)
}

func TestWebSocket_TypingRelayedToRoom(t *testing.T) {
	srv, _, _ := newWsTestServer(t)

	connA := dialWs(t, srv)
	connB := dialWs(t, srv)
	readFrame(t, connA)
	readFrame(t, connB)

	token, err := auth.GenerateToken("u-1", "alice")
	require.NoError(t, err)
	sendFrame(t, connA, `{"type":"auth","token":"`+token+`","roomId":"chat-1"}`)
	require.Equal(t, "auth:success", readFrame(t, connA).Type)
	sendFrame(t, connB, `{"type":"join-room","roomId":"chat-1"}`)
	require.Equal(t, "joined:room", readFrame(t, connB).Type)

	sendFrame(t, connA, `{"type":"typing-start","roomId":"chat-1","userId":"u-1"}`)

	f := readFrame(t, connB)
	require.Equal(t, "typing-start", f.Type)
	require.Equal(t, "chat-1", f.RoomID)
	require.Equal(t, "u-1", f.UserID)
}

func TestWebSocket_TypingDroppedWhenAnonymousOrWrongRoom(t *testing.T) {
	srv, _, _ := newWsTestServer(t)

	sender := dialWs(t, srv)
	member := dialWs(t, srv)
	readFrame(t, sender)
	readFrame(t, member)

	sendFrame(t, member, `{"type":"join-room","roomId":"chat-1"}`)
	require.Equal(t, "joined:room", readFrame(t, member).Type)

	// Anonymous sender in no room announces typing for chat-1: dropped.
	sendFrame(t, sender, `{"type":"typing-start","roomId":"chat-1","userId":"u-9"}`)
	sendFrame(t, sender, `{"type":"ping"}`)
	require.Equal(t, "pong", readFrame(t, sender).Type)

	// The room member saw nothing; prove it with a direct marker.
	token, err := auth.GenerateToken("u-1", "alice")
	require.NoError(t, err)
	sendFrame(t, member, `{"type":"auth","token":"`+token+`"}`)
	require.Equal(t, "auth:success", readFrame(t, member).Type)
}

func TestWebSocket_DisconnectRemovesEntry(t *testing.T) {
	srv, registry, hub := newWsTestServer(t)

	conn := dialWs(t, srv)
	readFrame(t, conn)
	sendFrame(t, conn, `{"type":"join-room","roomId":"chat-1"}`)
	require.Equal(t, "joined:room", readFrame(t, conn).Type)
	require.Equal(t, 1, registry.Len())

	conn.Close()
	require.Eventually(t, func() bool { return registry.Len() == 0 },
		2*time.Second, 10*time.Millisecond)

	// A delivery to the former room completes cleanly with no recipients.
	report := hub.DeliverToRoom("chat-1", realtime.NewProgressUpdate("chat-1", 1, "generating"))
	require.Equal(t, realtime.DeliveryReport{}, report)
}
