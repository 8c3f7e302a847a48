package handlers

import (
	"log"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"ai-chat-api/internal/auth"
	"ai-chat-api/internal/config"
	"ai-chat-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// wsClient implements realtime.Client by wrapping a websocket connection.
// The mutex keeps writes frame-atomic: the handler's own replies interleave
// with hub deliveries from other goroutines, and gorilla allows only one
// concurrent writer.
type wsClient struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	writeWait time.Duration
}

func (c *wsClient) Send(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, message) == nil
}

func (c *wsClient) Close() {
	_ = c.conn.Close()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is already handled at Gin level; allow upgrade from any origin here
		return true
	},
}

// wsSession is the per-connection state machine. It starts anonymous and may
// authenticate once via an auth frame; the room is an orthogonal attribute
// mutable in any state. Only this session mutates its own registry entry.
type wsSession struct {
	connID   string
	userID   string
	roomID   string
	client   *wsClient
	registry *realtime.Registry
	hub      *realtime.Hub
}

// WebSocket upgrades the connection and runs the session loop until the peer
// goes away. The endpoint is public: identity is claimed in-band through an
// auth frame after connect, not during the HTTP handshake.
func WebSocket(registry *realtime.Registry, hub *realtime.Hub, cfg config.WebsocketConfig) gin.HandlerFunc {
	if cfg.ReadLimit == 0 {
		cfg.ReadLimit = 4096
	}
	if cfg.PongWait == 0 {
		cfg.PongWait = 60 * time.Second
	}
	if cfg.PingInterval == 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.WriteWait == 0 {
		cfg.WriteWait = 5 * time.Second
	}

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("websocket upgrade error:", err)
			return
		}

		connID := uuid.NewString()
		client := &wsClient{conn: conn, writeWait: cfg.WriteWait}
		registry.Insert(connID, client)

		sess := &wsSession{
			connID:   connID,
			client:   client,
			registry: registry,
			hub:      hub,
		}
		sess.reply(realtime.NewConnected(connID))

		// Heartbeat: send periodic transport pings; close on error
		pingTicker := time.NewTicker(cfg.PingInterval)
		done := make(chan struct{})
		go func() {
			for {
				select {
				case <-done:
					return
				case <-pingTicker.C:
					if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(cfg.WriteWait)); err != nil {
						// ping failed; reader loop will exit on next error
						return
					}
				}
			}
		}()
		defer func() {
			close(done)
			pingTicker.Stop()
			registry.Remove(connID)
			client.Close()
		}()

		conn.SetReadLimit(cfg.ReadLimit)
		conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
			return nil
		})

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				// Normal close or error; the deferred cleanup removes the entry
				return
			}
			sess.handleFrame(raw)
		}
	}
}

func (s *wsSession) reply(evt realtime.Event) {
	s.hub.Send(s.client, evt)
}

func (s *wsSession) handleFrame(raw []byte) {
	frame, err := realtime.DecodeClientFrame(raw)
	if err != nil {
		s.reply(realtime.NewError("Invalid message format"))
		return
	}

	switch f := frame.(type) {
	case realtime.AuthFrame:
		s.handleAuth(f)
	case realtime.JoinRoomFrame:
		if f.RoomID == "" {
			s.reply(realtime.NewError("Invalid message format"))
			return
		}
		s.setRoom(f.RoomID)
		s.reply(realtime.NewJoinedRoom(f.RoomID))
	case realtime.LeaveRoomFrame:
		s.setRoom("")
		s.reply(realtime.NewLeftRoom())
	case realtime.TypingFrame:
		s.handleTyping(f)
	case realtime.PingFrame:
		s.reply(realtime.NewPong())
	case realtime.UnknownFrame:
		// Ignored without an error reply so newer clients keep working.
		slog.Debug("ignoring unrecognized frame type", "connectionId", s.connID, "frameType", f.Type)
	}
}

func (s *wsSession) handleAuth(f realtime.AuthFrame) {
	claims, err := auth.VerifyToken(f.Token)
	if err != nil {
		s.reply(realtime.NewAuthError("Invalid token"))
		return
	}

	// Identity is set at most once per connection; a repeated auth frame
	// cannot swap the user out from under in-flight deliveries.
	if s.userID == "" {
		s.userID = claims.UserID
		s.registry.SetIdentity(s.connID, claims.UserID)
	}
	if f.RoomID != "" {
		s.setRoom(f.RoomID)
	}
	s.reply(realtime.NewAuthSuccess(s.userID))
}

func (s *wsSession) handleTyping(f realtime.TypingFrame) {
	// Typing announcements are only relayed for the sender's own room and
	// only once authenticated; anything else is dropped like an
	// unrecognized frame.
	if s.userID == "" || f.RoomID == "" || f.RoomID != s.roomID {
		slog.Debug("dropping typing frame outside own room",
			"connectionId", s.connID, "roomId", f.RoomID)
		return
	}
	s.hub.DeliverToRoom(f.RoomID, realtime.NewTypingRelay(f.Start, f.RoomID, s.userID))
}

func (s *wsSession) setRoom(roomID string) {
	s.roomID = roomID
	s.registry.SetRoom(s.connID, roomID)
}
