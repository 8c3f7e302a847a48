// Package realtime implements the in-process connection registry and the
// event fan-out hub behind the websocket endpoint. It owns the wire format
// for control frames (client to server) and events (server to client); every
// frame is a single JSON object tagged by a "type" field.
package realtime

import (
	"encoding/json"
	"errors"

	"ai-chat-api/internal/models"
)

// Frame type tags, client to server.
const (
	FrameAuth        = "auth"
	FrameJoinRoom    = "join-room"
	FrameLeaveRoom   = "leave-room"
	FrameTypingStart = "typing-start"
	FrameTypingStop  = "typing-stop"
	FramePing        = "ping"
)

// Event type tags, server to client.
const (
	EventConnected      = "connected"
	EventAuthSuccess    = "auth:success"
	EventAuthError      = "auth:error"
	EventJoinedRoom     = "joined:room"
	EventLeftRoom       = "left:room"
	EventPong           = "pong"
	EventError          = "error"
	EventMessageNew     = "message:new"
	EventTypingStart    = "typing:start"
	EventTypingStop     = "typing:stop"
	EventProgressUpdate = "progress:update"
	EventRuleProposed   = "rule:proposed"
)

// ErrMalformedFrame is returned when an inbound payload is not a JSON object
// with a "type" field.
var ErrMalformedFrame = errors.New("malformed frame")

// ClientFrame is the closed set of control frames a client may send.
// DecodeClientFrame is the only producer of these values.
type ClientFrame interface {
	clientFrame()
}

// AuthFrame claims an identity for the connection. RoomID optionally joins a
// room in the same step.
type AuthFrame struct {
	Token  string
	RoomID string
}

// JoinRoomFrame moves the connection into a room, replacing any previous one.
type JoinRoomFrame struct {
	RoomID string
}

// LeaveRoomFrame clears the connection's room.
type LeaveRoomFrame struct{}

// TypingFrame announces typing status for a room. Start distinguishes
// typing-start from typing-stop.
type TypingFrame struct {
	Start  bool
	RoomID string
	UserID string
}

// PingFrame requests a pong reply.
type PingFrame struct{}

// UnknownFrame carries a well-formed frame whose type this version does not
// recognize. Handlers log and ignore it to stay forward compatible.
type UnknownFrame struct {
	Type string
}

func (AuthFrame) clientFrame()      {}
func (JoinRoomFrame) clientFrame()  {}
func (LeaveRoomFrame) clientFrame() {}
func (TypingFrame) clientFrame()    {}
func (PingFrame) clientFrame()      {}
func (UnknownFrame) clientFrame()   {}

// frameEnvelope is the superset of fields any control frame may carry.
type frameEnvelope struct {
	Type   string `json:"type"`
	Token  string `json:"token"`
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// DecodeClientFrame parses one inbound frame into its typed form.
// Payloads that are not JSON objects or lack a type tag yield
// ErrMalformedFrame; recognized-but-wrong-shape frames decode to their type
// with zero values, which handlers validate themselves.
func DecodeClientFrame(raw []byte) (ClientFrame, error) {
	var env frameEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, ErrMalformedFrame
	}
	if env.Type == "" {
		return nil, ErrMalformedFrame
	}

	switch env.Type {
	case FrameAuth:
		return AuthFrame{Token: env.Token, RoomID: env.RoomID}, nil
	case FrameJoinRoom:
		return JoinRoomFrame{RoomID: env.RoomID}, nil
	case FrameLeaveRoom:
		return LeaveRoomFrame{}, nil
	case FrameTypingStart:
		return TypingFrame{Start: true, RoomID: env.RoomID, UserID: env.UserID}, nil
	case FrameTypingStop:
		return TypingFrame{Start: false, RoomID: env.RoomID, UserID: env.UserID}, nil
	case FramePing:
		return PingFrame{}, nil
	default:
		return UnknownFrame{Type: env.Type}, nil
	}
}

// Event is the closed set of server-to-client events. Constructors below fill
// in the type tag; the hub and handlers marshal these structs directly.
type Event interface {
	isEvent()
}

// ConnectedEvent is sent once immediately after accept.
type ConnectedEvent struct {
	Type         string `json:"type"`
	ConnectionID string `json:"connectionId"`
	Message      string `json:"message"`
}

// AuthSuccessEvent acknowledges a successful auth frame.
type AuthSuccessEvent struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// AuthErrorEvent rejects an auth frame.
type AuthErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// JoinedRoomEvent confirms a join-room frame.
type JoinedRoomEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

// LeftRoomEvent confirms a leave-room frame.
type LeftRoomEvent struct {
	Type string `json:"type"`
}

// PongEvent answers a ping frame.
type PongEvent struct {
	Type string `json:"type"`
}

// ErrorEvent reports a malformed inbound frame.
type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// TypingRelayEvent is a client typing announcement rebroadcast to its room
// under the same tag it arrived with.
type TypingRelayEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// MessageNewEvent announces a persisted chat message to its room.
type MessageNewEvent struct {
	Type    string         `json:"type"`
	ChatID  string         `json:"chatId"`
	Message models.Message `json:"message"`
}

// ModelTypingEvent signals that a model started or stopped generating.
type ModelTypingEvent struct {
	Type    string `json:"type"`
	ChatID  string `json:"chatId"`
	ModelID string `json:"modelId"`
}

// ProgressUpdateEvent reports generation progress for a chat.
type ProgressUpdateEvent struct {
	Type     string `json:"type"`
	ChatID   string `json:"chatId"`
	Progress int    `json:"progress"`
	Status   string `json:"status"`
}

// RuleProposedEvent notifies a user about a newly proposed rule.
type RuleProposedEvent struct {
	Type string      `json:"type"`
	Rule models.Rule `json:"rule"`
}

func (ConnectedEvent) isEvent()      {}
func (AuthSuccessEvent) isEvent()    {}
func (AuthErrorEvent) isEvent()      {}
func (JoinedRoomEvent) isEvent()     {}
func (LeftRoomEvent) isEvent()       {}
func (PongEvent) isEvent()           {}
func (ErrorEvent) isEvent()          {}
func (TypingRelayEvent) isEvent()    {}
func (MessageNewEvent) isEvent()     {}
func (ModelTypingEvent) isEvent()    {}
func (ProgressUpdateEvent) isEvent() {}
func (RuleProposedEvent) isEvent()   {}

// NewConnected builds the accept-time greeting for a fresh connection.
func NewConnected(connectionID string) ConnectedEvent {
	return ConnectedEvent{
		Type:         EventConnected,
		ConnectionID: connectionID,
		Message:      "Connected to chat server",
	}
}

// NewAuthSuccess builds the reply to a verified auth frame.
func NewAuthSuccess(userID string) AuthSuccessEvent {
	return AuthSuccessEvent{Type: EventAuthSuccess, UserID: userID}
}

// NewAuthError builds the reply to a rejected auth frame.
func NewAuthError(reason string) AuthErrorEvent {
	return AuthErrorEvent{Type: EventAuthError, Error: reason}
}

// NewJoinedRoom builds the join-room confirmation.
func NewJoinedRoom(roomID string) JoinedRoomEvent {
	return JoinedRoomEvent{Type: EventJoinedRoom, RoomID: roomID}
}

// NewLeftRoom builds the leave-room confirmation.
func NewLeftRoom() LeftRoomEvent {
	return LeftRoomEvent{Type: EventLeftRoom}
}

// NewPong builds the ping reply.
func NewPong() PongEvent {
	return PongEvent{Type: EventPong}
}

// NewError builds the malformed-frame reply.
func NewError(reason string) ErrorEvent {
	return ErrorEvent{Type: EventError, Error: reason}
}

// NewTypingRelay rebroadcasts a typing announcement under its inbound tag.
func NewTypingRelay(start bool, roomID, userID string) TypingRelayEvent {
	tag := FrameTypingStop
	if start {
		tag = FrameTypingStart
	}
	return TypingRelayEvent{Type: tag, RoomID: roomID, UserID: userID}
}

// NewMessage builds the room announcement for a persisted message.
func NewMessage(msg models.Message) MessageNewEvent {
	return MessageNewEvent{Type: EventMessageNew, ChatID: msg.ChatID, Message: msg}
}

// NewModelTyping signals model generation starting or stopping.
func NewModelTyping(start bool, chatID, modelID string) ModelTypingEvent {
	tag := EventTypingStop
	if start {
		tag = EventTypingStart
	}
	return ModelTypingEvent{Type: tag, ChatID: chatID, ModelID: modelID}
}

// NewProgressUpdate reports generation progress as a 0-100 percentage.
func NewProgressUpdate(chatID string, progress int, status string) ProgressUpdateEvent {
	return ProgressUpdateEvent{Type: EventProgressUpdate, ChatID: chatID, Progress: progress, Status: status}
}

// NewRuleProposed notifies about a freshly proposed rule.
func NewRuleProposed(rule models.Rule) RuleProposedEvent {
	return RuleProposedEvent{Type: EventRuleProposed, Rule: rule}
}
