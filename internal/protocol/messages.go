// Package protocol defines the WebSocket message types and structures used for
// communication between the client and server. All messages are serialized as
// JSON and follow a consistent envelope format with a type discriminator.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/commune/chat-app/internal/chat"
)

// ---------------------------------------------------------------------------
// Message type constants
// ---------------------------------------------------------------------------

// Client -> Server message types.
const (
	TypeJoin           = "join"
	TypeSendMessage    = "send_message"
	TypePrivateMessage = "private_message"
	TypeTyping         = "typing"
	TypeJoinRoom       = "join_room"
	TypeLeaveRoom      = "leave_room"
	TypeReactMessage   = "react_message"
	TypePing           = "ping"
)

// Server -> Client message types.
const (
	TypeConnected        = "connected"
	TypeUserList         = "user_list"
	TypeUserJoined       = "user_joined"
	TypeUserLeft         = "user_left"
	TypeReceiveMessage   = "receive_message"
	TypeMessageDelivered = "message_delivered"
	TypeTypingUsers      = "typing_users"
	TypeReactUpdate      = "react_update"
	TypeSystemMessage    = "system_message"
	TypePong             = "pong"
)

// ---------------------------------------------------------------------------
// Envelope — used for initial JSON parsing to extract the type discriminator.
// ---------------------------------------------------------------------------

// Envelope holds the message type and the raw JSON payload for deferred
// parsing into a concrete struct.
type Envelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements the json.Unmarshaler interface. It captures the
// full raw bytes and extracts only the "type" field so that the rest of the
// payload can be decoded later into the appropriate concrete struct.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	// Capture the full raw message for deferred parsing.
	e.Raw = make(json.RawMessage, len(data))
	copy(e.Raw, data)

	// Extract only the type field.
	var partial struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &partial); err != nil {
		return fmt.Errorf("protocol: failed to unmarshal envelope: %w", err)
	}
	if partial.Type == "" {
		return fmt.Errorf("protocol: missing or empty \"type\" field")
	}
	e.Type = partial.Type
	return nil
}

// ---------------------------------------------------------------------------
// Client -> Server message structs
// ---------------------------------------------------------------------------

// JoinMsg is sent by the client to register a username for this connection.
// An invalid username terminates the connection.
type JoinMsg struct {
	Type     string `json:"type"`
	Username string `json:"username"`
}

// SendMessageMsg is a room-scoped (or global) chat message. Room defaults to
// "global" when empty. Image is an opaque blob reference passed through
// unmodified.
type SendMessageMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Room    string `json:"room,omitempty"`
	Image   string `json:"image,omitempty"`
}

// PrivateMessageMsg is a direct message to a single online user. The
// recipient is identified by username in the "to" field; this is the sole
// supported form.
type PrivateMessageMsg struct {
	Type    string `json:"type"`
	To      string `json:"to"`
	Message string `json:"message"`
}

// TypingMsg indicates whether the client is currently typing. There is no
// server-side timeout: the client is responsible for sending false when it
// stops.
type TypingMsg struct {
	Type     string `json:"type"`
	IsTyping bool   `json:"is_typing"`
}

// JoinRoomMsg subscribes the connection to a room's broadcast scope.
type JoinRoomMsg struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

// LeaveRoomMsg removes the connection from a room's broadcast scope.
type LeaveRoomMsg struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

// ReactMessageMsg toggles a (username, reaction) pair on a stored message.
type ReactMessageMsg struct {
	Type      string `json:"type"`
	MessageID string `json:"message_id"`
	Reaction  string `json:"reaction"`
	Username  string `json:"username"`
}

// PingMsg is a client-initiated keepalive ping.
type PingMsg struct {
	Type string `json:"type"`
}

// ---------------------------------------------------------------------------
// Server -> Client message structs
// ---------------------------------------------------------------------------

// ConnectedMsg is sent once after the WebSocket upgrade and carries the
// server-assigned connection id.
type ConnectedMsg struct {
	Type         string `json:"type"`
	ConnectionID string `json:"connection_id"`
}

// UserEntry is one entry in the active-user snapshot.
type UserEntry struct {
	Username string `json:"username"`
	ID       string `json:"id"` // connection id
	Online   bool   `json:"online"`
}

// UserListMsg is the full snapshot of currently connected users, in
// connection order.
type UserListMsg struct {
	Type  string      `json:"type"`
	Users []UserEntry `json:"users"`
}

// UserJoinedMsg announces a single user joining.
type UserJoinedMsg struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	ID       string `json:"id"`
}

// UserLeftMsg announces a single user leaving.
type UserLeftMsg struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	ID       string `json:"id"`
}

// ReceiveMessageMsg delivers a stored chat message to its broadcast scope.
type ReceiveMessageMsg struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Sender    string          `json:"sender"`
	SenderID  string          `json:"sender_id"`
	Message   string          `json:"message"`
	Room      string          `json:"room"`
	Image     string          `json:"image,omitempty"`
	Reactions []chat.Reaction `json:"reactions"`
	Ts        int64           `json:"ts"`
}

// MessageDeliveredMsg is the delivery acknowledgment sent to the originating
// connection only.
type MessageDeliveredMsg struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Ts   int64  `json:"ts"`
}

// ServerPrivateMsg delivers a private message to exactly two destinations:
// the recipient's connection and the sender's own connection.
type ServerPrivateMsg struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	Sender   string `json:"sender"`
	SenderID string `json:"sender_id"`
	To       string `json:"to"`
	Message  string `json:"message"`
	Ts       int64  `json:"ts"`
}

// TypingUser is one entry in the typing snapshot.
type TypingUser struct {
	Username string `json:"username"`
	ID       string `json:"id"`
}

// TypingUsersMsg is the full de-duplicated list of currently typing users.
type TypingUsersMsg struct {
	Type  string       `json:"type"`
	Users []TypingUser `json:"users"`
}

// ReactUpdateMsg carries the complete updated reactions list for a message.
type ReactUpdateMsg struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Reactions []chat.Reaction `json:"reactions"`
}

// SystemMessageMsg is an informational notice, scoped by the caller.
type SystemMessageMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// PongMsg is the server's response to a client ping.
type PongMsg struct {
	Type string `json:"type"`
}

// ---------------------------------------------------------------------------
// Helper functions
// ---------------------------------------------------------------------------

// ParseClientMessage parses raw WebSocket bytes into a typed client message.
// It returns the message type string, the decoded struct, and any error
// encountered during parsing. An error is returned for unknown or
// server-only message types.
func ParseClientMessage(data []byte) (string, interface{}, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("protocol: failed to parse message: %w", err)
	}

	var (
		msg interface{}
		err error
	)

	switch env.Type {
	case TypeJoin:
		var m JoinMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypeSendMessage:
		var m SendMessageMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypePrivateMessage:
		var m PrivateMessageMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypeTyping:
		var m TypingMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypeJoinRoom:
		var m JoinRoomMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypeLeaveRoom:
		var m LeaveRoomMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypeReactMessage:
		var m ReactMessageMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypePing:
		var m PingMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	default:
		return env.Type, nil, fmt.Errorf("protocol: unknown client message type: %q", env.Type)
	}

	if err != nil {
		return env.Type, nil, fmt.Errorf("protocol: failed to decode %q payload: %w", env.Type, err)
	}
	return env.Type, msg, nil
}

// NewServerMessage creates a JSON-encoded byte slice for a server message.
// The msgType is injected into the payload under the "type" key. The payload
// should be one of the server message structs; this function marshals it to
// JSON, injects the type field, and returns the final bytes.
func NewServerMessage(msgType string, payload interface{}) ([]byte, error) {
	// Marshal the payload struct to a generic map so we can ensure the "type"
	// field is present and correct.
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to marshal payload: %w", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("protocol: failed to unmarshal payload into map: %w", err)
	}

	m["type"] = msgType

	out, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to marshal server message: %w", err)
	}
	return out, nil
}
