// Package chat holds the core domain types for the multi-room chat server:
// messages, reactions, users, and the validation rules applied to incoming
// content before it is persisted or broadcast.
package chat

import (
	"errors"
	"time"
)

// RoomGlobal is the default, unscoped broadcast channel. Messages stored with
// this room are visible to every connection; any other room name limits both
// storage filtering and broadcast fan-out.
const RoomGlobal = "global"

// ErrNotFound is returned by message lookups when no record exists for the
// requested id.
var ErrNotFound = errors.New("chat: message not found")

// Reaction is a single (username, symbol) pair attached to a message. A
// message holds at most one entry per pair; toggling the same pair twice
// restores the previous state.
type Reaction struct {
	Username string `json:"username"`
	Symbol   string `json:"reaction"`
}

// Message is a durable chat message. Records are append-only: every field
// except Reactions is immutable once the message has been stored. ID and
// CreatedAt are assigned by the store on append, never by callers.
type Message struct {
	ID        string     `json:"id"`
	Sender    string     `json:"sender"`
	Content   string     `json:"content"`
	Room      string     `json:"room"`
	Image     string     `json:"image,omitempty"` // opaque blob reference, not interpreted
	IsPrivate bool       `json:"is_private"`
	Recipient string     `json:"recipient,omitempty"` // set iff IsPrivate
	Reactions []Reaction `json:"reactions"`
	CreatedAt time.Time  `json:"timestamp"`
}

// ToggleReaction removes the (username, symbol) pair if present, otherwise
// appends it. It reports true when the pair was added and false when an
// existing pair was removed.
func (m *Message) ToggleReaction(username, symbol string) bool {
	for i, r := range m.Reactions {
		if r.Username == username && r.Symbol == symbol {
			m.Reactions = append(m.Reactions[:i], m.Reactions[i+1:]...)
			return false
		}
	}
	m.Reactions = append(m.Reactions, Reaction{Username: username, Symbol: symbol})
	return true
}

// User is the durable record behind a username. ConnectionID is set while the
// user has a live connection and cleared on leave; records are never deleted.
type User struct {
	Username     string    `json:"username"`
	ConnectionID string    `json:"connection_id,omitempty"`
	Online       bool      `json:"online"`
	CreatedAt    time.Time `json:"created_at"`
}
