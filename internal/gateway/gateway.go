// Package gateway implements the application layer of the chat server. It
// receives parsed client intents from the transport dispatcher, validates and
// applies them against the presence registry, typing aggregator, and message
// store, and emits the resulting events through an EventSink.
package gateway

import (
	"context"
	"log"

	"github.com/commune/chat-app/internal/chat"
	"github.com/commune/chat-app/internal/metrics"
	"github.com/commune/chat-app/internal/moderation"
	"github.com/commune/chat-app/internal/presence"
	"github.com/commune/chat-app/internal/protocol"
	"github.com/commune/chat-app/internal/ratelimit"
)

// EventSink is the transport surface the gateway emits events through. The
// WebSocket server implements it; tests supply a recording fake.
type EventSink interface {
	// Publish fans a payload out to a scope: all live connections when the
	// scope is "global", else the members of that room.
	Publish(scope string, data []byte)
	// SendTo delivers a payload to a single connection.
	SendTo(connID string, data []byte) error
	// JoinRoom and LeaveRoom update transport-level group membership.
	JoinRoom(connID, room string)
	LeaveRoom(connID, room string)
	// Terminate forcefully closes a connection.
	Terminate(connID string)
}

// MessageStore is the durable message surface the gateway depends on.
type MessageStore interface {
	Append(ctx context.Context, msg *chat.Message) error
	Get(ctx context.Context, id string) (*chat.Message, error)
	UpdateReactions(ctx context.Context, id string, reactions []chat.Reaction) error
}

// Limiter throttles intents per identifier. *ratelimit.Limiter satisfies it.
type Limiter interface {
	Allow(ctx context.Context, identifier string, rule ratelimit.Rule) (bool, error)
}

// EventPublisher mirrors delivered events onto the messaging firehose for
// external consumers. All publishing is best effort.
type EventPublisher interface {
	PublishRoomMessage(room string, data []byte) error
	PublishPrivateMessage(username string, data []byte) error
	PublishPresence(data []byte) error
	PublishReaction(data []byte) error
}

// Gateway wires the chat intents to presence, typing, and storage. All
// handlers match the dispatcher's MessageHandler signature so they can be
// registered directly.
type Gateway struct {
	sink     EventSink
	presence *presence.Manager
	typing   *presence.Typing
	messages MessageStore
	limiter  Limiter            // optional, nil disables throttling
	events   EventPublisher     // optional, nil disables the firehose
	filter   *moderation.Filter // optional, nil disables content screening
}

// New creates a Gateway with the required collaborators. Optional ones are
// attached with SetLimiter and SetEvents.
func New(sink EventSink, pres *presence.Manager, typing *presence.Typing, messages MessageStore) *Gateway {
	return &Gateway{
		sink:     sink,
		presence: pres,
		typing:   typing,
		messages: messages,
	}
}

// SetLimiter attaches a rate limiter. Passing nil disables throttling.
func (g *Gateway) SetLimiter(l Limiter) { g.limiter = l }

// SetEvents attaches an event firehose publisher. Passing nil disables it.
func (g *Gateway) SetEvents(p EventPublisher) { g.events = p }

// SetFilter attaches a content filter. Passing nil disables screening.
func (g *Gateway) SetFilter(f *moderation.Filter) { g.filter = f }

// screen runs the content filter against text. When the text is blocked it
// notifies the sender with a system notice and returns true.
func (g *Gateway) screen(connID, text string) bool {
	if g.filter == nil {
		return false
	}
	res := g.filter.Check(text)
	if !res.Blocked {
		return false
	}
	log.Printf("[gateway] message blocked conn=%s reason=%s term=%s", connID, res.Reason, res.Term)
	metrics.MessagesTotal.WithLabelValues("blocked").Inc()
	g.send(connID, protocol.TypeSystemMessage, protocol.SystemMessageMsg{
		Message: "Your message was not delivered: it violates the community guidelines.",
	})
	return true
}

// send marshals a server message and delivers it to a single connection.
func (g *Gateway) send(connID, msgType string, payload interface{}) {
	data, err := protocol.NewServerMessage(msgType, payload)
	if err != nil {
		log.Printf("[gateway] marshal %s: %v", msgType, err)
		return
	}
	if err := g.sink.SendTo(connID, data); err != nil {
		log.Printf("[gateway] send %s conn=%s: %v", msgType, connID, err)
	}
}

// broadcast marshals a server message and publishes it to a scope.
func (g *Gateway) broadcast(scope, msgType string, payload interface{}) []byte {
	data, err := protocol.NewServerMessage(msgType, payload)
	if err != nil {
		log.Printf("[gateway] marshal %s: %v", msgType, err)
		return nil
	}
	g.sink.Publish(scope, data)
	return data
}

// broadcastUserList publishes the full active-user snapshot globally.
func (g *Gateway) broadcastUserList() {
	active := g.presence.Active()
	users := make([]protocol.UserEntry, 0, len(active))
	for _, e := range active {
		users = append(users, protocol.UserEntry{
			Username: e.Username,
			ID:       e.ConnectionID,
			Online:   true,
		})
	}
	g.broadcast(chat.RoomGlobal, protocol.TypeUserList, protocol.UserListMsg{Users: users})
}

// broadcastTyping publishes the de-duplicated typing snapshot globally.
func (g *Gateway) broadcastTyping() {
	snap := g.typing.Snapshot()
	users := make([]protocol.TypingUser, 0, len(snap))
	for _, e := range snap {
		users = append(users, protocol.TypingUser{
			Username: e.Username,
			ID:       e.ConnectionID,
		})
	}
	metrics.TypingUsers.Set(float64(len(users)))
	g.broadcast(chat.RoomGlobal, protocol.TypeTypingUsers, protocol.TypingUsersMsg{Users: users})
}
