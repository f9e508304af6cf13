package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/commune/chat-app/internal/chat"
	"github.com/commune/chat-app/internal/metrics"
	"github.com/commune/chat-app/internal/protocol"
	"github.com/commune/chat-app/internal/ratelimit"
)

// presenceEvent is the firehose payload for join/leave notifications.
type presenceEvent struct {
	Event        string `json:"event"` // "join" or "leave"
	Username     string `json:"username"`
	ConnectionID string `json:"connection_id"`
}

// HandleJoin registers a username for the connection. An invalid username or
// a failed durable registration terminates the connection; a valid join
// produces one user_joined notification and one refreshed user_list.
func (g *Gateway) HandleJoin(connID string, msg interface{}) {
	m, ok := msg.(protocol.JoinMsg)
	if !ok {
		return
	}
	ctx := context.Background()

	username, err := chat.ValidateUsername(m.Username)
	if err != nil {
		log.Printf("[gateway] join rejected conn=%s: %v", connID, err)
		g.sink.Terminate(connID)
		return
	}

	entry, err := g.presence.Join(ctx, username, connID)
	if err != nil {
		log.Printf("[gateway] join persist failed conn=%s user=%s: %v", connID, username, err)
		g.sink.Terminate(connID)
		return
	}

	g.broadcast(chat.RoomGlobal, protocol.TypeUserJoined, protocol.UserJoinedMsg{
		Username: entry.Username,
		ID:       entry.ConnectionID,
	})
	g.broadcastUserList()
	g.publishPresence("join", entry.Username, entry.ConnectionID)
}

// HandleSendMessage persists a room-scoped message and fans it out. The
// sender's typing entry is cleared after the persist attempt regardless of
// its outcome; on persistence failure the broadcast and acknowledgment are
// skipped.
func (g *Gateway) HandleSendMessage(connID string, msg interface{}) {
	m, ok := msg.(protocol.SendMessageMsg)
	if !ok {
		return
	}
	ctx := context.Background()

	sender, ok := g.presence.Lookup(connID)
	if !ok {
		log.Printf("[gateway] send_message from unjoined conn=%s", connID)
		return
	}

	if g.limiter != nil {
		allowed, _ := g.limiter.Allow(ctx, connID, ratelimit.RuleMessage)
		if !allowed {
			g.send(connID, protocol.TypeSystemMessage, protocol.SystemMessageMsg{
				Message: "You are sending messages too quickly.",
			})
			return
		}
	}

	content, err := chat.ValidateContent(m.Message)
	if err != nil {
		log.Printf("[gateway] send_message rejected conn=%s: %v", connID, err)
		return
	}
	if g.screen(connID, content) {
		return
	}

	room := m.Room
	if room == "" {
		room = chat.RoomGlobal
	}

	record := &chat.Message{
		Sender:  sender.Username,
		Content: content,
		Room:    room,
		Image:   m.Image,
	}
	persistErr := g.messages.Append(ctx, record)

	if g.typing.Remove(connID) {
		g.broadcastTyping()
	}

	if persistErr != nil {
		log.Printf("[gateway] persist message conn=%s: %v", connID, persistErr)
		return
	}

	data := g.broadcast(room, protocol.TypeReceiveMessage, protocol.ReceiveMessageMsg{
		ID:        record.ID,
		Sender:    record.Sender,
		SenderID:  connID,
		Message:   record.Content,
		Room:      record.Room,
		Image:     record.Image,
		Reactions: []chat.Reaction{},
		Ts:        record.CreatedAt.UnixMilli(),
	})
	g.send(connID, protocol.TypeMessageDelivered, protocol.MessageDeliveredMsg{
		ID: record.ID,
		Ts: record.CreatedAt.UnixMilli(),
	})

	metrics.MessagesTotal.WithLabelValues("public").Inc()
	if g.events != nil && data != nil {
		if err := g.events.PublishRoomMessage(room, data); err != nil {
			log.Printf("[gateway] firehose room=%s: %v", room, err)
		}
	}
}

// HandlePrivateMessage routes a direct message to a single online user. An
// offline recipient gets the sender a system notice and nothing is
// persisted; an online recipient produces exactly two deliveries, the
// recipient's connection and the sender's own echo.
func (g *Gateway) HandlePrivateMessage(connID string, msg interface{}) {
	m, ok := msg.(protocol.PrivateMessageMsg)
	if !ok {
		return
	}
	ctx := context.Background()

	sender, ok := g.presence.Lookup(connID)
	if !ok {
		log.Printf("[gateway] private_message from unjoined conn=%s", connID)
		return
	}
	if m.To == "" {
		return
	}

	content, err := chat.ValidateContent(m.Message)
	if err != nil {
		log.Printf("[gateway] private_message rejected conn=%s: %v", connID, err)
		return
	}
	if g.screen(connID, content) {
		return
	}

	recipient, online := g.presence.LookupUsername(m.To)
	if !online {
		g.send(connID, protocol.TypeSystemMessage, protocol.SystemMessageMsg{
			Message: fmt.Sprintf("User %s is not currently online.", m.To),
		})
		return
	}

	record := &chat.Message{
		Sender:    sender.Username,
		Content:   content,
		Room:      chat.RoomGlobal,
		IsPrivate: true,
		Recipient: recipient.Username,
	}
	if err := g.messages.Append(ctx, record); err != nil {
		log.Printf("[gateway] persist private conn=%s: %v", connID, err)
		return
	}

	payload := protocol.ServerPrivateMsg{
		ID:       record.ID,
		Sender:   sender.Username,
		SenderID: connID,
		To:       recipient.Username,
		Message:  record.Content,
		Ts:       record.CreatedAt.UnixMilli(),
	}
	data, err := protocol.NewServerMessage(protocol.TypePrivateMessage, payload)
	if err != nil {
		log.Printf("[gateway] marshal private_message: %v", err)
		return
	}
	if err := g.sink.SendTo(recipient.ConnectionID, data); err != nil {
		log.Printf("[gateway] deliver private to=%s: %v", recipient.Username, err)
	}
	if err := g.sink.SendTo(connID, data); err != nil {
		log.Printf("[gateway] echo private conn=%s: %v", connID, err)
	}

	metrics.MessagesTotal.WithLabelValues("private").Inc()
	if g.events != nil {
		if err := g.events.PublishPrivateMessage(recipient.Username, data); err != nil {
			log.Printf("[gateway] firehose private to=%s: %v", recipient.Username, err)
		}
	}
}

// HandleTyping updates the typing aggregator and re-broadcasts the full
// typing list globally. There is no server-side timeout.
func (g *Gateway) HandleTyping(connID string, msg interface{}) {
	m, ok := msg.(protocol.TypingMsg)
	if !ok {
		return
	}

	entry, ok := g.presence.Lookup(connID)
	if !ok {
		return
	}

	if m.IsTyping {
		g.typing.Set(connID, entry.Username)
	} else {
		g.typing.Remove(connID)
	}
	g.broadcastTyping()
}

// HandleJoinRoom subscribes the connection to a room's broadcast scope and
// emits a system notice to that room.
func (g *Gateway) HandleJoinRoom(connID string, msg interface{}) {
	m, ok := msg.(protocol.JoinRoomMsg)
	if !ok || m.Room == "" {
		return
	}

	g.sink.JoinRoom(connID, m.Room)
	g.broadcast(m.Room, protocol.TypeSystemMessage, protocol.SystemMessageMsg{
		Message: fmt.Sprintf("%s joined %s", g.displayName(connID), m.Room),
	})
}

// HandleLeaveRoom removes the connection from a room's broadcast scope and
// emits a system notice to that room.
func (g *Gateway) HandleLeaveRoom(connID string, msg interface{}) {
	m, ok := msg.(protocol.LeaveRoomMsg)
	if !ok || m.Room == "" {
		return
	}

	g.sink.LeaveRoom(connID, m.Room)
	g.broadcast(m.Room, protocol.TypeSystemMessage, protocol.SystemMessageMsg{
		Message: fmt.Sprintf("%s left %s", g.displayName(connID), m.Room),
	})
}

// HandleReact toggles a (username, symbol) reaction pair on a stored message
// and broadcasts the updated reactions list scoped by the message's room. An
// unknown message id is logged without client notification.
func (g *Gateway) HandleReact(connID string, msg interface{}) {
	m, ok := msg.(protocol.ReactMessageMsg)
	if !ok || m.MessageID == "" || m.Reaction == "" {
		return
	}
	ctx := context.Background()

	username := m.Username
	if username == "" {
		entry, ok := g.presence.Lookup(connID)
		if !ok {
			return
		}
		username = entry.Username
	}

	record, err := g.messages.Get(ctx, m.MessageID)
	if err != nil {
		log.Printf("[gateway] react id=%s: %v", m.MessageID, err)
		return
	}

	record.ToggleReaction(username, m.Reaction)
	if err := g.messages.UpdateReactions(ctx, record.ID, record.Reactions); err != nil {
		log.Printf("[gateway] persist reactions id=%s: %v", record.ID, err)
		return
	}

	data := g.broadcast(record.Room, protocol.TypeReactUpdate, protocol.ReactUpdateMsg{
		ID:        record.ID,
		Reactions: record.Reactions,
	})

	metrics.MessagesTotal.WithLabelValues("reaction").Inc()
	if g.events != nil && data != nil {
		if err := g.events.PublishReaction(data); err != nil {
			log.Printf("[gateway] firehose reaction id=%s: %v", record.ID, err)
		}
	}
}

// HandleDisconnect deregisters the connection. A connection absent from the
// presence registry produces no notifications.
func (g *Gateway) HandleDisconnect(connID string) {
	ctx := context.Background()

	if g.typing.Remove(connID) {
		g.broadcastTyping()
	}

	entry, found, err := g.presence.Leave(ctx, connID)
	if err != nil {
		log.Printf("[gateway] leave conn=%s: %v", connID, err)
	}
	if !found {
		return
	}

	g.broadcast(chat.RoomGlobal, protocol.TypeUserLeft, protocol.UserLeftMsg{
		Username: entry.Username,
		ID:       entry.ConnectionID,
	})
	g.broadcastUserList()
	g.publishPresence("leave", entry.Username, entry.ConnectionID)
}

// displayName resolves a connection to its username, falling back to the
// connection id before a join has completed.
func (g *Gateway) displayName(connID string) string {
	if entry, ok := g.presence.Lookup(connID); ok {
		return entry.Username
	}
	return connID
}

// publishPresence mirrors a join/leave event onto the firehose.
func (g *Gateway) publishPresence(event, username, connID string) {
	if g.events == nil {
		return
	}
	data, err := json.Marshal(presenceEvent{
		Event:        event,
		Username:     username,
		ConnectionID: connID,
	})
	if err != nil {
		return
	}
	if err := g.events.PublishPresence(data); err != nil {
		log.Printf("[gateway] firehose presence user=%s: %v", username, err)
	}
}
