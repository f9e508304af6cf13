package protocol

import (
	"encoding/json"
	"testing"

	"github.com/commune/chat-app/internal/chat"
)

// ---------------------------------------------------------------------------
// Test: Parsing a valid join message
// ---------------------------------------------------------------------------

func TestParseClientMessage_Join(t *testing.T) {
	input := []byte(`{"type":"join","username":"alice"}`)

	msgType, msg, err := ParseClientMessage(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msgType != TypeJoin {
		t.Fatalf("expected type %q, got %q", TypeJoin, msgType)
	}

	jm, ok := msg.(JoinMsg)
	if !ok {
		t.Fatalf("expected JoinMsg, got %T", msg)
	}
	if jm.Username != "alice" {
		t.Errorf("expected username %q, got %q", "alice", jm.Username)
	}
}

// ---------------------------------------------------------------------------
// Test: Parsing a valid send_message message
// ---------------------------------------------------------------------------

func TestParseClientMessage_SendMessage(t *testing.T) {
	input := []byte(`{"type":"send_message","message":"Hello!","room":"gophers","image":"blob-1"}`)

	msgType, msg, err := ParseClientMessage(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msgType != TypeSendMessage {
		t.Fatalf("expected type %q, got %q", TypeSendMessage, msgType)
	}

	sm, ok := msg.(SendMessageMsg)
	if !ok {
		t.Fatalf("expected SendMessageMsg, got %T", msg)
	}
	if sm.Message != "Hello!" {
		t.Errorf("expected message %q, got %q", "Hello!", sm.Message)
	}
	if sm.Room != "gophers" {
		t.Errorf("expected room %q, got %q", "gophers", sm.Room)
	}
	if sm.Image != "blob-1" {
		t.Errorf("expected image %q, got %q", "blob-1", sm.Image)
	}
}

// ---------------------------------------------------------------------------
// Test: Parsing a private_message uses the canonical "to" field
// ---------------------------------------------------------------------------

func TestParseClientMessage_PrivateMessage(t *testing.T) {
	input := []byte(`{"type":"private_message","to":"bob","message":"psst"}`)

	_, msg, err := ParseClientMessage(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pm, ok := msg.(PrivateMessageMsg)
	if !ok {
		t.Fatalf("expected PrivateMessageMsg, got %T", msg)
	}
	if pm.To != "bob" || pm.Message != "psst" {
		t.Errorf("unexpected payload: %+v", pm)
	}
}

// ---------------------------------------------------------------------------
// Test: Parsing a react_message message
// ---------------------------------------------------------------------------

func TestParseClientMessage_ReactMessage(t *testing.T) {
	input := []byte(`{"type":"react_message","message_id":"uuid-1","reaction":"👍","username":"alice"}`)

	_, msg, err := ParseClientMessage(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rm, ok := msg.(ReactMessageMsg)
	if !ok {
		t.Fatalf("expected ReactMessageMsg, got %T", msg)
	}
	if rm.MessageID != "uuid-1" || rm.Reaction != "👍" || rm.Username != "alice" {
		t.Errorf("unexpected payload: %+v", rm)
	}
}

// ---------------------------------------------------------------------------
// Test: Building a receive_message server message
// ---------------------------------------------------------------------------

func TestNewServerMessage_ReceiveMessage(t *testing.T) {
	payload := ReceiveMessageMsg{
		ID:        "uuid-456",
		Sender:    "alice",
		SenderID:  "conn-1",
		Message:   "hi there",
		Room:      "global",
		Reactions: []chat.Reaction{},
		Ts:        1700000000,
	}

	data, err := NewServerMessage(TypeReceiveMessage, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Decode back and verify structure.
	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("failed to unmarshal result: %v", err)
	}

	if result["type"] != TypeReceiveMessage {
		t.Errorf("expected type %q, got %v", TypeReceiveMessage, result["type"])
	}
	if result["id"] != "uuid-456" {
		t.Errorf("expected id %q, got %v", "uuid-456", result["id"])
	}
	if result["sender"] != "alice" {
		t.Errorf("expected sender %q, got %v", "alice", result["sender"])
	}

	reactions, ok := result["reactions"].([]interface{})
	if !ok {
		t.Fatalf("expected reactions to be an array, got %T", result["reactions"])
	}
	if len(reactions) != 0 {
		t.Errorf("expected empty reactions, got %v", reactions)
	}
}

// ---------------------------------------------------------------------------
// Test: Parsing an unknown message type returns an error
// ---------------------------------------------------------------------------

func TestParseClientMessage_UnknownType(t *testing.T) {
	input := []byte(`{"type":"unknown_type","data":"something"}`)

	msgType, msg, err := ParseClientMessage(input)
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
	if msgType != "unknown_type" {
		t.Errorf("expected type to be returned even on error, got %q", msgType)
	}
	if msg != nil {
		t.Errorf("expected nil msg for unknown type, got %v", msg)
	}
}

// ---------------------------------------------------------------------------
// Test: Parsing a message without a type field returns an error
// ---------------------------------------------------------------------------

func TestParseClientMessage_MissingType(t *testing.T) {
	input := []byte(`{"username":"alice"}`)

	if _, _, err := ParseClientMessage(input); err == nil {
		t.Fatal("expected error for missing type field")
	}
}

// ---------------------------------------------------------------------------
// Test: Parsing invalid JSON returns an error
// ---------------------------------------------------------------------------

func TestParseClientMessage_InvalidJSON(t *testing.T) {
	input := []byte(`{"type":"join","username":`)

	if _, _, err := ParseClientMessage(input); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

// ---------------------------------------------------------------------------
// Test: NewServerMessage overrides a conflicting type field
// ---------------------------------------------------------------------------

func TestNewServerMessage_TypeInjection(t *testing.T) {
	data, err := NewServerMessage(TypePong, PongMsg{Type: "wrong"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("failed to unmarshal result: %v", err)
	}
	if result["type"] != TypePong {
		t.Errorf("expected injected type %q, got %v", TypePong, result["type"])
	}
}
