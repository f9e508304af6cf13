package chat

import (
	"strings"
	"testing"
)

func TestValidateUsername_Trimmed(t *testing.T) {
	got, err := ValidateUsername("  alice  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "alice" {
		t.Errorf("expected %q, got %q", "alice", got)
	}
}

func TestValidateUsername_TooShort(t *testing.T) {
	for _, name := range []string{"", "a", "ab", "  ab  "} {
		if _, err := ValidateUsername(name); err == nil {
			t.Errorf("expected error for username %q", name)
		}
	}
}

func TestValidateUsername_TooLong(t *testing.T) {
	name := strings.Repeat("x", MaxUsernameChars+1)
	if _, err := ValidateUsername(name); err == nil {
		t.Error("expected error for oversized username")
	}
	// Exactly at the limit is fine.
	if _, err := ValidateUsername(strings.Repeat("x", MaxUsernameChars)); err != nil {
		t.Errorf("unexpected error at limit: %v", err)
	}
}

func TestValidateContent_Empty(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n"} {
		if _, err := ValidateContent(text); err == nil {
			t.Errorf("expected error for content %q", text)
		}
	}
}

func TestValidateContent_TooLong(t *testing.T) {
	if _, err := ValidateContent(strings.Repeat("a", MaxContentChars+1)); err == nil {
		t.Error("expected error for oversized content")
	}
	if _, err := ValidateContent(strings.Repeat("a", MaxContentChars)); err != nil {
		t.Errorf("unexpected error at limit: %v", err)
	}
}

func TestValidateContent_InvalidUTF8(t *testing.T) {
	if _, err := ValidateContent("hello \xff world"); err == nil {
		t.Error("expected error for invalid UTF-8")
	}
}

func TestToggleReaction_AddThenRemove(t *testing.T) {
	m := &Message{Reactions: []Reaction{}}

	if added := m.ToggleReaction("alice", "👍"); !added {
		t.Fatal("first toggle should add")
	}
	if len(m.Reactions) != 1 {
		t.Fatalf("expected 1 reaction, got %d", len(m.Reactions))
	}

	if added := m.ToggleReaction("alice", "👍"); added {
		t.Fatal("second toggle should remove")
	}
	if len(m.Reactions) != 0 {
		t.Fatalf("expected 0 reactions after double toggle, got %d", len(m.Reactions))
	}
}

func TestToggleReaction_DistinctPairs(t *testing.T) {
	m := &Message{}
	m.ToggleReaction("alice", "👍")
	m.ToggleReaction("alice", "❤️")
	m.ToggleReaction("bob", "👍")

	if len(m.Reactions) != 3 {
		t.Fatalf("expected 3 reactions, got %d", len(m.Reactions))
	}

	// Removing one pair leaves the others untouched.
	m.ToggleReaction("alice", "👍")
	if len(m.Reactions) != 2 {
		t.Fatalf("expected 2 reactions, got %d", len(m.Reactions))
	}
	for _, r := range m.Reactions {
		if r.Username == "alice" && r.Symbol == "👍" {
			t.Error("removed pair still present")
		}
	}
}
