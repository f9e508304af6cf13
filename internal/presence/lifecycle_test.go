package presence

import (
	"context"
	"errors"
	"testing"
)

// fakeUserStore records lifecycle calls for assertions.
type fakeUserStore struct {
	upserts   []string // "username/connID"
	cleared   []string
	upsertErr error
}

func (f *fakeUserStore) Upsert(_ context.Context, username, connID string) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, username+"/"+connID)
	return nil
}

func (f *fakeUserStore) ClearConnection(_ context.Context, connID string) error {
	f.cleared = append(f.cleared, connID)
	return nil
}

func TestManager_JoinRegistersPresence(t *testing.T) {
	users := &fakeUserStore{}
	m := NewManager(users)
	ctx := context.Background()

	e, err := m.Join(ctx, "alice", "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Username != "alice" || e.ConnectionID != "c1" {
		t.Fatalf("unexpected entry: %+v", e)
	}

	if len(users.upserts) != 1 || users.upserts[0] != "alice/c1" {
		t.Errorf("expected one upsert alice/c1, got %v", users.upserts)
	}
	if got, ok := m.Lookup("c1"); !ok || got.Username != "alice" {
		t.Errorf("expected presence entry for c1, got ok=%v entry=%+v", ok, got)
	}
}

func TestManager_JoinStoreFailureLeavesNoPresence(t *testing.T) {
	users := &fakeUserStore{upsertErr: errors.New("db down")}
	m := NewManager(users)

	if _, err := m.Join(context.Background(), "alice", "c1"); err == nil {
		t.Fatal("expected error from failing store")
	}
	if _, ok := m.Lookup("c1"); ok {
		t.Error("expected no presence entry after failed upsert")
	}
}

func TestManager_LeaveClearsDurableRecord(t *testing.T) {
	users := &fakeUserStore{}
	m := NewManager(users)
	ctx := context.Background()

	m.Join(ctx, "alice", "c1")

	e, ok, err := m.Leave(ctx, "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || e.Username != "alice" {
		t.Fatalf("expected prior identity alice, got ok=%v entry=%+v", ok, e)
	}
	if len(users.cleared) != 1 || users.cleared[0] != "c1" {
		t.Errorf("expected ClearConnection(c1), got %v", users.cleared)
	}
	if _, stillHere := m.Lookup("c1"); stillHere {
		t.Error("expected presence entry removed after leave")
	}
}

func TestManager_LeaveUnknownConnectionIsNoOp(t *testing.T) {
	users := &fakeUserStore{}
	m := NewManager(users)

	_, ok, err := m.Leave(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected ok=false for unknown connection")
	}
	if len(users.cleared) != 0 {
		t.Errorf("expected no durable writes, got %v", users.cleared)
	}
}

func TestManager_Reset(t *testing.T) {
	m := NewManager(&fakeUserStore{})
	m.Join(context.Background(), "alice", "c1")

	m.Reset()
	if len(m.Active()) != 0 {
		t.Error("expected no active entries after reset")
	}
}
