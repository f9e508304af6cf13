package ws

import "testing"

func TestRoomManager_JoinAndMembers(t *testing.T) {
	rm := NewRoomManager()
	rm.Join("c1", "gophers")
	rm.Join("c2", "gophers")
	rm.Join("c1", "ops")

	members := rm.Members("gophers")
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if len(rm.Members("ops")) != 1 {
		t.Error("expected 1 member in ops")
	}
	if len(rm.Members("empty")) != 0 {
		t.Error("expected no members in unknown room")
	}
}

func TestRoomManager_JoinIsIdempotent(t *testing.T) {
	rm := NewRoomManager()
	rm.Join("c1", "gophers")
	rm.Join("c1", "gophers")

	if got := len(rm.Members("gophers")); got != 1 {
		t.Errorf("expected 1 member, got %d", got)
	}
}

func TestRoomManager_Leave(t *testing.T) {
	rm := NewRoomManager()
	rm.Join("c1", "gophers")
	rm.Join("c2", "gophers")

	rm.Leave("c1", "gophers")
	members := rm.Members("gophers")
	if len(members) != 1 || members[0] != "c2" {
		t.Errorf("expected only c2, got %v", members)
	}

	// Leaving a room never joined is a no-op.
	rm.Leave("c1", "gophers")
	rm.Leave("c9", "nowhere")
	if rm.Count() != 1 {
		t.Errorf("expected 1 room, got %d", rm.Count())
	}
}

func TestRoomManager_LeaveAll(t *testing.T) {
	rm := NewRoomManager()
	rm.Join("c1", "gophers")
	rm.Join("c1", "ops")
	rm.Join("c2", "gophers")

	rm.LeaveAll("c1")

	if len(rm.Members("ops")) != 0 {
		t.Error("expected ops emptied")
	}
	members := rm.Members("gophers")
	if len(members) != 1 || members[0] != "c2" {
		t.Errorf("expected only c2 in gophers, got %v", members)
	}
	if rm.Count() != 1 {
		t.Errorf("expected empty rooms dropped, count=%d", rm.Count())
	}
}
