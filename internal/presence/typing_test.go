package presence

import "testing"

func TestTyping_SetAndSnapshot(t *testing.T) {
	ty := NewTyping()
	ty.Set("c1", "alice")
	ty.Set("c2", "bob")

	snap := ty.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(snap))
	}
	if snap[0].Username != "alice" || snap[1].Username != "bob" {
		t.Errorf("unexpected snapshot order: %+v", snap)
	}
}

func TestTyping_SetIsDeduplicated(t *testing.T) {
	ty := NewTyping()
	ty.Set("c1", "alice")
	ty.Set("c1", "alice")
	ty.Set("c1", "alice")

	if got := ty.Len(); got != 1 {
		t.Fatalf("expected 1 entry, got %d", got)
	}
	if snap := ty.Snapshot(); len(snap) != 1 {
		t.Fatalf("expected snapshot of 1, got %d", len(snap))
	}
}

func TestTyping_Remove(t *testing.T) {
	ty := NewTyping()
	ty.Set("c1", "alice")

	if !ty.Remove("c1") {
		t.Fatal("expected remove to report true")
	}
	if ty.Len() != 0 {
		t.Errorf("expected empty aggregator, got %d entries", ty.Len())
	}

	// Removing a non-existent entry is a no-op.
	if ty.Remove("c1") {
		t.Error("expected remove of absent entry to report false")
	}
	if ty.Remove("never-there") {
		t.Error("expected remove of unknown entry to report false")
	}
}

func TestTyping_Clear(t *testing.T) {
	ty := NewTyping()
	ty.Set("c1", "alice")
	ty.Set("c2", "bob")

	ty.Clear()
	if ty.Len() != 0 {
		t.Errorf("expected 0 entries after clear, got %d", ty.Len())
	}
}
