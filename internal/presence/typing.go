package presence

import "sync"

// Typing aggregates which connections are currently typing. Entries are added
// and removed only on explicit client signals, message sends, and
// disconnects; there is no server-side timeout.
type Typing struct {
	mu     sync.RWMutex
	byConn map[string]string // connection id -> username
	order  []string
}

// NewTyping creates an empty Typing aggregator.
func NewTyping() *Typing {
	return &Typing{byConn: make(map[string]string)}
}

// Set marks a connection as typing. Setting an existing connection again
// updates the username and keeps its position.
func (t *Typing) Set(connID, username string) {
	t.mu.Lock()
	if _, ok := t.byConn[connID]; !ok {
		t.order = append(t.order, connID)
	}
	t.byConn[connID] = username
	t.mu.Unlock()
}

// Remove clears a connection's typing state. Removing an absent connection is
// a no-op; the return value reports whether an entry was actually removed.
func (t *Typing) Remove(connID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.byConn[connID]; !ok {
		return false
	}
	delete(t.byConn, connID)
	for i, id := range t.order {
		if id == connID {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// Snapshot returns the distinct-by-connection, insertion-ordered list of
// typing entries.
func (t *Typing) Snapshot() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Entry, 0, len(t.order))
	for _, id := range t.order {
		if name, ok := t.byConn[id]; ok {
			out = append(out, Entry{ConnectionID: id, Username: name})
		}
	}
	return out
}

// Len returns the number of connections currently typing.
func (t *Typing) Len() int {
	t.mu.RLock()
	n := len(t.byConn)
	t.mu.RUnlock()
	return n
}

// Clear removes all typing state.
func (t *Typing) Clear() {
	t.mu.Lock()
	t.byConn = make(map[string]string)
	t.order = nil
	t.mu.Unlock()
}
