// Package presence tracks which users are connected right now. The registry
// is the in-memory source of truth for live connections; the lifecycle
// manager keeps it synchronized with durable user records on join and leave.
// All state is process-local: presence does not survive a restart and is not
// shared across instances.
package presence

import "sync"

// Entry binds one live connection to a username.
type Entry struct {
	ConnectionID string
	Username     string
}

// Registry is a goroutine-safe, insertion-ordered map of connection id to
// username. A connection id maps to exactly one username at a time.
type Registry struct {
	mu     sync.RWMutex
	byConn map[string]Entry
	byName map[string]string // username -> most recent connection id
	order  []string          // connection ids in insertion order
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byConn: make(map[string]Entry),
		byName: make(map[string]string),
	}
}

// Add registers a connection under a username. Re-adding an existing
// connection id updates the username in place and keeps its original
// position. When two live connections claim the same username, the name
// lookup resolves to the most recent one (last-writer-wins, matching the
// durable record).
func (r *Registry) Add(connID, username string) Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.byConn[connID]
	if exists {
		if e.Username != username {
			// Drop the old name mapping if this connection owned it.
			if r.byName[e.Username] == connID {
				delete(r.byName, e.Username)
			}
		}
	} else {
		r.order = append(r.order, connID)
	}

	e = Entry{ConnectionID: connID, Username: username}
	r.byConn[connID] = e
	r.byName[username] = connID
	return e
}

// Remove deletes the entry for a connection id, returning the prior entry
// and whether it existed.
func (r *Registry) Remove(connID string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byConn[connID]
	if !ok {
		return Entry{}, false
	}
	delete(r.byConn, connID)
	if r.byName[e.Username] == connID {
		delete(r.byName, e.Username)
	}
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return e, true
}

// Lookup resolves a connection id to its entry. O(1).
func (r *Registry) Lookup(connID string) (Entry, bool) {
	r.mu.RLock()
	e, ok := r.byConn[connID]
	r.mu.RUnlock()
	return e, ok
}

// LookupUsername resolves a username to its live entry, if any.
func (r *Registry) LookupUsername(username string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connID, ok := r.byName[username]
	if !ok {
		return Entry{}, false
	}
	e, ok := r.byConn[connID]
	return e, ok
}

// Active returns all entries in insertion order.
func (r *Registry) Active() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		if e, ok := r.byConn[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	n := len(r.byConn)
	r.mu.RUnlock()
	return n
}

// Clear removes all entries. Used on shutdown and between tests.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.byConn = make(map[string]Entry)
	r.byName = make(map[string]string)
	r.order = nil
	r.mu.Unlock()
}
