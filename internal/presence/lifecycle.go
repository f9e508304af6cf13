package presence

import "context"

// UserStore is the durable side of session lifecycle: user records keyed by
// unique username with an optional unique connection id.
type UserStore interface {
	// Upsert creates or updates the record for username, binding it to
	// connectionID and marking it online.
	Upsert(ctx context.Context, username, connectionID string) error

	// ClearConnection unbinds connectionID from whichever record holds it and
	// marks that record offline. Clearing an unbound id is a no-op.
	ClearConnection(ctx context.Context, connectionID string) error
}

// Manager synchronizes the in-memory registry with durable user records on
// join and leave. The registry is only mutated after the durable write
// succeeds, so a presence entry always has a matching user record.
type Manager struct {
	reg   *Registry
	users UserStore
}

// NewManager creates a Manager over a fresh registry.
func NewManager(users UserStore) *Manager {
	return &Manager{reg: NewRegistry(), users: users}
}

// Join upserts the durable user record and registers the connection.
// Joining again from the same connection id is idempotent. A username already
// bound to another live connection overwrites the durable record
// (last-writer-wins) without evicting the other connection's entry.
func (m *Manager) Join(ctx context.Context, username, connID string) (Entry, error) {
	if err := m.users.Upsert(ctx, username, connID); err != nil {
		return Entry{}, err
	}
	return m.reg.Add(connID, username), nil
}

// Leave removes the connection's presence entry and clears the durable
// record's connection binding. It returns the prior entry; ok is false when
// the connection id was never registered, in which case nothing is touched.
func (m *Manager) Leave(ctx context.Context, connID string) (Entry, bool, error) {
	e, ok := m.reg.Remove(connID)
	if !ok {
		return Entry{}, false, nil
	}
	if err := m.users.ClearConnection(ctx, connID); err != nil {
		return e, true, err
	}
	return e, true, nil
}

// Lookup resolves a connection id to its entry. O(1).
func (m *Manager) Lookup(connID string) (Entry, bool) {
	return m.reg.Lookup(connID)
}

// LookupUsername resolves a username to its live entry, if any.
func (m *Manager) LookupUsername(username string) (Entry, bool) {
	return m.reg.LookupUsername(username)
}

// Active returns all live entries in connection order.
func (m *Manager) Active() []Entry {
	return m.reg.Active()
}

// Reset clears all in-memory presence state. Durable records are left as-is;
// used on shutdown and between tests.
func (m *Manager) Reset() {
	m.reg.Clear()
}
