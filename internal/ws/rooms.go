package ws

import "sync"

// ScopeGlobal is the broadcast scope that addresses every live connection.
// Any other scope addresses only the connections that joined that room.
const ScopeGlobal = "global"

// RoomManager tracks transport-level group membership: which connections have
// joined which rooms. Membership is independent of any message's stored room
// field; it only determines broadcast fan-out.
type RoomManager struct {
	mu     sync.RWMutex
	byRoom map[string]map[string]struct{} // room -> set of connection ids
	byConn map[string]map[string]struct{} // connection id -> set of rooms
}

// NewRoomManager creates an empty RoomManager.
func NewRoomManager() *RoomManager {
	return &RoomManager{
		byRoom: make(map[string]map[string]struct{}),
		byConn: make(map[string]map[string]struct{}),
	}
}

// Join adds a connection to a room. Joining twice is a no-op.
func (rm *RoomManager) Join(connID, room string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.byRoom[room] == nil {
		rm.byRoom[room] = make(map[string]struct{})
	}
	rm.byRoom[room][connID] = struct{}{}

	if rm.byConn[connID] == nil {
		rm.byConn[connID] = make(map[string]struct{})
	}
	rm.byConn[connID][room] = struct{}{}
}

// Leave removes a connection from a room. Leaving a room the connection never
// joined is a no-op. Empty rooms are dropped.
func (rm *RoomManager) Leave(connID, room string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.leaveLocked(connID, room)
}

func (rm *RoomManager) leaveLocked(connID, room string) {
	if members, ok := rm.byRoom[room]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(rm.byRoom, room)
		}
	}
	if rooms, ok := rm.byConn[connID]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(rm.byConn, connID)
		}
	}
}

// LeaveAll removes a connection from every room it joined. Called when the
// connection closes.
func (rm *RoomManager) LeaveAll(connID string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for room := range rm.byConn[connID] {
		rm.leaveLocked(connID, room)
	}
}

// Members returns a snapshot of the connection ids currently in a room.
func (rm *RoomManager) Members(room string) []string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	members := rm.byRoom[room]
	out := make([]string, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out
}

// Count returns the number of rooms with at least one member.
func (rm *RoomManager) Count() int {
	rm.mu.RLock()
	n := len(rm.byRoom)
	rm.mu.RUnlock()
	return n
}
