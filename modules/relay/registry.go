package relay

import (
	"sync"

	"github.com/example/nextchat/domain/chat"
)

// Registry owns the per-connection session state. All access is serialized
// behind a mutex; handler code never touches the underlying map directly.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]chat.Session),
	}
}

// Add initializes empty state for a newly connected client. Adding an
// already-known connection id resets it to the not-joined state.
func (r *Registry) Add(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[connID] = chat.Session{ID: connID}
}

// Bind records room and username against a connection, atomically. Both
// fields are required; a bind with either missing leaves the session
// untouched and reports false.
func (r *Registry) Bind(connID, room, username string) bool {
	if room == "" || username == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[connID]
	if !ok {
		return false
	}
	sess.Room = room
	sess.Username = username
	r.sessions[connID] = sess
	return true
}

// Lookup returns the current session for a connection.
func (r *Registry) Lookup(connID string) (chat.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[connID]
	return sess, ok
}

// Remove releases a connection's entry and returns its final state, so the
// caller can emit a departure notice when the session had joined a room.
func (r *Registry) Remove(connID string) (chat.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[connID]
	if ok {
		delete(r.sessions, connID)
	}
	return sess, ok
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
