package ws

import "sync"

// Registry tracks which authenticated users currently have a live connection.
// A user maps to at most one connection id; a later Bind for the same user
// overwrites the earlier one (last connection wins).
type Registry struct {
	mu    sync.RWMutex
	conns map[string]string // userID -> connectionID
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]string),
	}
}

// Bind registers or overwrites the binding for userID.
func (r *Registry) Bind(userID, connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[userID] = connectionID
}

// Unbind removes the binding whose value equals connectionID and reports
// whether a binding was actually removed. A stale connection id (already
// superseded by a reconnect) is a no-op.
func (r *Registry) Unbind(connectionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for userID, connID := range r.conns {
		if connID == connectionID {
			delete(r.conns, userID)
			return true
		}
	}
	return false
}

// Lookup returns the connection id bound to userID, if any.
func (r *Registry) Lookup(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok := r.conns[userID]
	return connID, ok
}

// OnlineUserIDs returns the ids of all currently bound users.
func (r *Registry) OnlineUserIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.conns))
	for userID := range r.conns {
		ids = append(ids, userID)
	}
	return ids
}
