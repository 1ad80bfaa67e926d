package ws

import (
	"sync"
	"time"

	"AgriHub/entity"
)

type registration struct {
	entry  entity.PresenceEntry
	client *Client
}

// Registry maps a user to its single most-recent live connection.
// Single-process and in-memory only; nothing else may mutate entries.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registration
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]registration),
	}
}

// Register records a connection for the user, unconditionally replacing
// any previous entry (last writer wins).
func (r *Registry) Register(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[client.user.UserID] = registration{
		entry: entity.PresenceEntry{
			UserID:       client.user.UserID,
			ConnectionID: client.id,
			Role:         client.user.Role,
			ConnectedAt:  time.Now(),
		},
		client: client,
	}
}

// Lookup returns the user's current presence entry.
func (r *Registry) Lookup(userID string) (entity.PresenceEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.entries[userID]
	return reg.entry, ok
}

// Online reports whether the user has a live connection.
func (r *Registry) Online(userID string) bool {
	_, ok := r.Lookup(userID)
	return ok
}

// Remove drops the user's entry only if connectionID still matches the
// stored one. A stale disconnect racing a fresh reconnect is a no-op.
func (r *Registry) Remove(userID, connectionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.entries[userID]
	if !ok || reg.entry.ConnectionID != connectionID {
		return false
	}
	delete(r.entries, userID)
	return true
}

func (r *Registry) clientFor(userID string) *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.entries[userID].client
}
