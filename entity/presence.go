package entity

import "time"

// PresenceEntry maps a user to its single most-recent live connection.
// A newer connection for the same user overwrites the entry; it never
// queues alongside it.
type PresenceEntry struct {
	UserID       string    `json:"user_id"`
	ConnectionID string    `json:"connection_id"`
	Role         Role      `json:"role"`
	ConnectedAt  time.Time `json:"connected_at"`
}
