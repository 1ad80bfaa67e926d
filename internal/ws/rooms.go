package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"AgriHub/internal/lib/sl"
)

// Rooms maintains topic membership and performs fan-out. Membership is
// pure topology; permission checks happen before an event reaches a room.
type Rooms struct {
	mu     sync.RWMutex
	topics map[string]map[*Client]bool
	joined map[*Client]map[string]bool
	log    *slog.Logger
}

func NewRooms(log *slog.Logger) *Rooms {
	return &Rooms{
		topics: make(map[string]map[*Client]bool),
		joined: make(map[*Client]map[string]bool),
		log:    log.With(sl.Module("ws.rooms")),
	}
}

// Join adds a live connection to a topic. A connection already torn down
// is refused; a join that races the teardown leaves at worst a stale
// member, which the next broadcast prunes.
func (r *Rooms) Join(topic string, client *Client) {
	if client.isClosed() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.topics[topic] == nil {
		r.topics[topic] = make(map[*Client]bool)
	}
	r.topics[topic][client] = true

	if r.joined[client] == nil {
		r.joined[client] = make(map[string]bool)
	}
	r.joined[client][topic] = true
}

func (r *Rooms) Leave(topic string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveLocked(topic, client)
}

// LeaveAll removes the client from every topic it holds; called on
// disconnect.
func (r *Rooms) LeaveAll(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for topic := range r.joined[client] {
		r.leaveLocked(topic, client)
	}
	delete(r.joined, client)
}

func (r *Rooms) leaveLocked(topic string, client *Client) {
	if members := r.topics[topic]; members != nil {
		delete(members, client)
		if len(members) == 0 {
			delete(r.topics, topic)
		}
	}
	if topics := r.joined[client]; topics != nil {
		delete(topics, topic)
	}
}

// Broadcast delivers an event to every connection in the topic at the time
// of the call. Ordering across recipients is not guaranteed; per-recipient
// ordering is, since each connection receives on its own serialized channel.
func (r *Rooms) Broadcast(topic, event string, payload any) {
	r.BroadcastExcept(topic, nil, event, payload)
}

// BroadcastExcept is Broadcast minus one connection, used so a typist does
// not receive its own typing event.
func (r *Rooms) BroadcastExcept(topic string, except *Client, event string, payload any) {
	data, err := json.Marshal(Event{Type: event, Data: payload})
	if err != nil {
		r.log.Warn("marshal broadcast event", slog.String("event", event), sl.Err(err))
		return
	}

	r.mu.RLock()
	var dead []*Client
	for client := range r.topics[topic] {
		if client == except {
			continue
		}
		if client.trySend(data) {
			continue
		}
		if client.isClosed() {
			// Lost the join/disconnect race; evict the stale member.
			dead = append(dead, client)
			continue
		}
		// Slow consumer; delivery is best-effort so the event is dropped.
		r.log.Warn("send buffer full, dropping event",
			slog.String("topic", topic),
			slog.String("event", event),
			slog.String("user", client.user.UserID),
		)
	}
	r.mu.RUnlock()

	for _, client := range dead {
		r.LeaveAll(client)
	}
}

// Members returns the current size of a topic, for tests and diagnostics.
func (r *Rooms) Members(topic string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.topics[topic])
}
