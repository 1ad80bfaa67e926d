package ws

import (
	"encoding/json"
	"log/slog"

	"AgriHub/entity"
	"AgriHub/internal/lib/sl"
)

// Event represents a WebSocket event sent to clients.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ClientMessageHandler handles incoming WebSocket events. Implementations
// return domain errors; the hub converts them to per-client error events
// so one connection's failure never touches another.
type ClientMessageHandler interface {
	HandleSendMessage(user entity.UserAuth, conversationID, content string, msgType entity.MessageType, attachments []entity.Attachment) error
	HandleTyping(user entity.UserAuth, conversationID string, typing bool) error
	HandleMarkRead(user entity.UserAuth, conversationID string) error
	HandleAvailability(user entity.UserAuth, available bool) error
	HandleAdminNotification(user entity.UserAuth, notifType, message, targetRole string) error
}

// Hub owns the connection lifecycle: a single event loop registers and
// unregisters clients, wires presence and room membership, and fans out
// hub-wide broadcasts.
type Hub struct {
	registry   *Registry
	rooms      *Rooms
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	handler    ClientMessageHandler
	log        *slog.Logger
}

// NewHub creates a new Hub instance.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		registry:   NewRegistry(),
		rooms:      NewRooms(log),
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		log:        log.With(sl.Module("ws.hub")),
	}
}

// SetHandler sets the handler for incoming client events.
func (h *Hub) SetHandler(handler ClientMessageHandler) {
	h.handler = handler
}

// Registry exposes the presence registry to the delivery engine.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Rooms exposes the room router to the delivery engine.
func (h *Hub) Rooms() *Rooms {
	return h.rooms
}

// Run starts the hub's event loop. Should be called in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.attach(client)

		case client := <-h.unregister:
			h.detach(client)

		case data := <-h.broadcast:
			for client := range h.clients {
				client.trySend(data)
			}
		}
	}
}

// attach registers presence (last writer wins) and joins the connection to
// its personal room, its role room and the shared rooms for its role.
func (h *Hub) attach(client *Client) {
	h.clients[client] = true
	h.registry.Register(client)
	for _, room := range entity.RoomsFor(client.user.UserID, client.user.Role) {
		h.rooms.Join(room, client)
	}

	h.log.With(
		slog.String("user", client.user.UserID),
		slog.String("role", string(client.user.Role)),
		slog.String("connection", client.id),
	).Debug("client connected")
}

// detach tears a connection down. The presence removal is conditional on
// the connection id so a stale disconnect cannot evict a fresh reconnect.
func (h *Hub) detach(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	h.rooms.LeaveAll(client)
	evicted := h.registry.Remove(client.user.UserID, client.id)
	client.closeSend()

	h.log.With(
		slog.String("user", client.user.UserID),
		slog.String("connection", client.id),
		slog.Bool("presence_removed", evicted),
	).Debug("client disconnected")
}

// RoomBroadcast fans an event out to one topic.
func (h *Hub) RoomBroadcast(topic, event string, payload any) {
	h.rooms.Broadcast(topic, event, payload)
}

// BroadcastAll sends an event to every connected client.
func (h *Hub) BroadcastAll(event string, payload any) {
	data, err := json.Marshal(Event{Type: event, Data: payload})
	if err != nil {
		return
	}
	h.broadcast <- data
}

// JoinConversation adds the user's live connection, if any, to the
// conversation's room. Participants join lazily on their first
// conversation-scoped action.
func (h *Hub) JoinConversation(userID, conversationID string) {
	if client := h.registry.clientFor(userID); client != nil {
		h.rooms.Join(entity.ConversationRoom(conversationID), client)
	}
}

// BroadcastConversation fans an event out to the conversation room,
// excluding the originating user's connection.
func (h *Hub) BroadcastConversation(conversationID, exceptUserID, event string, payload any) {
	except := h.registry.clientFor(exceptUserID)
	h.rooms.BroadcastExcept(entity.ConversationRoom(conversationID), except, event, payload)
}

// clientEvent represents an incoming WebSocket message from a client.
type clientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type sendMessageData struct {
	ConversationID string              `json:"conversationId"`
	Content        string              `json:"content"`
	Type           entity.MessageType  `json:"type,omitempty"`
	Attachments    []entity.Attachment `json:"attachments,omitempty"`
}

type conversationData struct {
	ConversationID string `json:"conversationId"`
}

type availabilityData struct {
	Availability bool `json:"availability"`
}

type adminNotificationData struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	TargetRole string `json:"targetRole"`
}

// HandleClientMessage parses and dispatches an incoming client event.
// Handler errors are reflected back to the offending client only.
func (h *Hub) HandleClientMessage(client *Client, raw []byte) {
	if h.handler == nil {
		return
	}

	var event clientEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		h.log.Warn("failed to parse client ws message", sl.Err(err))
		return
	}

	var err error
	switch event.Type {
	case entity.EventSendMessage:
		var data sendMessageData
		if err = json.Unmarshal(event.Data, &data); err == nil {
			if data.Type == "" {
				data.Type = entity.MessageText
			}
			err = h.handler.HandleSendMessage(client.user, data.ConversationID, data.Content, data.Type, data.Attachments)
		}

	case entity.EventTypingStart, entity.EventTypingStop:
		var data conversationData
		if err = json.Unmarshal(event.Data, &data); err == nil {
			err = h.handler.HandleTyping(client.user, data.ConversationID, event.Type == entity.EventTypingStart)
		}

	case entity.EventMarkRead:
		var data conversationData
		if err = json.Unmarshal(event.Data, &data); err == nil {
			err = h.handler.HandleMarkRead(client.user, data.ConversationID)
		}

	case entity.EventUpdateAvailability:
		var data availabilityData
		if err = json.Unmarshal(event.Data, &data); err == nil {
			err = h.handler.HandleAvailability(client.user, data.Availability)
		}

	case entity.EventAdminNotification:
		if client.user.Role != entity.AdminRole {
			err = entity.ErrUnauthorized
			break
		}
		var data adminNotificationData
		if err = json.Unmarshal(event.Data, &data); err == nil {
			err = h.handler.HandleAdminNotification(client.user, data.Type, data.Message, data.TargetRole)
		}

	default:
		h.log.Warn("unknown client event", slog.String("type", event.Type))
		return
	}

	if err != nil {
		h.log.With(
			slog.String("user", client.user.UserID),
			slog.String("event", event.Type),
		).Warn("client event rejected", sl.Err(err))
		client.sendEvent(entity.EventError, map[string]string{
			"event":   event.Type,
			"message": err.Error(),
		})
	}
}
