package entity

// Server -> client event names.
const (
	EventNewMessage          = "new_message"
	EventUserTyping          = "user_typing"
	EventUserStoppedTyping   = "user_stopped_typing"
	EventMessagesRead        = "messages_read"
	EventNotification        = "notification"
	EventSensorData          = "sensor-data"
	EventExpertAvailability  = "expert_availability_changed"
	EventConversationClaimed = "conversation_claimed"
	EventStatusChanged       = "conversation_status_changed"
	EventError               = "error"
)

// Client -> server event names.
const (
	EventSendMessage        = "send_message"
	EventTypingStart        = "typing_start"
	EventTypingStop         = "typing_stop"
	EventMarkRead           = "mark_read"
	EventUpdateAvailability = "update_availability"
	EventAdminNotification  = "admin_notification"
)

// NewMessagePayload accompanies a new_message event.
type NewMessagePayload struct {
	ConversationID string  `json:"conversationId"`
	Message        Message `json:"message"`
}

// TypingPayload accompanies user_typing / user_stopped_typing events.
type TypingPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	UserName       string `json:"userName,omitempty"`
}

// MessagesReadPayload accompanies a messages_read event.
type MessagesReadPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
}

// NotificationPayload is the best-effort fallback for offline targets.
// It is never persisted or retried.
type NotificationPayload struct {
	UserID string `json:"userId"`
	Type   string `json:"type"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Data   any    `json:"data,omitempty"`
}

// SensorDataPayload accompanies a sensor-data event.
type SensorDataPayload struct {
	SensorID string             `json:"sensorId"`
	Reading  map[string]float64 `json:"reading"`
	Alerts   []Alert            `json:"alerts"`
}

// AvailabilityPayload accompanies an expert_availability_changed event.
type AvailabilityPayload struct {
	ExpertID     string `json:"expertId"`
	ExpertName   string `json:"expertName,omitempty"`
	Availability bool   `json:"availability"`
}
