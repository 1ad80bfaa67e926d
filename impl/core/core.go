package core

import (
	"log/slog"
	"sync"

	"AgriHub/entity"
	"AgriHub/internal/lib/sl"
)

// Directory is the external user directory collaborator: it resolves a
// bearer credential to an identity and role. Credential issuance lives
// elsewhere.
type Directory interface {
	GetUserByToken(token string) (*entity.UserAuth, error)
}

// ConsultService is the conversation store business layer.
type ConsultService interface {
	Create(farmerID, subject, category string, priority entity.Priority) (*entity.Conversation, error)
	Get(id string, user entity.UserAuth) (*entity.Conversation, error)
	ListOpen() ([]entity.Conversation, error)
	ListFor(userID string) ([]entity.Conversation, error)
	Claim(id string, expert entity.UserAuth) (*entity.Conversation, error)
	AppendMessage(id string, sender entity.UserAuth, content string, msgType entity.MessageType, attachments []entity.Attachment) (*entity.Message, error)
	MarkRead(id string, user entity.UserAuth) error
	UpdateStatus(id string, user entity.UserAuth, newStatus entity.ConversationStatus) error
	Rate(id string, user entity.UserAuth, score int, feedback string) error
	Typing(user entity.UserAuth, conversationID string, typing bool) error
}

// SensorService is the threshold alert engine.
type SensorService interface {
	Ingest(sensorID string, values map[string]float64) ([]entity.Alert, error)
	SetThresholds(sensorID, ownerID, name string, thresholds map[string]entity.Threshold) error
	Alerts(sensorID string) ([]entity.Alert, error)
	Acknowledge(sensorID, alertID, userID string) error
}

// Broadcaster is the slice of the hub the core needs for role-targeted
// admin notifications and availability fan-out.
type Broadcaster interface {
	BroadcastAll(event string, payload any)
	RoomBroadcast(topic, event string, payload any)
}

// Core is the composition root: it satisfies every HTTP handler interface
// and the websocket client-message handler, delegating to the injected
// services.
type Core struct {
	directory Directory
	consult   ConsultService
	sensors   SensorService
	cast      Broadcaster

	mu    sync.RWMutex
	users map[string]entity.UserAuth

	log *slog.Logger
}

func New(log *slog.Logger) *Core {
	return &Core{
		users: make(map[string]entity.UserAuth),
		log:   log.With(sl.Module("core")),
	}
}

func (c *Core) SetDirectory(directory Directory) {
	c.directory = directory
}

func (c *Core) SetConsultService(consult ConsultService) {
	c.consult = consult
}

func (c *Core) SetSensorService(sensors SensorService) {
	c.sensors = sensors
}

func (c *Core) SetBroadcaster(cast Broadcaster) {
	c.cast = cast
}

// AuthenticateByToken resolves a credential through the directory, with a
// small in-process cache in front of it.
func (c *Core) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	c.mu.RLock()
	user, ok := c.users[token]
	c.mu.RUnlock()
	if ok {
		return &user, nil
	}

	if c.directory == nil {
		return nil, entity.ErrUnauthorized
	}
	resolved, err := c.directory.GetUserByToken(token)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.users[token] = *resolved
	c.mu.Unlock()

	return resolved, nil
}
