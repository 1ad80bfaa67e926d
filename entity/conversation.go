package entity

import (
	"time"

	"github.com/google/uuid"
)

// ConversationStatus lifecycle: open -> in_progress -> resolved -> closed,
// with shortcuts open -> closed and in_progress -> closed. Resolved and
// closed are terminal.
type ConversationStatus string

const (
	StatusOpen       ConversationStatus = "open"
	StatusInProgress ConversationStatus = "in_progress"
	StatusResolved   ConversationStatus = "resolved"
	StatusClosed     ConversationStatus = "closed"
)

var allowedTransitions = map[ConversationStatus][]ConversationStatus{
	StatusOpen:       {StatusInProgress, StatusClosed},
	StatusInProgress: {StatusResolved, StatusClosed},
	StatusResolved:   nil,
	StatusClosed:     nil,
}

// CanTransition reports whether moving from one status to another is legal.
func (s ConversationStatus) CanTransition(to ConversationStatus) bool {
	for _, next := range allowedTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the status rejects all further transitions.
func (s ConversationStatus) Terminal() bool {
	return s == StatusResolved || s == StatusClosed
}

func (s ConversationStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageFile  MessageType = "file"
	MessageVoice MessageType = "voice"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageFile, MessageVoice:
		return true
	}
	return false
}

// Participant is a member of a conversation. LeftAt is zero while active.
type Participant struct {
	UserID   string    `json:"user_id" bson:"user_id"`
	Role     Role      `json:"role" bson:"role"`
	JoinedAt time.Time `json:"joined_at" bson:"joined_at"`
	LeftAt   time.Time `json:"left_at,omitempty" bson:"left_at,omitempty"`
}

// Attachment is an opaque reference to an uploaded file; the file itself
// lives with the CRUD layer.
type Attachment struct {
	FileID   string `json:"file_id" bson:"file_id"`
	Filename string `json:"filename" bson:"filename"`
	MIMEType string `json:"mime_type" bson:"mime_type"`
	Size     int64  `json:"size" bson:"size"`
}

// ReadMarker records that a user has read a message.
type ReadMarker struct {
	UserID string    `json:"user_id" bson:"user_id"`
	ReadAt time.Time `json:"read_at" bson:"read_at"`
}

// Message is a single conversation message. CreatedAt is non-decreasing in
// append order within one conversation.
type Message struct {
	ID          string       `json:"id" bson:"id"`
	Sender      string       `json:"sender" bson:"sender"`
	Content     string       `json:"content" bson:"content"`
	Type        MessageType  `json:"type" bson:"type"`
	Attachments []Attachment `json:"attachments,omitempty" bson:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"created_at" bson:"created_at"`
	ReadBy      []ReadMarker `json:"read_by,omitempty" bson:"read_by,omitempty"`
}

// ReadBy reports whether userID already holds a read marker on the message.
func (m *Message) IsReadBy(userID string) bool {
	for _, r := range m.ReadBy {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// Rating is the farmer's one-shot score for a finished consultation.
type Rating struct {
	Score    int       `json:"score" bson:"score"`
	Feedback string    `json:"feedback,omitempty" bson:"feedback,omitempty"`
	RatedBy  string    `json:"rated_by" bson:"rated_by"`
	RatedAt  time.Time `json:"rated_at" bson:"rated_at"`
}

// Conversation is a consultation thread between a farmer and at most one
// assigned expert.
type Conversation struct {
	ID             string             `json:"id" bson:"_id"`
	Subject        string             `json:"subject" bson:"subject"`
	Category       string             `json:"category" bson:"category"`
	Priority       Priority           `json:"priority" bson:"priority"`
	Status         ConversationStatus `json:"status" bson:"status"`
	Participants   []Participant      `json:"participants" bson:"participants"`
	Messages       []Message          `json:"messages" bson:"messages"`
	AssignedExpert string             `json:"assigned_expert,omitempty" bson:"assigned_expert"`
	Rating         *Rating            `json:"rating,omitempty" bson:"rating,omitempty"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// NewConversation builds an open conversation with the single farmer
// participant required at creation.
func NewConversation(farmerID, subject, category string, priority Priority) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:       uuid.NewString(),
		Subject:  subject,
		Category: category,
		Priority: priority,
		Status:   StatusOpen,
		Participants: []Participant{{
			UserID:   farmerID,
			Role:     FarmerRole,
			JoinedAt: now,
		}},
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Participant returns the active participant entry for userID, or nil.
func (c *Conversation) Participant(userID string) *Participant {
	for i := range c.Participants {
		p := &c.Participants[i]
		if p.UserID == userID && p.LeftAt.IsZero() {
			return p
		}
	}
	return nil
}

// Farmer returns the user id of the farmer participant.
func (c *Conversation) Farmer() string {
	for _, p := range c.Participants {
		if p.Role == FarmerRole {
			return p.UserID
		}
	}
	return ""
}

// ParticipantIDs returns the ids of all active participants.
func (c *Conversation) ParticipantIDs() []string {
	ids := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		if p.LeftAt.IsZero() {
			ids = append(ids, p.UserID)
		}
	}
	return ids
}
