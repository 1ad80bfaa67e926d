package consult

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"AgriHub/entity"
	"AgriHub/internal/lib/sl"
)

// Repository is the conversation store persistence contract. Claim and
// Rate are conditional writes: the store performs the check and the set in
// one operation, so concurrent callers cannot interleave between them.
type Repository interface {
	CreateConversation(conv *entity.Conversation) error
	GetConversation(id string) (*entity.Conversation, error)
	ListOpenConversations() ([]entity.Conversation, error)
	ListConversationsFor(userID string) ([]entity.Conversation, error)
	ClaimConversation(id, expertID string) (*entity.Conversation, error)
	AppendConversationMessage(id string, msg entity.Message) error
	MarkMessagesRead(id, userID string, readAt time.Time) error
	TransitionConversationStatus(id string, from, to entity.ConversationStatus) error
	RateConversation(id string, rating entity.Rating) error
}

// Hub is the slice of the websocket hub the service needs: lazy
// conversation-room membership and room fan-out.
type Hub interface {
	JoinConversation(userID, conversationID string)
	BroadcastConversation(conversationID, exceptUserID, event string, payload any)
}

// Deliverer routes events to users, online directly or via the
// best-effort offline notification fallback.
type Deliverer interface {
	Deliver(targetUserIDs []string, event string, payload any, fallback *entity.NotificationPayload)
}

// Service owns the conversation lifecycle: create, claim, message append,
// read markers, status transitions and rating.
type Service struct {
	repository Repository
	hub        Hub
	deliverer  Deliverer
	log        *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	return &Service{
		log: logger.With(sl.Module("consult-service")),
	}
}

func (s *Service) SetRepository(repository Repository) {
	s.repository = repository
}

func (s *Service) SetHub(hub Hub) {
	s.hub = hub
}

func (s *Service) SetDeliverer(deliverer Deliverer) {
	s.deliverer = deliverer
}

// Create opens a new conversation with the farmer as its only participant.
func (s *Service) Create(farmerID, subject, category string, priority entity.Priority) (*entity.Conversation, error) {
	if priority == "" {
		priority = entity.PriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("unknown priority %q", priority)
	}

	conv := entity.NewConversation(farmerID, subject, category, priority)
	if err := s.repository.CreateConversation(conv); err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.JoinConversation(farmerID, conv.ID)
	}

	s.log.With(
		slog.String("conversation", conv.ID),
		slog.String("farmer", farmerID),
		slog.String("category", category),
	).Info("conversation created")

	return conv, nil
}

// Get returns a conversation to one of its participants. Admins may read
// any conversation.
func (s *Service) Get(id string, user entity.UserAuth) (*entity.Conversation, error) {
	conv, err := s.repository.GetConversation(id)
	if err != nil {
		return nil, err
	}
	if user.Role != entity.AdminRole && conv.Participant(user.UserID) == nil {
		return nil, entity.ErrNotParticipant
	}
	return conv, nil
}

// ListOpen returns the claimable pool of open, unassigned conversations.
// Which one an expert picks is deliberately left to the caller; the store
// defines no assignment fairness policy.
func (s *Service) ListOpen() ([]entity.Conversation, error) {
	return s.repository.ListOpenConversations()
}

// ListFor returns the conversations the user participates in.
func (s *Service) ListFor(userID string) ([]entity.Conversation, error) {
	return s.repository.ListConversationsFor(userID)
}

// Claim assigns the expert to an open, unassigned conversation. Under
// concurrent claims exactly one caller wins; the rest receive
// entity.ErrAlreadyAssigned and must re-query the open pool.
func (s *Service) Claim(id string, expert entity.UserAuth) (*entity.Conversation, error) {
	if expert.Role != entity.ExpertRole {
		return nil, entity.ErrUnauthorized
	}

	conv, err := s.repository.ClaimConversation(id, expert.UserID)
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.JoinConversation(expert.UserID, conv.ID)
	}
	s.notifyStatus(conv, expert.UserID, &entity.NotificationPayload{
		Type:  entity.EventConversationClaimed,
		Title: "Expert joined",
		Body:  fmt.Sprintf("%s took your consultation %q", expert.Name, conv.Subject),
		Data:  map[string]string{"conversationId": conv.ID},
	})

	s.log.With(
		slog.String("conversation", conv.ID),
		slog.String("expert", expert.UserID),
	).Info("conversation claimed")

	return conv, nil
}

// AppendMessage appends a message from an active participant. An expert
// message on a still-open conversation moves it to in_progress as a side
// effect. Message timestamps are non-decreasing in append order.
func (s *Service) AppendMessage(id string, sender entity.UserAuth, content string, msgType entity.MessageType, attachments []entity.Attachment) (*entity.Message, error) {
	if !msgType.Valid() {
		return nil, fmt.Errorf("unknown message type %q", msgType)
	}

	conv, err := s.repository.GetConversation(id)
	if err != nil {
		return nil, err
	}
	if conv.Participant(sender.UserID) == nil {
		return nil, entity.ErrNotParticipant
	}
	if conv.Status.Terminal() {
		return nil, entity.ErrInvalidTransition
	}

	createdAt := time.Now()
	if n := len(conv.Messages); n > 0 && conv.Messages[n-1].CreatedAt.After(createdAt) {
		createdAt = conv.Messages[n-1].CreatedAt
	}
	msg := entity.Message{
		ID:          uuid.NewString(),
		Sender:      sender.UserID,
		Content:     content,
		Type:        msgType,
		Attachments: attachments,
		CreatedAt:   createdAt,
	}

	if err := s.repository.AppendConversationMessage(id, msg); err != nil {
		return nil, err
	}

	if sender.Role == entity.ExpertRole && conv.Status == entity.StatusOpen {
		if err := s.repository.TransitionConversationStatus(id, entity.StatusOpen, entity.StatusInProgress); err != nil {
			// Someone else already moved it along; the message itself landed.
			s.log.With(slog.String("conversation", id)).Debug("auto transition skipped", sl.Err(err))
		}
	}

	if s.hub != nil {
		s.hub.JoinConversation(sender.UserID, id)
	}
	if s.deliverer != nil {
		targets := otherParticipants(conv, sender.UserID)
		s.deliverer.Deliver(targets, entity.EventNewMessage, entity.NewMessagePayload{
			ConversationID: id,
			Message:        msg,
		}, &entity.NotificationPayload{
			Type:  entity.EventNewMessage,
			Title: "New message",
			Body:  content,
			Data:  map[string]string{"conversationId": id, "messageId": msg.ID},
		})
	}

	return &msg, nil
}

// MarkRead adds a read marker to every message the user has not read yet.
// Idempotent: a second invocation marks nothing further.
func (s *Service) MarkRead(id string, user entity.UserAuth) error {
	conv, err := s.repository.GetConversation(id)
	if err != nil {
		return err
	}
	if conv.Participant(user.UserID) == nil {
		return entity.ErrNotParticipant
	}

	if err := s.repository.MarkMessagesRead(id, user.UserID, time.Now()); err != nil {
		return err
	}

	if s.hub != nil {
		s.hub.JoinConversation(user.UserID, id)
	}
	if s.deliverer != nil {
		s.deliverer.Deliver(otherParticipants(conv, user.UserID), entity.EventMessagesRead, entity.MessagesReadPayload{
			ConversationID: id,
			UserID:         user.UserID,
		}, nil)
	}

	return nil
}

// UpdateStatus applies a legal lifecycle transition requested by an active
// participant. Terminal states reject everything.
func (s *Service) UpdateStatus(id string, user entity.UserAuth, newStatus entity.ConversationStatus) error {
	if !newStatus.Valid() {
		return fmt.Errorf("unknown status %q", newStatus)
	}

	conv, err := s.repository.GetConversation(id)
	if err != nil {
		return err
	}
	if conv.Participant(user.UserID) == nil {
		return entity.ErrNotParticipant
	}
	if !conv.Status.CanTransition(newStatus) {
		return entity.ErrInvalidTransition
	}

	if err := s.repository.TransitionConversationStatus(id, conv.Status, newStatus); err != nil {
		return err
	}

	conv.Status = newStatus
	s.notifyStatus(conv, user.UserID, nil)

	s.log.With(
		slog.String("conversation", id),
		slog.String("status", string(newStatus)),
	).Info("conversation status updated")

	return nil
}

// Rate records the farmer's one-shot score and forces the conversation
// closed. Only the farmer participant may rate, and only once.
func (s *Service) Rate(id string, user entity.UserAuth, score int, feedback string) error {
	if score < 1 || score > 5 {
		return fmt.Errorf("score must be between 1 and 5, got %d", score)
	}

	conv, err := s.repository.GetConversation(id)
	if err != nil {
		return err
	}
	p := conv.Participant(user.UserID)
	if p == nil || p.Role != entity.FarmerRole {
		return entity.ErrNotParticipant
	}

	rating := entity.Rating{
		Score:    score,
		Feedback: feedback,
		RatedBy:  user.UserID,
		RatedAt:  time.Now(),
	}
	if err := s.repository.RateConversation(id, rating); err != nil {
		return err
	}

	conv.Status = entity.StatusClosed
	conv.Rating = &rating
	s.notifyStatus(conv, user.UserID, nil)

	return nil
}

// Typing relays a typing indicator to the conversation room, excluding the
// typist's own connection. Pure topology; nothing is persisted.
func (s *Service) Typing(user entity.UserAuth, conversationID string, typing bool) error {
	if s.hub == nil {
		return nil
	}

	s.hub.JoinConversation(user.UserID, conversationID)

	event := entity.EventUserStoppedTyping
	if typing {
		event = entity.EventUserTyping
	}
	s.hub.BroadcastConversation(conversationID, user.UserID, event, entity.TypingPayload{
		ConversationID: conversationID,
		UserID:         user.UserID,
		UserName:       user.Name,
	})

	return nil
}

// notifyStatus fans a status change out to the other participants.
func (s *Service) notifyStatus(conv *entity.Conversation, actorID string, fallback *entity.NotificationPayload) {
	if s.deliverer == nil {
		return
	}
	s.deliverer.Deliver(otherParticipants(conv, actorID), entity.EventStatusChanged, map[string]any{
		"conversationId": conv.ID,
		"status":         conv.Status,
		"assignedExpert": conv.AssignedExpert,
	}, fallback)
}

func otherParticipants(conv *entity.Conversation, exceptID string) []string {
	var targets []string
	for _, id := range conv.ParticipantIDs() {
		if id != exceptID {
			targets = append(targets, id)
		}
	}
	return targets
}
