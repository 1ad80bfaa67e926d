package consultation

import (
	"errors"
	"net/http"

	"AgriHub/entity"
)

type Core interface {
	CreateConversation(user entity.UserAuth, subject, category string, priority entity.Priority) (*entity.Conversation, error)
	GetConversation(id string, user entity.UserAuth) (*entity.Conversation, error)
	ListOpenConversations() ([]entity.Conversation, error)
	ListMyConversations(user entity.UserAuth) ([]entity.Conversation, error)
	ClaimConversation(id string, user entity.UserAuth) (*entity.Conversation, error)
	SendMessage(id string, user entity.UserAuth, content string, msgType entity.MessageType, attachments []entity.Attachment) (*entity.Message, error)
	MarkConversationRead(id string, user entity.UserAuth) error
	UpdateConversationStatus(id string, user entity.UserAuth, status entity.ConversationStatus) error
	RateConversation(id string, user entity.UserAuth, score int, feedback string) error
}

// httpStatus maps domain errors to response codes; everything else is a 400.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrNotParticipant), errors.Is(err, entity.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, entity.ErrAlreadyAssigned), errors.Is(err, entity.ErrAlreadyRated), errors.Is(err, entity.ErrInvalidTransition):
		return http.StatusConflict
	}
	return http.StatusBadRequest
}
