package core

import (
	"AgriHub/entity"
)

func (c *Core) CreateConversation(user entity.UserAuth, subject, category string, priority entity.Priority) (*entity.Conversation, error) {
	return c.consult.Create(user.UserID, subject, category, priority)
}

func (c *Core) GetConversation(id string, user entity.UserAuth) (*entity.Conversation, error) {
	return c.consult.Get(id, user)
}

func (c *Core) ListOpenConversations() ([]entity.Conversation, error) {
	return c.consult.ListOpen()
}

func (c *Core) ListMyConversations(user entity.UserAuth) ([]entity.Conversation, error) {
	return c.consult.ListFor(user.UserID)
}

func (c *Core) ClaimConversation(id string, user entity.UserAuth) (*entity.Conversation, error) {
	return c.consult.Claim(id, user)
}

func (c *Core) SendMessage(id string, user entity.UserAuth, content string, msgType entity.MessageType, attachments []entity.Attachment) (*entity.Message, error) {
	return c.consult.AppendMessage(id, user, content, msgType, attachments)
}

func (c *Core) MarkConversationRead(id string, user entity.UserAuth) error {
	return c.consult.MarkRead(id, user)
}

func (c *Core) UpdateConversationStatus(id string, user entity.UserAuth, status entity.ConversationStatus) error {
	return c.consult.UpdateStatus(id, user, status)
}

func (c *Core) RateConversation(id string, user entity.UserAuth, score int, feedback string) error {
	return c.consult.Rate(id, user, score, feedback)
}
