package core

import (
	"fmt"

	"AgriHub/entity"
)

// Websocket event handlers. The hub converts returned errors to a
// per-client error event; nothing here may panic or touch other
// connections.

func (c *Core) HandleSendMessage(user entity.UserAuth, conversationID, content string, msgType entity.MessageType, attachments []entity.Attachment) error {
	_, err := c.consult.AppendMessage(conversationID, user, content, msgType, attachments)
	return err
}

func (c *Core) HandleTyping(user entity.UserAuth, conversationID string, typing bool) error {
	return c.consult.Typing(user, conversationID, typing)
}

func (c *Core) HandleMarkRead(user entity.UserAuth, conversationID string) error {
	return c.consult.MarkRead(conversationID, user)
}

// HandleAvailability relays an expert's availability change to the
// audiences that act on it: farmers and admins.
func (c *Core) HandleAvailability(user entity.UserAuth, available bool) error {
	if user.Role != entity.ExpertRole {
		return entity.ErrUnauthorized
	}
	if c.cast == nil {
		return nil
	}

	payload := entity.AvailabilityPayload{
		ExpertID:     user.UserID,
		ExpertName:   user.Name,
		Availability: available,
	}
	c.cast.RoomBroadcast(entity.RoleRoom(entity.FarmerRole), entity.EventExpertAvailability, payload)
	c.cast.RoomBroadcast(entity.AdminsRoom, entity.EventExpertAvailability, payload)

	return nil
}

// HandleAdminNotification fans an admin broadcast out to the requested
// role room, or to everyone for target "all".
func (c *Core) HandleAdminNotification(user entity.UserAuth, notifType, message, targetRole string) error {
	if user.Role != entity.AdminRole {
		return entity.ErrUnauthorized
	}
	if c.cast == nil {
		return nil
	}

	payload := entity.NotificationPayload{
		Type:  notifType,
		Title: "Announcement",
		Body:  message,
	}

	if targetRole == "all" || targetRole == "" {
		c.cast.BroadcastAll(entity.EventNotification, payload)
		return nil
	}

	rooms := entity.TargetRooms(targetRole)
	if rooms == nil {
		return fmt.Errorf("unknown target role %q", targetRole)
	}
	for _, room := range rooms {
		c.cast.RoomBroadcast(room, entity.EventNotification, payload)
	}

	return nil
}
