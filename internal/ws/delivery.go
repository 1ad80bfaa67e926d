package ws

import (
	"log/slog"
	"unicode/utf8"

	"AgriHub/entity"
	"AgriHub/internal/lib/sl"
)

// previewLimit caps the body of an offline notification fallback.
const previewLimit = 120

// Deliverer routes an event to a set of target users: online targets get
// exactly one direct broadcast on their personal room; offline targets get
// a best-effort notification on the same room, which is a no-op when
// nobody listens. Nothing is persisted or retried.
type Deliverer struct {
	registry *Registry
	rooms    *Rooms
	log      *slog.Logger
}

func NewDeliverer(hub *Hub, log *slog.Logger) *Deliverer {
	return &Deliverer{
		registry: hub.Registry(),
		rooms:    hub.Rooms(),
		log:      log.With(sl.Module("ws.delivery")),
	}
}

// Deliver sends event/payload to each target. A nil fallback skips offline
// targets entirely (typing-style events have no offline representation).
func (d *Deliverer) Deliver(targetUserIDs []string, event string, payload any, fallback *entity.NotificationPayload) {
	for _, userID := range targetUserIDs {
		if d.registry.Online(userID) {
			d.rooms.Broadcast(entity.UserRoom(userID), event, payload)
			continue
		}

		if fallback == nil {
			continue
		}
		notification := *fallback
		notification.UserID = userID
		notification.Body = Preview(notification.Body)
		d.rooms.Broadcast(entity.UserRoom(userID), entity.EventNotification, notification)
	}
}

// Preview truncates a notification body to the preview limit, backing off
// to a rune boundary so a multi-byte character is never split.
func Preview(s string) string {
	if len(s) <= previewLimit {
		return s
	}
	cut := previewLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
