package ws

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AgriHub/entity"
)

func newTestHub() *Hub {
	return NewHub(discardLogger())
}

// joinPersonal registers presence and joins the personal room the way the
// hub's attach step does.
func joinPersonal(hub *Hub, c *Client) {
	hub.Registry().Register(c)
	hub.Rooms().Join(entity.UserRoom(c.user.UserID), c)
}

// One online and one offline target: the online one gets exactly one
// direct event, the offline one exactly one notification fallback, and
// nobody gets both.
func TestDeliverOnlineAndOfflineSplit(t *testing.T) {
	hub := newTestHub()
	deliverer := NewDeliverer(hub, discardLogger())

	online := testClient("farmer-1", "conn-A", entity.FarmerRole)
	joinPersonal(hub, online)

	payload := entity.NewMessagePayload{ConversationID: "c1"}
	fallback := &entity.NotificationPayload{
		Type:  entity.EventNewMessage,
		Title: "New message",
		Body:  "hello",
	}

	deliverer.Deliver([]string{"farmer-1", "expert-1"}, entity.EventNewMessage, payload, fallback)

	event := receiveEvent(t, online)
	assert.Equal(t, entity.EventNewMessage, event.Type)
	assert.Empty(t, online.send, "online target must receive exactly one event")
}

func TestDeliverOfflineFallbackCarriesTarget(t *testing.T) {
	hub := newTestHub()
	deliverer := NewDeliverer(hub, discardLogger())

	// A listener camped on the offline user's personal room observes the
	// fallback notification.
	listener := testClient("watcher", "conn-W", entity.AdminRole)
	hub.Rooms().Join(entity.UserRoom("farmer-2"), listener)

	deliverer.Deliver([]string{"farmer-2"}, entity.EventNewMessage, nil, &entity.NotificationPayload{
		Type:  entity.EventNewMessage,
		Title: "New message",
		Body:  "ping",
	})

	event := receiveEvent(t, listener)
	require.Equal(t, entity.EventNotification, event.Type)
	data, ok := event.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "farmer-2", data["userId"])
}

func TestDeliverNilFallbackSkipsOffline(t *testing.T) {
	hub := newTestHub()
	deliverer := NewDeliverer(hub, discardLogger())

	listener := testClient("watcher", "conn-W", entity.AdminRole)
	hub.Rooms().Join(entity.UserRoom("farmer-3"), listener)

	deliverer.Deliver([]string{"farmer-3"}, entity.EventUserTyping, nil, nil)

	assert.Empty(t, listener.send)
}

func TestDeliverToNobodyIsNoop(t *testing.T) {
	hub := newTestHub()
	deliverer := NewDeliverer(hub, discardLogger())

	deliverer.Deliver([]string{"ghost"}, entity.EventNewMessage, nil, &entity.NotificationPayload{Body: "x"})
}

func TestPreviewTruncation(t *testing.T) {
	short := "short body"
	assert.Equal(t, short, Preview(short))

	long := strings.Repeat("a", 500)
	got := Preview(long)
	assert.Len(t, got, previewLimit+3)
	assert.True(t, strings.HasSuffix(got, "..."))
}

// Truncation backs off to a rune boundary so a multi-byte character is
// never split into invalid UTF-8.
func TestPreviewKeepsValidUTF8(t *testing.T) {
	body := "x" + strings.Repeat("日", 100)
	got := Preview(body)

	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len(got), previewLimit+3)
}
