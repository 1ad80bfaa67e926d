package ws

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AgriHub/entity"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func receiveEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case data := <-c.send:
		var event Event
		require.NoError(t, json.Unmarshal(data, &event))
		return event
	default:
		t.Fatal("expected an event on the send channel")
		return Event{}
	}
}

func TestRoomsJoinAndBroadcast(t *testing.T) {
	rooms := NewRooms(discardLogger())

	a := testClient("u1", "conn-A", entity.FarmerRole)
	b := testClient("u2", "conn-B", entity.ExpertRole)

	rooms.Join("topic", a)
	rooms.Join("topic", b)
	assert.Equal(t, 2, rooms.Members("topic"))

	rooms.Broadcast("topic", "ping", map[string]string{"k": "v"})

	assert.Equal(t, "ping", receiveEvent(t, a).Type)
	assert.Equal(t, "ping", receiveEvent(t, b).Type)
}

func TestRoomsBroadcastExcept(t *testing.T) {
	rooms := NewRooms(discardLogger())

	a := testClient("u1", "conn-A", entity.FarmerRole)
	b := testClient("u2", "conn-B", entity.ExpertRole)
	rooms.Join("topic", a)
	rooms.Join("topic", b)

	rooms.BroadcastExcept("topic", a, "typing", nil)

	assert.Empty(t, a.send)
	assert.Equal(t, "typing", receiveEvent(t, b).Type)
}

func TestRoomsLeave(t *testing.T) {
	rooms := NewRooms(discardLogger())

	a := testClient("u1", "conn-A", entity.FarmerRole)
	rooms.Join("topic", a)
	rooms.Leave("topic", a)

	rooms.Broadcast("topic", "ping", nil)
	assert.Empty(t, a.send)
	assert.Equal(t, 0, rooms.Members("topic"))
}

func TestRoomsLeaveAll(t *testing.T) {
	rooms := NewRooms(discardLogger())

	a := testClient("u1", "conn-A", entity.ExpertRole)
	for _, topic := range entity.RoomsFor("u1", entity.ExpertRole) {
		rooms.Join(topic, a)
	}
	rooms.Join("conversation:c1", a)

	rooms.LeaveAll(a)

	for _, topic := range append(entity.RoomsFor("u1", entity.ExpertRole), "conversation:c1") {
		assert.Equal(t, 0, rooms.Members(topic), topic)
	}
}

func TestRoomsBroadcastToEmptyTopicIsNoop(t *testing.T) {
	rooms := NewRooms(discardLogger())
	rooms.Broadcast("nobody-here", "ping", nil)
}

func TestRoomsJoinRefusesClosedClient(t *testing.T) {
	rooms := NewRooms(discardLogger())

	a := testClient("u1", "conn-A", entity.FarmerRole)
	a.closeSend()

	rooms.Join("topic", a)
	assert.Equal(t, 0, rooms.Members("topic"))
}

// A member torn down after joining must not blow up the fan-out: the
// broadcast skips it and evicts it from the topic.
func TestRoomsBroadcastEvictsClosedMember(t *testing.T) {
	rooms := NewRooms(discardLogger())

	a := testClient("u1", "conn-A", entity.FarmerRole)
	b := testClient("u2", "conn-B", entity.ExpertRole)
	rooms.Join("topic", a)
	rooms.Join("topic", b)

	a.closeSend()

	require.NotPanics(t, func() {
		rooms.Broadcast("topic", "ping", nil)
	})
	assert.Equal(t, "ping", receiveEvent(t, b).Type)
	assert.Equal(t, 1, rooms.Members("topic"))
}

func TestRoomsSlowConsumerDropsEvent(t *testing.T) {
	rooms := NewRooms(discardLogger())

	a := testClient("u1", "conn-A", entity.FarmerRole)
	a.send = make(chan []byte) // unbuffered and never drained
	rooms.Join("topic", a)

	// Must not block.
	rooms.Broadcast("topic", "ping", nil)
}
