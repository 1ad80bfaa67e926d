package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    ConversationStatus
		to      ConversationStatus
		allowed bool
	}{
		{StatusOpen, StatusInProgress, true},
		{StatusOpen, StatusClosed, true},
		{StatusOpen, StatusResolved, false},
		{StatusInProgress, StatusResolved, true},
		{StatusInProgress, StatusClosed, true},
		{StatusInProgress, StatusOpen, false},
		{StatusResolved, StatusClosed, false},
		{StatusResolved, StatusOpen, false},
		{StatusClosed, StatusOpen, false},
		{StatusClosed, StatusInProgress, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransition(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStates(t *testing.T) {
	assert.False(t, StatusOpen.Terminal())
	assert.False(t, StatusInProgress.Terminal())
	assert.True(t, StatusResolved.Terminal())
	assert.True(t, StatusClosed.Terminal())
}

func TestNewConversation(t *testing.T) {
	conv := NewConversation("farmer-1", "yellow leaves", "soil_health", PriorityHigh)

	assert.Equal(t, StatusOpen, conv.Status)
	assert.Empty(t, conv.AssignedExpert)
	require.Len(t, conv.Participants, 1)
	assert.Equal(t, FarmerRole, conv.Participants[0].Role)
	assert.Equal(t, "farmer-1", conv.Farmer())
	assert.NotEmpty(t, conv.ID)
}

func TestParticipantLookup(t *testing.T) {
	conv := NewConversation("farmer-1", "subject", "general", PriorityLow)

	require.NotNil(t, conv.Participant("farmer-1"))
	assert.Nil(t, conv.Participant("stranger"))

	conv.Participants = append(conv.Participants, Participant{
		UserID: "expert-1",
		Role:   ExpertRole,
	})
	assert.ElementsMatch(t, []string{"farmer-1", "expert-1"}, conv.ParticipantIDs())
}

func TestRoomsForRole(t *testing.T) {
	assert.Equal(t, []string{"user:u1", "role:farmer"}, RoomsFor("u1", FarmerRole))
	assert.Equal(t, []string{"user:u2", "role:expert", ExpertsRoom}, RoomsFor("u2", ExpertRole))
	assert.Equal(t, []string{"user:u3", "role:admin", AdminsRoom}, RoomsFor("u3", AdminRole))
}

// The shared-room topic names have a single owner; everything that
// addresses them goes through these constants.
func TestSharedRoomNames(t *testing.T) {
	assert.Equal(t, "experts", ExpertsRoom)
	assert.Equal(t, "admins", AdminsRoom)
}

func TestTargetRooms(t *testing.T) {
	assert.Equal(t, []string{"role:farmer"}, TargetRooms("farmers"))
	assert.Equal(t, []string{"role:expert"}, TargetRooms("experts"))
	assert.Equal(t, []string{"role:admin"}, TargetRooms("admins"))
	assert.Nil(t, TargetRooms("everyone"))
}

func TestMessageIsReadBy(t *testing.T) {
	msg := Message{ReadBy: []ReadMarker{{UserID: "u1"}}}
	assert.True(t, msg.IsReadBy("u1"))
	assert.False(t, msg.IsReadBy("u2"))
}
