package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AgriHub/entity"
)

func testClient(userID, connID string, role entity.Role) *Client {
	return &Client{
		send: make(chan []byte, 16),
		id:   connID,
		user: entity.UserAuth{UserID: userID, Name: userID, Role: role},
	}
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()

	reg.Register(testClient("u1", "conn-A", entity.FarmerRole))

	entry, ok := reg.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, "conn-A", entry.ConnectionID)
	assert.Equal(t, entity.FarmerRole, entry.Role)
	assert.True(t, reg.Online("u1"))
	assert.False(t, reg.Online("u2"))
}

func TestRegistryOverwriteIsLastWriterWins(t *testing.T) {
	reg := NewRegistry()

	reg.Register(testClient("u1", "conn-A", entity.FarmerRole))
	reg.Register(testClient("u1", "conn-B", entity.FarmerRole))

	entry, ok := reg.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, "conn-B", entry.ConnectionID)
}

// A stale disconnect for a replaced connection must not evict the fresh
// reconnect: connect(A), connect(B), disconnect(A) leaves B registered.
func TestRegistryStaleDisconnectDoesNotEvict(t *testing.T) {
	reg := NewRegistry()

	reg.Register(testClient("u1", "conn-A", entity.FarmerRole))
	reg.Register(testClient("u1", "conn-B", entity.FarmerRole))

	removed := reg.Remove("u1", "conn-A")
	assert.False(t, removed)

	entry, ok := reg.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, "conn-B", entry.ConnectionID)

	removed = reg.Remove("u1", "conn-B")
	assert.True(t, removed)
	assert.False(t, reg.Online("u1"))
}

func TestRegistryRemoveUnknownUser(t *testing.T) {
	reg := NewRegistry()
	assert.False(t, reg.Remove("ghost", "conn-X"))
}
