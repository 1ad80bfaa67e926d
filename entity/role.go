package entity

// Role is the closed set of participant roles in the system.
type Role string

const (
	FarmerRole Role = "farmer"
	ExpertRole Role = "expert"
	AdminRole  Role = "admin"
)

// Shared broadcast topics joined in addition to the per-user and per-role
// rooms. The names are owned here; nothing else spells them out.
const (
	ExpertsRoom = "experts"
	AdminsRoom  = "admins"
)

var extraRooms = map[Role][]string{
	FarmerRole: nil,
	ExpertRole: {ExpertsRoom},
	AdminRole:  {AdminsRoom},
}

func (r Role) Valid() bool {
	switch r {
	case FarmerRole, ExpertRole, AdminRole:
		return true
	}
	return false
}

// UserRoom is the personal broadcast topic for a user.
func UserRoom(userID string) string {
	return "user:" + userID
}

// RoleRoom is the broadcast topic shared by everyone holding a role.
func RoleRoom(role Role) string {
	return "role:" + string(role)
}

// ConversationRoom is the broadcast topic for a conversation's live participants.
func ConversationRoom(conversationID string) string {
	return "conversation:" + conversationID
}

// RoomsFor returns every room a freshly authenticated connection joins.
func RoomsFor(userID string, role Role) []string {
	rooms := []string{UserRoom(userID), RoleRoom(role)}
	return append(rooms, extraRooms[role]...)
}

// TargetRooms maps an admin_notification target to broadcast topics.
// The "all" target is handled by the hub's global broadcast, not a room.
func TargetRooms(target string) []string {
	switch target {
	case "farmers":
		return []string{RoleRoom(FarmerRole)}
	case "experts":
		return []string{RoleRoom(ExpertRole)}
	case "admins":
		return []string{RoleRoom(AdminRole)}
	}
	return nil
}
