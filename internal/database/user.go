package repository

import (
	"AgriHub/entity"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// GetUserByToken resolves a bearer credential through the user directory.
// The directory itself is owned elsewhere; this is a read-only collaborator
// lookup.
func (m *MongoDB) GetUserByToken(token string) (*entity.UserAuth, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(usersCollection)

	var user entity.UserAuth
	err = collection.FindOne(m.ctx, bson.D{{Key: "token", Value: token}}).Decode(&user)
	if err != nil {
		mapped := m.findError("find user", err)
		// An unknown token is an authorization failure, not a missing record.
		if errors.Is(mapped, entity.ErrNotFound) {
			return nil, entity.ErrUnauthorized
		}
		return nil, mapped
	}

	if !user.Role.Valid() {
		return nil, fmt.Errorf("directory returned unknown role %q", user.Role)
	}

	return &user, nil
}
