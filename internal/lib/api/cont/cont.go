package cont

import (
	"context"

	"AgriHub/entity"
)

type contextKey string

const userKey contextKey = "user"

// PutUser stashes the authenticated user on the request context.
func PutUser(ctx context.Context, user *entity.UserAuth) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser retrieves the authenticated user, or nil if absent.
func GetUser(ctx context.Context) *entity.UserAuth {
	user, ok := ctx.Value(userKey).(*entity.UserAuth)
	if !ok {
		return nil
	}
	return user
}
