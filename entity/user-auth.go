package entity

import (
	"AgriHub/internal/lib/validate"
	"net/http"
)

// UserAuth is the identity the external directory resolves for a bearer
// credential. The core never issues or refreshes credentials.
type UserAuth struct {
	UserID string `json:"user_id" bson:"user_id" validate:"required"`
	Name   string `json:"name" bson:"name" validate:"omitempty"`
	Role   Role   `json:"role" bson:"role" validate:"required,oneof=farmer expert admin"`
	Token  string `json:"token" bson:"token" validate:"required,min=1"`
}

func (u *UserAuth) Bind(_ *http.Request) error {
	return validate.Struct(u)
}
