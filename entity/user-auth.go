package entity

import (
	"CoverBot/internal/lib/validate"
	"net/http"
)

// InternalUser is the identity of the configured operator key.
const InternalUser = "internal"

type UserAuth struct {
	Username string `json:"username" bson:"username" validate:"required"`
	Name     string `json:"name" bson:"name" validate:"omitempty"`
	Email    string `json:"email" bson:"email" validate:"omitempty"`
	Token    string `json:"token" bson:"token" validate:"required,min=1"`
}

func (u *UserAuth) Bind(_ *http.Request) error {
	return validate.Struct(u)
}

// KeyRequest asks for an api key to be issued to an operator.
type KeyRequest struct {
	Username string `json:"username" validate:"required,min=3"`
}

func (k *KeyRequest) Bind(_ *http.Request) error {
	return validate.Struct(k)
}
