package cont

import (
	"CoverBot/entity"
	"context"
)

type ctxKey string

const userKey ctxKey = "user"

func PutUser(c context.Context, user *entity.UserAuth) context.Context {
	return context.WithValue(c, userKey, user)
}

// GetUser returns the authenticated caller, or nil outside the authenticated routes.
func GetUser(c context.Context) *entity.UserAuth {
	user, _ := c.Value(userKey).(*entity.UserAuth)
	return user
}
