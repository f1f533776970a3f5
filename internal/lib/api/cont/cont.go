package cont

import (
	"context"

	"DonorLink/entity"
)

type contextKey string

const userKey contextKey = "auth-user"

// PutUser attaches the authenticated caller to the request context.
func PutUser(ctx context.Context, user *entity.UserAuth) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser returns the authenticated caller, or nil when the request was not
// authenticated.
func GetUser(ctx context.Context) *entity.UserAuth {
	user, ok := ctx.Value(userKey).(*entity.UserAuth)
	if !ok {
		return nil
	}
	return user
}
