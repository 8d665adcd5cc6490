package requestdata

import (
	"context"

	"github.com/gin-gonic/gin"
)

type contextKey string

const (
	citizenIDKey contextKey = "citizen_id"
	userIDKey    contextKey = "user_id"
	roleKey      contextKey = "role"
)

const (
	RoleCitizen = "CITIZEN"
	RolePolice  = "POLICE"
	RoleAdmin   = "ADMIN"
)

func WithCitizenID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, citizenIDKey, id)
}

func CitizenID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(citizenIDKey).(string)
	return v, ok && v != ""
}

func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

func UserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok && v != ""
}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey, role)
}

func Role(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(roleKey).(string)
	return v, ok && v != ""
}

// SetGinContext mirrors the request-scoped identity onto the gin request
// context so services reached through c.Request.Context() see it too.
func SetGinContext(c *gin.Context, ctx context.Context) {
	c.Request = c.Request.WithContext(ctx)
}
