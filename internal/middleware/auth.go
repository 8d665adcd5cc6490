package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/requestdata"
	"github.com/safestreets/safestreets-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		log:         log.With("middleware", "AuthMiddleware"),
		authService: authService,
	}
}

// RequireCitizen admits only citizen tokens and stores the citizen id
// on the request context.
func (am *AuthMiddleware) RequireCitizen() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, role, ok := am.authenticate(c)
		if !ok {
			return
		}
		if role != requestdata.RoleCitizen {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "citizen access required"})
			return
		}
		ctx := requestdata.WithCitizenID(c.Request.Context(), id)
		ctx = requestdata.WithRole(ctx, role)
		requestdata.SetGinContext(c, ctx)
		c.Next()
	}
}

// RequirePolice admits police and admin tokens.
func (am *AuthMiddleware) RequirePolice() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, role, ok := am.authenticate(c)
		if !ok {
			return
		}
		if role != requestdata.RolePolice && role != requestdata.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "police access required"})
			return
		}
		ctx := requestdata.WithUserID(c.Request.Context(), id)
		ctx = requestdata.WithRole(ctx, role)
		requestdata.SetGinContext(c, ctx)
		c.Next()
	}
}

func (am *AuthMiddleware) authenticate(c *gin.Context) (string, string, bool) {
	tokenString := extractToken(c)
	if tokenString == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
		return "", "", false
	}
	id, role, err := am.authService.ParseToken(tokenString)
	if err != nil {
		am.log.Debug("token rejected", "error", err.Error())
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return "", "", false
	}
	return id.String(), role, true
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return c.Query("token")
}
