package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"grocery-backend/internal/shared"
	"grocery-backend/internal/shared/response"
	"grocery-backend/pkg/jwt"
)

// RequireAuth validates the bearer token and stashes the claims on the
// gin context for handlers downstream.
func RequireAuth(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, http.StatusUnauthorized, "Unauthorized", "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, http.StatusUnauthorized, "Unauthorized", "invalid authorization header")
			c.Abort()
			return
		}

		claims, err := manager.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Unauthorized", err.Error())
			c.Abort()
			return
		}

		c.Set(shared.ContextUserID, claims.UserID)
		c.Set(shared.ContextEmail, claims.Email)
		c.Set(shared.ContextRole, claims.Role)
		c.Next()
	}
}
