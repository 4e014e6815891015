package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lendnova-backend/internal/shared/auth"
	"lendnova-backend/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
)

// Auth validates Bearer JWTs and stores the subject as the user id. When
// allowDevHeader is set, an X-User-Id header is accepted instead of a token.
func Auth(tokens *auth.Tokens, allowDevHeader bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader != "" {
			if !strings.HasPrefix(authHeader, "Bearer ") {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
			claims, err := tokens.Verify(token)
			if err != nil {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}
			c.Set(userIDKey, claims.Subject)
			if claims.Email != "" {
				c.Set(userEmailKey, claims.Email)
			}
			c.Next()
			return
		}

		if allowDevHeader {
			if devID := strings.TrimSpace(c.GetHeader("X-User-Id")); devID != "" {
				c.Set(userIDKey, devID)
				c.Next()
				return
			}
		}

		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// UserEmailFromContext returns the email claim when the caller used a token.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userEmailKey)
}
