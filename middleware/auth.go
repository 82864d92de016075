package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const usernameKey = "username"

// TokenResolver maps an access token to the caller's username.
type TokenResolver interface {
	Authenticate(token string) (string, error)
}

func AuthMiddleware(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if header == "" || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "未授权"})
			return
		}
		username, err := resolver.Authenticate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "Invalid or expired token"})
			return
		}
		c.Set(usernameKey, username)
		c.Next()
	}
}

// Username returns the identity stored by AuthMiddleware.
func Username(c *gin.Context) string {
	return c.GetString(usernameKey)
}
