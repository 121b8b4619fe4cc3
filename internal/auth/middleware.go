package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"meetscribe/internal/utils"
)

// userIDKey is the gin context key the middleware stores the authenticated
// user ID under.
const userIDKey = "authUserID"

// Required rejects requests without a valid bearer session token. Auth is
// checked before any resource access, so unauthenticated calls have no side
// effects.
func Required(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			utils.Error(c, http.StatusUnauthorized, "Not authenticated")
			c.Abort()
			return
		}

		userID, err := ParseToken(token, secret)
		if err != nil {
			utils.Error(c, http.StatusUnauthorized, "Not authenticated")
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user ID stored by Required.
func UserID(c *gin.Context) string {
	id, _ := c.Get(userIDKey)
	s, _ := id.(string)
	return s
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
