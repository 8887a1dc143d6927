package auth

import (
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
)

// RequireUser validates Firebase ID tokens and extracts user info.
// Requests without a valid bearer token are rejected.
func RequireUser(authClient *auth.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing authorization token"})
			c.Abort()
			return
		}

		decodedToken, err := authClient.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("firebase_uid", decodedToken.UID)

		if email, ok := decodedToken.Claims["email"].(string); ok {
			c.Set("email", email)
		}

		c.Next()
	}
}

// OptionalUser sets a firebase uid in context when a valid bearer token is
// present, and otherwise lets the request through anonymously. The AI
// assistant surface serves unauthenticated sessions this way.
func OptionalUser(authClient *auth.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token != "" {
			if decodedToken, err := authClient.VerifyIDToken(c.Request.Context(), token); err == nil {
				c.Set("firebase_uid", decodedToken.UID)
			}
		}
		c.Next()
	}
}

// UserID returns the verified firebase uid for this request, or "" when the
// caller is anonymous.
func UserID(c *gin.Context) string {
	return c.GetString("firebase_uid")
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}
