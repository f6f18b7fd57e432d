package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ripple/chat-server/utils"
)

// ContextUserID is the gin context key carrying the authenticated user's id.
const ContextUserID = "userID"

// Auth validates the session token and stores the caller's user id in the
// request context. The token is read from the session cookie, the
// Authorization header, or a query parameter (WebSocket handshakes cannot set
// headers from the browser).
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Unauthorized - No Token Provided",
			})
			return
		}

		userID, err := utils.ParseToken(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Unauthorized - Invalid Token",
			})
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	// Session cookie is the normal path for the browser client
	if cookie, err := c.Cookie(utils.AuthCookieName); err == nil && cookie != "" {
		return cookie
	}

	// Authorization header for API clients
	bearerToken := c.GetHeader("Authorization")
	if strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimPrefix(bearerToken, "Bearer ")
	}

	// Query parameter for WebSocket connections
	return c.Query("token")
}
