package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/focusflow-app/focusflow/auth"
)

const userIDKey = "userID"

// RequireAuth validates the access token on every request and stores the
// authenticated user id in the gin context. The token is read from the
// Authorization header (Bearer scheme) or, as a fallback for browser
// clients and the SSE stream, from the access_token cookie.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if cookie, err := c.Cookie(accessTokenCookie); err == nil {
				token = cookie
			}
		}
		if token == "" {
			RespondUnauthorized(c, "missing access token")
			c.Abort()
			return
		}

		userID, err := auth.VerifyAccessToken(token)
		if err != nil {
			RespondUnauthorized(c, "invalid or expired access token")
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// currentUserID returns the authenticated user id set by RequireAuth.
func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
