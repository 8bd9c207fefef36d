package middleware

import (
	"github.com/gin-gonic/gin"

	"docuchat/internal/pkg/sessiontoken"
)

const ContextSessionIDKey = "session_id"

// Session resolves the signed session cookie into a session id and
// stores it on the request context. A missing or invalid cookie
// resolves to an empty id, which downstream treats as "new session".
func Session(secret, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := ""
		if token, err := c.Cookie(cookieName); err == nil && token != "" {
			if id, err := sessiontoken.Parse(secret, token); err == nil {
				sessionID = id
			}
		}
		c.Set(ContextSessionIDKey, sessionID)
		c.Next()
	}
}

// SessionID reads the resolved session id off the request context.
func SessionID(c *gin.Context) string {
	if v, ok := c.Get(ContextSessionIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
