package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookie identifies an anonymous visitor for one year.
	SessionCookie = "shelley_session"
	// AuthCookie carries the signed account JWT for 30 days.
	AuthCookie = "shelley_auth"

	// Context keys set by the middleware below.
	ContextSessionID = "sessionID"
	ContextAccountID = "accountID"
	ContextEmail     = "accountEmail"
)

// ExtractSession parses the session cookie into the request context when
// present and well formed. It never rejects: endpoints that can work
// without a session keep working.
func ExtractSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, err := c.Cookie(SessionCookie); err == nil {
			if id, err := uuid.Parse(raw); err == nil {
				c.Set(ContextSessionID, id)
			}
		}
		c.Next()
	}
}

// RequireSession aborts with 401 unless ExtractSession found a valid
// session cookie.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ContextSessionID); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session required"})
			return
		}
		c.Next()
	}
}

// SessionID returns the session id set by ExtractSession, if any.
func SessionID(c *gin.Context) (uuid.UUID, bool) {
	value, ok := c.Get(ContextSessionID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}

// SessionIDPtr is SessionID for callers that want the optional form.
func SessionIDPtr(c *gin.Context) *uuid.UUID {
	if id, ok := SessionID(c); ok {
		return &id
	}
	return nil
}
