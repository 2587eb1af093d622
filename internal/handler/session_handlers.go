package handler

import (
	"net/http"

	"shelley-server/internal/middleware"

	"github.com/gin-gonic/gin"
)

// postSession creates or resumes the anonymous session. The cookie is
// re-issued only for freshly minted sessions; an existing valid cookie
// is left alone.
func (h *Handler) postSession(c *gin.Context) {
	sessionID := middleware.SessionIDPtr(c)

	session, record, minted, err := h.sessions.Establish(c.Request.Context(), sessionID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.respondError(c, err)
		return
	}

	if minted {
		h.setCookie(c, middleware.SessionCookie, session.ID.String(), sessionCookieMaxAge)
	}

	c.JSON(http.StatusOK, sessionResponse{
		SessionID: session.ID.String(),
		Progress:  record,
	})
}
