package handler

import (
	"net/http"

	"shelley-server/internal/middleware"
	"shelley-server/internal/models"

	"github.com/gin-gonic/gin"
)

// postGameEvent applies one semantic progress event and returns the full
// authoritative record.
func (h *Handler) postGameEvent(c *gin.Context) {
	sessionID, _ := middleware.SessionID(c)

	var event models.GameEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		h.respondError(c, models.ErrBadRequest)
		return
	}

	record, err := h.progress.ApplyEvent(c.Request.Context(), sessionID, event)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, progressResponse{Progress: record})
}
