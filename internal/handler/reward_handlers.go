package handler

import (
	"net/http"

	"shelley-server/internal/middleware"

	"github.com/gin-gonic/gin"
)

// getRewards returns the tier list for the authenticated account,
// persisting any tiers newly crossed.
func (h *Handler) getRewards(c *gin.Context) {
	accountID, _ := middleware.AccountID(c)

	statuses, err := h.rewards.Status(c.Request.Context(), accountID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rewardsResponse{Rewards: statuses})
}
