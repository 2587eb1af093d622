package handler

import (
	"net/http"

	"shelley-server/internal/middleware"
	"shelley-server/internal/models"

	"github.com/gin-gonic/gin"
)

// getNarrative serves the merged beat catalogue. No auth: the game build
// fetches this on boot.
func (h *Handler) getNarrative(c *gin.Context) {
	beats, err := h.narrative.Beats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, narrativeResponse{Beats: beats})
}

// postNarrative upserts one beat override. Admin secret required.
func (h *Handler) postNarrative(c *gin.Context) {
	var req narrativeMutation
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, models.ErrBadRequest)
		return
	}
	if !h.adminAuthorized(c, req.Secret) {
		return
	}
	if req.BeatID == "" || len(req.Lines) == 0 {
		h.respondError(c, models.ErrInvalidInput)
		return
	}

	if err := h.narrative.SetOverride(c.Request.Context(), req.BeatID, req.Lines, "admin"); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, narrativeMutationResponse{OK: true, BeatID: req.BeatID})
}

// deleteNarrative removes one override, reverting the beat to default.
func (h *Handler) deleteNarrative(c *gin.Context) {
	var req narrativeMutation
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, models.ErrBadRequest)
		return
	}
	if !h.adminAuthorized(c, req.Secret) {
		return
	}
	if req.BeatID == "" {
		h.respondError(c, models.ErrInvalidInput)
		return
	}

	if err := h.narrative.RemoveOverride(c.Request.Context(), req.BeatID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, narrativeMutationResponse{OK: true, BeatID: req.BeatID, Reverted: true})
}

// adminAuthorized accepts the secret from the body or the header. An
// unconfigured secret is a deploy error, reported as 500 so it is never
// mistaken for a bad credential.
func (h *Handler) adminAuthorized(c *gin.Context, bodySecret string) bool {
	if h.config.AdminSecret == "" {
		c.AbortWithStatusJSON(http.StatusInternalServerError, APIError{Error: "Admin secret not configured"})
		return false
	}
	provided := bodySecret
	if provided == "" {
		provided = c.GetHeader(middleware.AdminSecretHeader)
	}
	if !middleware.SecretsMatch(provided, h.config.AdminSecret) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{Error: "Unauthorized"})
		return false
	}
	return true
}
