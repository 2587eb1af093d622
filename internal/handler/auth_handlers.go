package handler

import (
	"net/http"

	"shelley-server/internal/middleware"
	"shelley-server/internal/models"

	"github.com/gin-gonic/gin"
)

// postAuth dispatches signup, login and logout through one endpoint,
// matching what the site's auth form calls.
func (h *Handler) postAuth(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, models.ErrBadRequest)
		return
	}

	switch req.Action {
	case "signup":
		account, token, err := h.auth.SignUp(c.Request.Context(), req.Email, req.Password, req.DisplayName, middleware.SessionIDPtr(c))
		if err != nil {
			h.respondError(c, err)
			return
		}
		h.setCookie(c, middleware.AuthCookie, token, authCookieMaxAge)
		c.JSON(http.StatusOK, authResponse{OK: true, AccountID: account.ID})

	case "login":
		account, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, middleware.SessionIDPtr(c))
		if err != nil {
			h.respondError(c, err)
			return
		}
		h.setCookie(c, middleware.AuthCookie, token, authCookieMaxAge)
		c.JSON(http.StatusOK, authResponse{OK: true, AccountID: account.ID})

	case "logout":
		h.setCookie(c, middleware.AuthCookie, "", -1)
		c.JSON(http.StatusOK, authResponse{OK: true})

	default:
		h.respondError(c, models.ErrBadRequest)
	}
}

// getAuth is the auth status probe. It never errors: an absent or bad
// cookie is just "not authenticated".
func (h *Handler) getAuth(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		c.JSON(http.StatusOK, authStatusResponse{Authenticated: false})
		return
	}
	email, _ := c.Get(middleware.ContextEmail)
	emailStr, _ := email.(string)
	c.JSON(http.StatusOK, authStatusResponse{
		Authenticated: true,
		AccountID:     accountID,
		Email:         emailStr,
	})
}
