package middleware

import (
	"errors"
	"net/http"
	"strings"

	"shelley-server/internal/models"
	"shelley-server/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ExtractAccount verifies the auth cookie (or an Authorization bearer
// token, for non-browser clients) and puts the account identity into the
// request context. An absent or invalid token just leaves the request
// anonymous.
func ExtractAccount(auth service.AuthService, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("AuthMiddleware")
	return func(c *gin.Context) {
		token, err := c.Cookie(AuthCookie)
		if err != nil || token == "" {
			token = bearerToken(c)
		}
		if token == "" {
			c.Next()
			return
		}

		claims, err := auth.VerifyToken(token)
		if err != nil {
			if !errors.Is(err, models.ErrTokenExpired) {
				log.Debug("Auth cookie rejected", zap.Error(err))
			}
			c.Next()
			return
		}

		c.Set(ContextAccountID, claims.AccountID)
		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// RequireAccount aborts with 401 unless ExtractAccount resolved an
// account.
func RequireAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ContextAccountID); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account required"})
			return
		}
		c.Next()
	}
}

// AccountID returns the authenticated account id, if any.
func AccountID(c *gin.Context) (int64, bool) {
	value, ok := c.Get(ContextAccountID)
	if !ok {
		return 0, false
	}
	id, ok := value.(int64)
	return id, ok
}
