// Package handler is the HTTP surface: the JSON API consumed by the
// site, the admin narrative endpoints and the websocket bridge gateway
// the game connects to.
package handler

import (
	"errors"
	"net/http"

	"shelley-server/internal/messaging"
	"shelley-server/internal/middleware"
	"shelley-server/internal/models"
	"shelley-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.uber.org/zap"
)

// Cookie lifetimes, matched to the token lifetimes they carry.
const (
	sessionCookieMaxAge = 365 * 24 * 60 * 60
	authCookieMaxAge    = 30 * 24 * 60 * 60
)

// APIError is the standardized error response body.
type APIError struct {
	Error string `json:"error"`
}

// Config is the handler-level configuration slice.
type Config struct {
	// CookieSecure marks issued cookies Secure (on behind TLS).
	CookieSecure bool
	// AdminSecret gates narrative mutations. Empty disables them.
	AdminSecret string
	// AllowedOrigin is the only Origin accepted for bridge upgrades.
	AllowedOrigin string
	// SelfBaseURL is where the bridge gateway's progress store reports
	// to, normally this same server.
	SelfBaseURL string
}

// Handler carries the service dependencies for every route.
type Handler struct {
	sessions  service.SessionService
	progress  service.ProgressService
	rewards   service.RewardService
	auth      service.AuthService
	narrative service.NarrativeService
	telemetry messaging.TelemetryPublisher
	config    Config
	logger    *zap.Logger
	wsLogger  zerolog.Logger
}

func NewHandler(
	sessions service.SessionService,
	progress service.ProgressService,
	rewards service.RewardService,
	auth service.AuthService,
	narrative service.NarrativeService,
	telemetry messaging.TelemetryPublisher,
	config Config,
	logger *zap.Logger,
	wsLogger zerolog.Logger,
) *Handler {
	return &Handler{
		sessions:  sessions,
		progress:  progress,
		rewards:   rewards,
		auth:      auth,
		narrative: narrative,
		telemetry: telemetry,
		config:    config,
		logger:    logger.Named("Handler"),
		wsLogger:  wsLogger,
	}
}

// RegisterRoutes mounts every route onto the engine. Session and account
// extraction run for the whole API group; enforcement is per route.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.Use(middleware.ExtractSession(), middleware.ExtractAccount(h.auth, h.logger))
	{
		api.POST("/session", h.postSession)
		api.POST("/game-event", middleware.RequireSession(), h.postGameEvent)
		api.GET("/rewards", middleware.RequireAccount(), h.getRewards)
		api.POST("/auth", h.postAuth)
		api.GET("/auth", h.getAuth)
		api.GET("/narrative", h.getNarrative)
		api.POST("/narrative", h.postNarrative)
		api.DELETE("/narrative", h.deleteNarrative)
	}

	ws := router.Group("/ws")
	ws.Use(middleware.ExtractSession())
	ws.GET("/game", h.gameBridge)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// respondError maps sentinel errors onto HTTP statuses. Unknown errors
// become an opaque 500; their detail stays in the logs.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, models.ErrSessionNotFound),
		errors.Is(err, models.ErrAccountNotFound),
		errors.Is(err, models.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, models.ErrInvalidEventType),
		errors.Is(err, models.ErrInvalidBeatID),
		errors.Is(err, models.ErrInvalidBeatLine),
		errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrBadRequest):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, models.ErrEmailAlreadyExists):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, models.ErrInvalidCredentials),
		errors.Is(err, models.ErrUnauthorized),
		errors.Is(err, models.ErrTokenInvalid),
		errors.Is(err, models.ErrTokenExpired):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, models.ErrForbidden):
		status, message = http.StatusForbidden, err.Error()
	default:
		h.logger.Error("Unhandled error", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}

	c.AbortWithStatusJSON(status, APIError{Error: message})
}

func (h *Handler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.config.CookieSecure, true)
}
