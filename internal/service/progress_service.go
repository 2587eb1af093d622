package service

import (
	"context"

	"shelley-server/internal/models"
	"shelley-server/internal/repository"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var gameEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "shelley_game_events_total",
		Help: "Game progress events applied, by event type.",
	},
	[]string{"type"},
)

// ProgressService reads and mutates the durable progress record.
type ProgressService interface {
	Get(ctx context.Context, sessionID uuid.UUID) (*models.Progress, error)
	// ApplyEvent validates the event type, runs the state machine against
	// the session's row and returns the authoritative post-event record.
	ApplyEvent(ctx context.Context, sessionID uuid.UUID, event models.GameEvent) (*models.Progress, error)
}

type progressServiceImpl struct {
	progress repository.ProgressRepository
	logger   *zap.Logger
}

// Compile-time check to ensure implementation satisfies the interface.
var _ ProgressService = (*progressServiceImpl)(nil)

func NewProgressService(progress repository.ProgressRepository, logger *zap.Logger) ProgressService {
	return &progressServiceImpl{
		progress: progress,
		logger:   logger.Named("ProgressService"),
	}
}

func (s *progressServiceImpl) Get(ctx context.Context, sessionID uuid.UUID) (*models.Progress, error) {
	return s.progress.GetBySessionID(ctx, sessionID)
}

func (s *progressServiceImpl) ApplyEvent(ctx context.Context, sessionID uuid.UUID, event models.GameEvent) (*models.Progress, error) {
	if !event.Type.Valid() {
		return nil, models.ErrInvalidEventType
	}

	record, err := s.progress.ApplyEvent(ctx, sessionID, event)
	if err != nil {
		return nil, err
	}

	gameEventsTotal.WithLabelValues(string(event.Type)).Inc()
	s.logger.Debug("Applied game event",
		zap.Stringer("sessionID", sessionID),
		zap.String("eventType", string(event.Type)),
		zap.String("gameName", event.GameName))
	return record, nil
}
