package repository

import (
	"context"

	"shelley-server/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ TelemetryRepository = (*pgTelemetryRepository)(nil)

type pgTelemetryRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgTelemetryRepository creates the Postgres-backed telemetry archive.
func NewPgTelemetryRepository(pool *pgxpool.Pool, logger *zap.Logger) TelemetryRepository {
	return &pgTelemetryRepository{
		pool:   pool,
		logger: logger.Named("PgTelemetryRepo"),
	}
}

const insertGameSessionQuery = `
INSERT INTO game_sessions (session_id, action, game_name, final_score, duration_seconds, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6)`

func (r *pgTelemetryRepository) Insert(ctx context.Context, record models.GameSessionRecord) error {
	_, err := r.pool.Exec(ctx, insertGameSessionQuery,
		record.SessionID,
		record.Action,
		record.GameName,
		record.FinalScore,
		record.Duration,
		record.OccurredAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert game session record",
			zap.String("action", record.Action), zap.String("gameName", record.GameName), zap.Error(err))
		return err
	}
	return nil
}
