package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"shelley-server/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ NarrativeOverrideRepository = (*pgNarrativeOverrideRepository)(nil)

type pgNarrativeOverrideRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgNarrativeOverrideRepository creates the Postgres-backed override
// repository.
func NewPgNarrativeOverrideRepository(pool *pgxpool.Pool, logger *zap.Logger) NarrativeOverrideRepository {
	return &pgNarrativeOverrideRepository{
		pool:   pool,
		logger: logger.Named("PgNarrativeRepo"),
	}
}

const listOverridesQuery = `
SELECT beat_id, lines, updated_at, updated_by
FROM narrative_overrides
ORDER BY beat_id`

const upsertOverrideQuery = `
INSERT INTO narrative_overrides (beat_id, lines, updated_by, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (beat_id) DO UPDATE SET
    lines = EXCLUDED.lines,
    updated_by = EXCLUDED.updated_by,
    updated_at = EXCLUDED.updated_at`

const deleteOverrideQuery = `
DELETE FROM narrative_overrides
WHERE beat_id = $1`

func (r *pgNarrativeOverrideRepository) List(ctx context.Context) ([]models.BeatOverride, error) {
	rows, err := r.pool.Query(ctx, listOverridesQuery)
	if err != nil {
		r.logger.Error("Failed to list narrative overrides", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var overrides []models.BeatOverride
	for rows.Next() {
		var override models.BeatOverride
		var linesJSON []byte
		if err := rows.Scan(&override.BeatID, &linesJSON, &override.UpdatedAt, &override.UpdatedBy); err != nil {
			r.logger.Error("Failed to scan narrative override", zap.Error(err))
			return nil, err
		}
		if err := json.Unmarshal(linesJSON, &override.Lines); err != nil {
			return nil, fmt.Errorf("failed to unmarshal override lines for %s: %w", override.BeatID, err)
		}
		overrides = append(overrides, override)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Failed to iterate narrative overrides", zap.Error(err))
		return nil, err
	}
	return overrides, nil
}

func (r *pgNarrativeOverrideRepository) Upsert(ctx context.Context, beatID string, lines []models.BeatLine, updatedBy string) error {
	linesJSON, err := json.Marshal(lines)
	if err != nil {
		r.logger.Error("Failed to marshal override lines", zap.String("beatID", beatID), zap.Error(err))
		return err
	}

	if _, err := r.pool.Exec(ctx, upsertOverrideQuery, beatID, linesJSON, updatedBy); err != nil {
		r.logger.Error("Failed to upsert narrative override", zap.String("beatID", beatID), zap.Error(err))
		return err
	}

	r.logger.Info("Upserted narrative override", zap.String("beatID", beatID), zap.String("updatedBy", updatedBy))
	return nil
}

func (r *pgNarrativeOverrideRepository) Delete(ctx context.Context, beatID string) error {
	cmdTag, err := r.pool.Exec(ctx, deleteOverrideQuery, beatID)
	if err != nil {
		r.logger.Error("Failed to delete narrative override", zap.String("beatID", beatID), zap.Error(err))
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to delete non-existent override", zap.String("beatID", beatID))
	} else {
		r.logger.Info("Deleted narrative override", zap.String("beatID", beatID))
	}
	return nil
}
