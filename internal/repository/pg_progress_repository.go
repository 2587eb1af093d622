package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"shelley-server/internal/models"
	"shelley-server/internal/progress"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ ProgressRepository = (*pgProgressRepository)(nil)

type pgProgressRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgProgressRepository creates the Postgres-backed progress repository.
func NewPgProgressRepository(pool *pgxpool.Pool, logger *zap.Logger) ProgressRepository {
	return &pgProgressRepository{
		pool:   pool,
		logger: logger.Named("PgProgressRepo"),
	}
}

const selectProgressQuery = `
SELECT games_played, games_completed, games_skipped, total_score, total_picks,
       po_relationship, onboarding_complete, fourth_wall_unlocked,
       pieces_collected, reward_code, game_records
FROM game_progress
WHERE session_id = $1`

// Row lock held for the duration of the event transaction.
const selectProgressForUpdateQuery = selectProgressQuery + `
FOR UPDATE`

// Counters are written as arithmetic against the stored row, not as
// absolute values, so the update composes with whatever the locked row
// held. reward_code is set-if-null: once granted it never changes.
const updateProgressQuery = `
UPDATE game_progress SET
    games_played = games_played + $2,
    games_completed = games_completed + $3,
    games_skipped = games_skipped + $4,
    total_score = total_score + $5,
    total_picks = total_picks + $6,
    po_relationship = $7,
    onboarding_complete = onboarding_complete OR $8,
    fourth_wall_unlocked = fourth_wall_unlocked OR $9,
    pieces_collected = $10,
    reward_code = COALESCE(reward_code, $11),
    game_records = $12,
    updated_at = NOW()
WHERE session_id = $1`

const linkAccountQuery = `
UPDATE game_progress SET account_id = $2, updated_at = NOW()
WHERE session_id = $1`

const linkAccountIfUnlinkedQuery = linkAccountQuery + ` AND account_id IS NULL`

const aggregateProgressQuery = `
SELECT COALESCE(SUM(games_completed), 0)   AS games_completed,
       COALESCE(SUM(total_picks), 0)       AS total_picks,
       COALESCE(MAX(po_relationship), 0)   AS po_relationship,
       COALESCE(MAX(pieces_collected), 0)  AS pieces_collected
FROM game_progress
WHERE account_id = $1`

func (r *pgProgressRepository) GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*models.Progress, error) {
	row := r.pool.QueryRow(ctx, selectProgressQuery, sessionID)
	record, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrSessionNotFound
		}
		r.logger.Error("Failed to get progress", zap.Stringer("sessionID", sessionID), zap.Error(err))
		return nil, err
	}
	return record, nil
}

// ApplyEvent holds the row lock across read, transition and write so
// concurrent events for one session serialize instead of clobbering each
// other. Events for different sessions do not contend.
func (r *pgProgressRepository) ApplyEvent(ctx context.Context, sessionID uuid.UUID, event models.GameEvent) (*models.Progress, error) {
	logFields := []zap.Field{zap.Stringer("sessionID", sessionID), zap.String("eventType", string(event.Type))}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		r.logger.Error("Failed to begin event transaction", append(logFields, zap.Error(err))...)
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current, err := scanProgress(tx.QueryRow(ctx, selectProgressForUpdateQuery, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrSessionNotFound
		}
		r.logger.Error("Failed to lock progress row", append(logFields, zap.Error(err))...)
		return nil, err
	}

	next, err := progress.Apply(*current, event)
	if err != nil {
		return nil, err
	}

	recordsJSON, err := json.Marshal(next.GameRecords)
	if err != nil {
		r.logger.Error("Failed to marshal game records", append(logFields, zap.Error(err))...)
		return nil, err
	}

	_, err = tx.Exec(ctx, updateProgressQuery,
		sessionID,
		next.GamesPlayed-current.GamesPlayed,
		next.GamesCompleted-current.GamesCompleted,
		next.GamesSkipped-current.GamesSkipped,
		next.TotalScore-current.TotalScore,
		next.TotalPicks-current.TotalPicks,
		next.PoRelationship,
		next.OnboardingComplete,
		next.FourthWallUnlocked,
		next.PiecesCollected,
		next.RewardCode,
		recordsJSON,
	)
	if err != nil {
		r.logger.Error("Failed to update progress", append(logFields, zap.Error(err))...)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("Failed to commit event transaction", append(logFields, zap.Error(err))...)
		return nil, err
	}

	r.logger.Debug("Applied game event", logFields...)
	return &next, nil
}

func (r *pgProgressRepository) LinkAccount(ctx context.Context, sessionID uuid.UUID, accountID int64, onlyIfUnlinked bool) error {
	query := linkAccountQuery
	if onlyIfUnlinked {
		query = linkAccountIfUnlinkedQuery
	}
	cmdTag, err := r.pool.Exec(ctx, query, sessionID, accountID)
	if err != nil {
		r.logger.Error("Failed to link progress to account",
			zap.Stringer("sessionID", sessionID), zap.Int64("accountID", accountID), zap.Error(err))
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Debug("Progress link skipped, row missing or already owned",
			zap.Stringer("sessionID", sessionID), zap.Int64("accountID", accountID))
	}
	return nil
}

func (r *pgProgressRepository) AggregateByAccount(ctx context.Context, accountID int64) (*models.AggregatedProgress, error) {
	aggregate := &models.AggregatedProgress{}
	err := r.pool.QueryRow(ctx, aggregateProgressQuery, accountID).Scan(
		&aggregate.GamesCompleted,
		&aggregate.TotalPicks,
		&aggregate.PoRelationship,
		&aggregate.PiecesCollected,
	)
	if err != nil {
		r.logger.Error("Failed to aggregate progress", zap.Int64("accountID", accountID), zap.Error(err))
		return nil, err
	}
	return aggregate, nil
}

func scanProgress(row pgx.Row) (*models.Progress, error) {
	record := &models.Progress{}
	var recordsJSON []byte
	err := row.Scan(
		&record.GamesPlayed,
		&record.GamesCompleted,
		&record.GamesSkipped,
		&record.TotalScore,
		&record.TotalPicks,
		&record.PoRelationship,
		&record.OnboardingComplete,
		&record.FourthWallUnlocked,
		&record.PiecesCollected,
		&record.RewardCode,
		&recordsJSON,
	)
	if err != nil {
		return nil, err
	}

	record.GameRecords = make(map[string]models.GameRecord)
	if len(recordsJSON) > 0 {
		if err := json.Unmarshal(recordsJSON, &record.GameRecords); err != nil {
			return nil, fmt.Errorf("failed to unmarshal game records: %w", err)
		}
	}
	return record, nil
}
