package repository

import (
	"context"
	"errors"

	"shelley-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ SessionRepository = (*pgSessionRepository)(nil)

type pgSessionRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgSessionRepository creates the Postgres-backed session repository.
func NewPgSessionRepository(pool *pgxpool.Pool, logger *zap.Logger) SessionRepository {
	return &pgSessionRepository{
		pool:   pool,
		logger: logger.Named("PgSessionRepo"),
	}
}

const insertSessionQuery = `
INSERT INTO sessions (id, ip_address, user_agent)
VALUES ($1, $2, $3)
RETURNING id, ip_address, user_agent, created_at, last_seen_at`

// Every session owns exactly one progress row, created with it.
const insertEmptyProgressQuery = `
INSERT INTO game_progress (session_id, game_records)
VALUES ($1, '{}'::jsonb)`

const getSessionQuery = `
SELECT id, ip_address, user_agent, created_at, last_seen_at
FROM sessions
WHERE id = $1`

const touchSessionQuery = `
UPDATE sessions SET last_seen_at = NOW()
WHERE id = $1`

func (r *pgSessionRepository) Create(ctx context.Context, ipAddress, userAgent string) (*models.Session, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		r.logger.Error("Failed to begin session transaction", zap.Error(err))
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	session := &models.Session{}
	err = tx.QueryRow(ctx, insertSessionQuery, uuid.New(), ipAddress, userAgent).Scan(
		&session.ID,
		&session.IPAddress,
		&session.UserAgent,
		&session.CreatedAt,
		&session.LastSeenAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert session", zap.Error(err))
		return nil, err
	}

	if _, err := tx.Exec(ctx, insertEmptyProgressQuery, session.ID); err != nil {
		r.logger.Error("Failed to insert empty progress", zap.Stringer("sessionID", session.ID), zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("Failed to commit session transaction", zap.Error(err))
		return nil, err
	}

	r.logger.Info("Created session", zap.Stringer("sessionID", session.ID))
	return session, nil
}

func (r *pgSessionRepository) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	session := &models.Session{}
	err := r.pool.QueryRow(ctx, getSessionQuery, id).Scan(
		&session.ID,
		&session.IPAddress,
		&session.UserAgent,
		&session.CreatedAt,
		&session.LastSeenAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrSessionNotFound
		}
		r.logger.Error("Failed to get session", zap.Stringer("sessionID", id), zap.Error(err))
		return nil, err
	}
	return session, nil
}

func (r *pgSessionRepository) Touch(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, touchSessionQuery, id); err != nil {
		r.logger.Error("Failed to touch session", zap.Stringer("sessionID", id), zap.Error(err))
		return err
	}
	return nil
}
