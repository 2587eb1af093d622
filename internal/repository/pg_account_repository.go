package repository

import (
	"context"
	"errors"

	"shelley-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ AccountRepository = (*pgAccountRepository)(nil)

type pgAccountRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgAccountRepository creates the Postgres-backed account repository.
func NewPgAccountRepository(pool *pgxpool.Pool, logger *zap.Logger) AccountRepository {
	return &pgAccountRepository{
		pool:   pool,
		logger: logger.Named("PgAccountRepo"),
	}
}

const insertAccountQuery = `
INSERT INTO accounts (email, password_hash, display_name)
VALUES ($1, $2, $3)
RETURNING id, email, password_hash, display_name, rewards_earned, created_at`

const getAccountByEmailQuery = `
SELECT id, email, password_hash, display_name, rewards_earned, created_at
FROM accounts
WHERE lower(email) = lower($1)`

const getAccountByIDQuery = `
SELECT id, email, password_hash, display_name, rewards_earned, created_at
FROM accounts
WHERE id = $1`

// Appends only the ids not already present; earned rewards are never
// removed or reordered.
const addEarnedRewardsQuery = `
UPDATE accounts
SET rewards_earned = rewards_earned || (
    SELECT COALESCE(array_agg(tier), '{}')
    FROM unnest($2::text[]) AS tier
    WHERE NOT (tier = ANY(rewards_earned))
)
WHERE id = $1`

const uniqueViolationCode = "23505"

func (r *pgAccountRepository) Create(ctx context.Context, email, passwordHash string, displayName *string) (*models.Account, error) {
	account := &models.Account{}
	var rewards pq.StringArray
	err := r.pool.QueryRow(ctx, insertAccountQuery, email, passwordHash, displayName).Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.DisplayName,
		&rewards,
		&account.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, models.ErrEmailAlreadyExists
		}
		r.logger.Error("Failed to create account", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	account.RewardsEarned = []string(rewards)

	r.logger.Info("Created account", zap.Int64("accountID", account.ID))
	return account, nil
}

func (r *pgAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	account := &models.Account{}
	err := pgxscan.Get(ctx, r.pool, account, getAccountByEmailQuery, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrAccountNotFound
		}
		r.logger.Error("Failed to get account by email", zap.Error(err))
		return nil, err
	}
	return account, nil
}

func (r *pgAccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	account := &models.Account{}
	err := pgxscan.Get(ctx, r.pool, account, getAccountByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrAccountNotFound
		}
		r.logger.Error("Failed to get account", zap.Int64("accountID", id), zap.Error(err))
		return nil, err
	}
	return account, nil
}

func (r *pgAccountRepository) AddEarnedRewards(ctx context.Context, id int64, tierIDs []string) error {
	if len(tierIDs) == 0 {
		return nil
	}
	cmdTag, err := r.pool.Exec(ctx, addEarnedRewardsQuery, id, pq.Array(tierIDs))
	if err != nil {
		r.logger.Error("Failed to add earned rewards",
			zap.Int64("accountID", id), zap.Strings("tierIDs", tierIDs), zap.Error(err))
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrAccountNotFound
	}
	r.logger.Debug("Recorded earned rewards", zap.Int64("accountID", id), zap.Strings("tierIDs", tierIDs))
	return nil
}
