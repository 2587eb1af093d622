package service

import (
	"context"

	"shelley-server/internal/repository"
	"shelley-server/internal/rewards"

	"go.uber.org/zap"
)

// TierStatus is one reward tier annotated with the caller's standing.
type TierStatus struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Reward      rewards.Reward `json:"reward"`
	Earned      bool           `json:"earned"`
	NewlyEarned bool           `json:"newlyEarned"`
}

// RewardService derives and persists reward tiers for an account.
type RewardService interface {
	// Status aggregates progress across the account's sessions, persists
	// any tiers that crossed their threshold since the last call and
	// returns the full tier list with earned flags. Tiers once earned
	// stay earned regardless of later aggregates.
	Status(ctx context.Context, accountID int64) ([]TierStatus, error)
}

type rewardServiceImpl struct {
	accounts repository.AccountRepository
	progress repository.ProgressRepository
	logger   *zap.Logger
}

// Compile-time check to ensure implementation satisfies the interface.
var _ RewardService = (*rewardServiceImpl)(nil)

func NewRewardService(accounts repository.AccountRepository, progress repository.ProgressRepository, logger *zap.Logger) RewardService {
	return &rewardServiceImpl{
		accounts: accounts,
		progress: progress,
		logger:   logger.Named("RewardService"),
	}
}

func (s *rewardServiceImpl) Status(ctx context.Context, accountID int64) ([]TierStatus, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	aggregate, err := s.progress.AggregateByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	newly := rewards.Evaluate(*aggregate, account.RewardsEarned)
	if len(newly) > 0 {
		if err := s.accounts.AddEarnedRewards(ctx, accountID, newly); err != nil {
			return nil, err
		}
		s.logger.Info("Unlocked reward tiers",
			zap.Int64("accountID", accountID), zap.Strings("tierIDs", newly))
	}

	earnedSet := make(map[string]bool, len(account.RewardsEarned)+len(newly))
	for _, id := range account.RewardsEarned {
		earnedSet[id] = true
	}
	newlySet := make(map[string]bool, len(newly))
	for _, id := range newly {
		newlySet[id] = true
	}

	statuses := make([]TierStatus, len(rewards.Tiers))
	for i, tier := range rewards.Tiers {
		statuses[i] = TierStatus{
			ID:          tier.ID,
			Name:        tier.Name,
			Description: tier.Description,
			Reward:      tier.Reward,
			Earned:      earnedSet[tier.ID] || newlySet[tier.ID],
			NewlyEarned: newlySet[tier.ID],
		}
	}
	return statuses, nil
}
