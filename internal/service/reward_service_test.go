package service

import (
	"context"
	"testing"

	"shelley-server/internal/models"
	"shelley-server/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStatusPersistsNewlyEarnedTiers(t *testing.T) {
	accounts := new(mocks.AccountRepository)
	progress := new(mocks.ProgressRepository)
	svc := NewRewardService(accounts, progress, zap.NewNop())

	accounts.On("GetByID", mock.Anything, int64(1)).
		Return(&models.Account{ID: 1, RewardsEarned: []string{"explorer"}}, nil)
	progress.On("AggregateByAccount", mock.Anything, int64(1)).
		Return(&models.AggregatedProgress{GamesCompleted: 3, TotalPicks: 10}, nil)
	accounts.On("AddEarnedRewards", mock.Anything, int64(1), []string{"dedicated"}).Return(nil)

	statuses, err := svc.Status(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, statuses, 5)

	byID := make(map[string]TierStatus)
	for _, status := range statuses {
		byID[status.ID] = status
	}
	assert.True(t, byID["explorer"].Earned)
	assert.False(t, byID["explorer"].NewlyEarned)
	assert.True(t, byID["dedicated"].Earned)
	assert.True(t, byID["dedicated"].NewlyEarned)
	assert.False(t, byID["forbidden_six"].Earned)
	accounts.AssertExpectations(t)
}

func TestStatusIsIdempotentWhenNothingNew(t *testing.T) {
	accounts := new(mocks.AccountRepository)
	progress := new(mocks.ProgressRepository)
	svc := NewRewardService(accounts, progress, zap.NewNop())

	accounts.On("GetByID", mock.Anything, int64(2)).
		Return(&models.Account{ID: 2, RewardsEarned: []string{"explorer", "dedicated"}}, nil)
	progress.On("AggregateByAccount", mock.Anything, int64(2)).
		Return(&models.AggregatedProgress{GamesCompleted: 5}, nil)

	statuses, err := svc.Status(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, statuses, 5)
	accounts.AssertNotCalled(t, "AddEarnedRewards", mock.Anything, mock.Anything, mock.Anything)
}

func TestStatusEarnedTiersSurviveAggregateRegression(t *testing.T) {
	accounts := new(mocks.AccountRepository)
	progress := new(mocks.ProgressRepository)
	svc := NewRewardService(accounts, progress, zap.NewNop())

	// Aggregate no longer satisfies forbidden_six (sessions purged), but
	// the earned set keeps it.
	accounts.On("GetByID", mock.Anything, int64(3)).
		Return(&models.Account{ID: 3, RewardsEarned: []string{"forbidden_six"}}, nil)
	progress.On("AggregateByAccount", mock.Anything, int64(3)).
		Return(&models.AggregatedProgress{}, nil)

	statuses, err := svc.Status(context.Background(), 3)
	require.NoError(t, err)
	for _, status := range statuses {
		if status.ID == "forbidden_six" {
			assert.True(t, status.Earned)
		}
	}
}

func TestStatusUnknownAccount(t *testing.T) {
	accounts := new(mocks.AccountRepository)
	progress := new(mocks.ProgressRepository)
	svc := NewRewardService(accounts, progress, zap.NewNop())

	accounts.On("GetByID", mock.Anything, int64(9)).Return(nil, models.ErrAccountNotFound)

	_, err := svc.Status(context.Background(), 9)
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
}
