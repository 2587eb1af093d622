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

func TestBeatsMergesStoredOverrides(t *testing.T) {
	overrides := new(mocks.NarrativeOverrideRepository)
	svc := NewNarrativeService(overrides, nil, zap.NewNop())

	overrides.On("List", mock.Anything).Return([]models.BeatOverride{
		{BeatID: "gallery", Lines: []models.BeatLine{{Text: "New gallery pitch."}}},
	}, nil)

	beats, err := svc.Beats(context.Background())
	require.NoError(t, err)
	require.Len(t, beats, 8)

	for _, beat := range beats {
		if beat.ID == "gallery" {
			assert.True(t, beat.Overridden)
			assert.Equal(t, "New gallery pitch.", beat.Lines[0].Text)
		} else {
			assert.False(t, beat.Overridden)
		}
	}
}

func TestBeatsDegradesToDefaultsWhenStorageFails(t *testing.T) {
	overrides := new(mocks.NarrativeOverrideRepository)
	svc := NewNarrativeService(overrides, nil, zap.NewNop())

	overrides.On("List", mock.Anything).Return(nil, assert.AnError)

	beats, err := svc.Beats(context.Background())
	require.NoError(t, err, "storage trouble must not break beat delivery")
	require.Len(t, beats, 8)
	for _, beat := range beats {
		assert.False(t, beat.Overridden)
	}
}

func TestSetOverrideValidatesBeatID(t *testing.T) {
	overrides := new(mocks.NarrativeOverrideRepository)
	svc := NewNarrativeService(overrides, nil, zap.NewNop())

	err := svc.SetOverride(context.Background(), "finale", []models.BeatLine{{Text: "x"}}, "admin")
	assert.ErrorIs(t, err, models.ErrInvalidBeatID)
	overrides.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSetOverrideRejectsEmptyLines(t *testing.T) {
	overrides := new(mocks.NarrativeOverrideRepository)
	svc := NewNarrativeService(overrides, nil, zap.NewNop())

	err := svc.SetOverride(context.Background(), "intro", nil, "admin")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestSetAndRemoveOverrideHitStorage(t *testing.T) {
	overrides := new(mocks.NarrativeOverrideRepository)
	svc := NewNarrativeService(overrides, nil, zap.NewNop())

	lines := []models.BeatLine{{Speaker: "Po", Text: "Rewritten."}}
	overrides.On("Upsert", mock.Anything, "intro", lines, "admin").Return(nil)
	overrides.On("Delete", mock.Anything, "intro").Return(nil)

	require.NoError(t, svc.SetOverride(context.Background(), "intro", lines, "admin"))
	require.NoError(t, svc.RemoveOverride(context.Background(), "intro"))
	overrides.AssertExpectations(t)
}

func TestRemoveOverrideValidatesBeatID(t *testing.T) {
	overrides := new(mocks.NarrativeOverrideRepository)
	svc := NewNarrativeService(overrides, nil, zap.NewNop())

	err := svc.RemoveOverride(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrInvalidBeatID)
}
