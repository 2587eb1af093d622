package service

import (
	"context"
	"testing"

	"shelley-server/internal/models"
	"shelley-server/internal/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestApplyEventRejectsUnknownType(t *testing.T) {
	progress := new(mocks.ProgressRepository)
	svc := NewProgressService(progress, zap.NewNop())

	_, err := svc.ApplyEvent(context.Background(), uuid.New(), models.GameEvent{Type: "self_destruct"})
	assert.ErrorIs(t, err, models.ErrInvalidEventType)
	progress.AssertNotCalled(t, "ApplyEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyEventReturnsAuthoritativeRecord(t *testing.T) {
	progress := new(mocks.ProgressRepository)
	svc := NewProgressService(progress, zap.NewNop())

	id := uuid.New()
	event := models.GameEvent{Type: models.EventCompleted, GameName: "po_runner", Score: 50}
	progress.On("ApplyEvent", mock.Anything, id, event).
		Return(&models.Progress{GamesPlayed: 1, GamesCompleted: 1, TotalScore: 50, PoRelationship: 3}, nil)

	record, err := svc.ApplyEvent(context.Background(), id, event)
	require.NoError(t, err)
	assert.Equal(t, 1, record.GamesCompleted)
	assert.Equal(t, 3, record.PoRelationship)
	progress.AssertExpectations(t)
}

func TestApplyEventUnknownSession(t *testing.T) {
	progress := new(mocks.ProgressRepository)
	svc := NewProgressService(progress, zap.NewNop())

	id := uuid.New()
	progress.On("ApplyEvent", mock.Anything, id, mock.Anything).Return(nil, models.ErrSessionNotFound)

	_, err := svc.ApplyEvent(context.Background(), id, models.GameEvent{Type: models.EventSkipped})
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}
