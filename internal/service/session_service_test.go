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

func TestEstablishCreatesSessionWithoutCookie(t *testing.T) {
	sessions := new(mocks.SessionRepository)
	progress := new(mocks.ProgressRepository)
	svc := NewSessionService(sessions, progress, zap.NewNop())

	created := &models.Session{ID: uuid.New()}
	sessions.On("Create", mock.Anything, "1.2.3.4", "godot/4.2").Return(created, nil)

	session, record, minted, err := svc.Establish(context.Background(), nil, "1.2.3.4", "godot/4.2")
	require.NoError(t, err)
	assert.Equal(t, created.ID, session.ID)
	assert.True(t, minted)
	assert.Equal(t, 0, record.GamesPlayed)
	sessions.AssertExpectations(t)
}

func TestEstablishResumesKnownSession(t *testing.T) {
	sessions := new(mocks.SessionRepository)
	progress := new(mocks.ProgressRepository)
	svc := NewSessionService(sessions, progress, zap.NewNop())

	id := uuid.New()
	sessions.On("Get", mock.Anything, id).Return(&models.Session{ID: id}, nil)
	sessions.On("Touch", mock.Anything, id).Return(nil)
	progress.On("GetBySessionID", mock.Anything, id).
		Return(&models.Progress{GamesPlayed: 7, GameRecords: map[string]models.GameRecord{}}, nil)

	session, record, minted, err := svc.Establish(context.Background(), &id, "", "")
	require.NoError(t, err)
	assert.Equal(t, id, session.ID)
	assert.False(t, minted)
	assert.Equal(t, 7, record.GamesPlayed)
	sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestEstablishMintsFreshSessionForStaleCookie(t *testing.T) {
	sessions := new(mocks.SessionRepository)
	progress := new(mocks.ProgressRepository)
	svc := NewSessionService(sessions, progress, zap.NewNop())

	stale := uuid.New()
	sessions.On("Get", mock.Anything, stale).Return(nil, models.ErrSessionNotFound)
	sessions.On("Create", mock.Anything, "", "").Return(&models.Session{ID: uuid.New()}, nil)

	session, _, minted, err := svc.Establish(context.Background(), &stale, "", "")
	require.NoError(t, err)
	assert.True(t, minted)
	assert.NotEqual(t, stale, session.ID)
}
