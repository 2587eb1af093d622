// Package mocks provides testify mocks for the repository interfaces.
package mocks

import (
	"context"

	"shelley-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock SessionRepository
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Create(ctx context.Context, ipAddress, userAgent string) (*models.Session, error) {
	args := m.Called(ctx, ipAddress, userAgent)
	session, _ := args.Get(0).(*models.Session)
	return session, args.Error(1)
}
func (m *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	args := m.Called(ctx, id)
	session, _ := args.Get(0).(*models.Session)
	return session, args.Error(1)
}
func (m *SessionRepository) Touch(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock ProgressRepository
type ProgressRepository struct {
	mock.Mock
}

func (m *ProgressRepository) GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*models.Progress, error) {
	args := m.Called(ctx, sessionID)
	record, _ := args.Get(0).(*models.Progress)
	return record, args.Error(1)
}
func (m *ProgressRepository) ApplyEvent(ctx context.Context, sessionID uuid.UUID, event models.GameEvent) (*models.Progress, error) {
	args := m.Called(ctx, sessionID, event)
	record, _ := args.Get(0).(*models.Progress)
	return record, args.Error(1)
}
func (m *ProgressRepository) LinkAccount(ctx context.Context, sessionID uuid.UUID, accountID int64, onlyIfUnlinked bool) error {
	args := m.Called(ctx, sessionID, accountID, onlyIfUnlinked)
	return args.Error(0)
}
func (m *ProgressRepository) AggregateByAccount(ctx context.Context, accountID int64) (*models.AggregatedProgress, error) {
	args := m.Called(ctx, accountID)
	aggregate, _ := args.Get(0).(*models.AggregatedProgress)
	return aggregate, args.Error(1)
}

// Mock AccountRepository
type AccountRepository struct {
	mock.Mock
}

func (m *AccountRepository) Create(ctx context.Context, email, passwordHash string, displayName *string) (*models.Account, error) {
	args := m.Called(ctx, email, passwordHash, displayName)
	account, _ := args.Get(0).(*models.Account)
	return account, args.Error(1)
}
func (m *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	account, _ := args.Get(0).(*models.Account)
	return account, args.Error(1)
}
func (m *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	account, _ := args.Get(0).(*models.Account)
	return account, args.Error(1)
}
func (m *AccountRepository) AddEarnedRewards(ctx context.Context, id int64, tierIDs []string) error {
	args := m.Called(ctx, id, tierIDs)
	return args.Error(0)
}

// Mock NarrativeOverrideRepository
type NarrativeOverrideRepository struct {
	mock.Mock
}

func (m *NarrativeOverrideRepository) List(ctx context.Context) ([]models.BeatOverride, error) {
	args := m.Called(ctx)
	overrides, _ := args.Get(0).([]models.BeatOverride)
	return overrides, args.Error(1)
}
func (m *NarrativeOverrideRepository) Upsert(ctx context.Context, beatID string, lines []models.BeatLine, updatedBy string) error {
	args := m.Called(ctx, beatID, lines, updatedBy)
	return args.Error(0)
}
func (m *NarrativeOverrideRepository) Delete(ctx context.Context, beatID string) error {
	args := m.Called(ctx, beatID)
	return args.Error(0)
}

// Mock TelemetryRepository
type TelemetryRepository struct {
	mock.Mock
}

func (m *TelemetryRepository) Insert(ctx context.Context, record models.GameSessionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}
