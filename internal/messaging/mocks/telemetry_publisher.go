// Package mocks provides testify mocks for the messaging interfaces.
package mocks

import (
	"context"

	"shelley-server/internal/models"

	"github.com/stretchr/testify/mock"
)

// Mock TelemetryPublisher
type TelemetryPublisher struct {
	mock.Mock
}

func (m *TelemetryPublisher) PublishGameSession(ctx context.Context, record models.GameSessionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}
