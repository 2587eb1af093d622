// Package repository defines the persistence interfaces and their
// Postgres implementations. The durable progress row is the only shared
// mutable resource in the system; every mutation of it goes through
// ProgressRepository.ApplyEvent, which serializes per session row.
package repository

import (
	"context"

	"shelley-server/internal/models"

	"github.com/google/uuid"
)

// SessionRepository manages anonymous visitor sessions.
type SessionRepository interface {
	// Create inserts a new session and its empty progress row.
	Create(ctx context.Context, ipAddress, userAgent string) (*models.Session, error)
	// Get returns models.ErrSessionNotFound for unknown ids.
	Get(ctx context.Context, id uuid.UUID) (*models.Session, error)
	// Touch bumps last_seen_at.
	Touch(ctx context.Context, id uuid.UUID) error
}

// ProgressRepository manages the per-session progress record.
type ProgressRepository interface {
	// GetBySessionID returns models.ErrSessionNotFound when no progress
	// row exists for the session.
	GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*models.Progress, error)
	// ApplyEvent runs the progress state machine against the locked row
	// and returns the post-transition record. The read and write happen
	// inside one transaction; no other event for the same session is
	// applied between them.
	ApplyEvent(ctx context.Context, sessionID uuid.UUID, event models.GameEvent) (*models.Progress, error)
	// LinkAccount attaches the session's progress row to an account.
	// With onlyIfUnlinked, rows already owned by another account are left
	// alone (login must not steal progress).
	LinkAccount(ctx context.Context, sessionID uuid.UUID, accountID int64, onlyIfUnlinked bool) error
	// AggregateByAccount sums/maxes progress across every session row
	// linked to the account.
	AggregateByAccount(ctx context.Context, accountID int64) (*models.AggregatedProgress, error)
}

// AccountRepository manages authenticated accounts and their earned
// reward tiers.
type AccountRepository interface {
	Create(ctx context.Context, email, passwordHash string, displayName *string) (*models.Account, error)
	// GetByEmail returns models.ErrAccountNotFound for unknown emails.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	// AddEarnedRewards unions tierIDs into rewards_earned. Ids already
	// present are not duplicated; the set is never shrunk.
	AddEarnedRewards(ctx context.Context, id int64, tierIDs []string) error
}

// NarrativeOverrideRepository stores CMS-authored beat line replacements.
type NarrativeOverrideRepository interface {
	List(ctx context.Context) ([]models.BeatOverride, error)
	Upsert(ctx context.Context, beatID string, lines []models.BeatLine, updatedBy string) error
	// Delete reverts the beat to its compiled-in default. Deleting a
	// beat with no override is not an error.
	Delete(ctx context.Context, beatID string) error
}

// TelemetryRepository archives game_session events.
type TelemetryRepository interface {
	Insert(ctx context.Context, record models.GameSessionRecord) error
}
