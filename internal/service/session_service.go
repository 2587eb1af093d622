// Package service holds the business logic between the HTTP handlers and
// the repositories: session establishment, the progress event flow,
// reward derivation, the narrative catalogue and account auth.
package service

import (
	"context"
	"errors"

	"shelley-server/internal/models"
	"shelley-server/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionService establishes and resumes anonymous sessions.
type SessionService interface {
	// Establish resumes the session named by sessionID, or creates a new
	// one when sessionID is nil or unknown. Returns the session, its
	// progress record and whether a new session was minted (the handler
	// only re-issues the cookie in that case).
	Establish(ctx context.Context, sessionID *uuid.UUID, ipAddress, userAgent string) (*models.Session, *models.Progress, bool, error)
}

type sessionServiceImpl struct {
	sessions repository.SessionRepository
	progress repository.ProgressRepository
	logger   *zap.Logger
}

// Compile-time check to ensure implementation satisfies the interface.
var _ SessionService = (*sessionServiceImpl)(nil)

func NewSessionService(sessions repository.SessionRepository, progress repository.ProgressRepository, logger *zap.Logger) SessionService {
	return &sessionServiceImpl{
		sessions: sessions,
		progress: progress,
		logger:   logger.Named("SessionService"),
	}
}

func (s *sessionServiceImpl) Establish(ctx context.Context, sessionID *uuid.UUID, ipAddress, userAgent string) (*models.Session, *models.Progress, bool, error) {
	if sessionID != nil {
		session, err := s.sessions.Get(ctx, *sessionID)
		switch {
		case err == nil:
			record, err := s.progress.GetBySessionID(ctx, session.ID)
			if err != nil {
				return nil, nil, false, err
			}
			if err := s.sessions.Touch(ctx, session.ID); err != nil {
				// Stale last_seen_at is cosmetic; the session still works.
				s.logger.Warn("Failed to touch session", zap.Stringer("sessionID", session.ID), zap.Error(err))
			}
			return session, record, false, nil
		case errors.Is(err, models.ErrSessionNotFound):
			// Cookie references a purged session: mint a fresh one.
			s.logger.Info("Unknown session cookie, creating new session", zap.Stringer("staleID", *sessionID))
		default:
			return nil, nil, false, err
		}
	}

	session, err := s.sessions.Create(ctx, ipAddress, userAgent)
	if err != nil {
		return nil, nil, false, err
	}
	empty := models.EmptyProgress()
	return session, &empty, true, nil
}
