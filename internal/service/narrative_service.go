package service

import (
	"context"
	"encoding/json"
	"time"

	"shelley-server/internal/models"
	"shelley-server/internal/narrative"
	"shelley-server/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	narrativeCacheKey = "narrative:beats"
	narrativeCacheTTL = 5 * time.Minute
)

// NarrativeService serves the merged beat catalogue and manages
// overrides.
type NarrativeService interface {
	// Beats returns the default catalogue with stored overrides merged
	// in. Storage trouble degrades to the compiled-in defaults rather
	// than failing: the game must always get a beat list.
	Beats(ctx context.Context) ([]models.Beat, error)
	// SetOverride replaces the lines of one default beat. Unknown beat
	// ids are rejected with models.ErrInvalidBeatID.
	SetOverride(ctx context.Context, beatID string, lines []models.BeatLine, updatedBy string) error
	// RemoveOverride reverts a beat to its default lines.
	RemoveOverride(ctx context.Context, beatID string) error
}

type narrativeServiceImpl struct {
	overrides repository.NarrativeOverrideRepository
	cache     *redis.Client
	logger    *zap.Logger
}

// Compile-time check to ensure implementation satisfies the interface.
var _ NarrativeService = (*narrativeServiceImpl)(nil)

// NewNarrativeService creates the narrative service. cache may be nil;
// every read then goes to the database.
func NewNarrativeService(overrides repository.NarrativeOverrideRepository, cache *redis.Client, logger *zap.Logger) NarrativeService {
	return &narrativeServiceImpl{
		overrides: overrides,
		cache:     cache,
		logger:    logger.Named("NarrativeService"),
	}
}

func (s *narrativeServiceImpl) Beats(ctx context.Context) ([]models.Beat, error) {
	if beats, ok := s.cachedBeats(ctx); ok {
		return beats, nil
	}

	stored, err := s.overrides.List(ctx)
	if err != nil {
		s.logger.Warn("Override lookup failed, serving default beats", zap.Error(err))
		return narrative.Merge(nil), nil
	}

	merged := narrative.Merge(stored)
	s.storeBeats(ctx, merged)
	return merged, nil
}

func (s *narrativeServiceImpl) SetOverride(ctx context.Context, beatID string, lines []models.BeatLine, updatedBy string) error {
	if !narrative.ValidBeatID(beatID) {
		return models.ErrInvalidBeatID
	}
	if len(lines) == 0 {
		return models.ErrInvalidInput
	}
	if err := s.overrides.Upsert(ctx, beatID, lines, updatedBy); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *narrativeServiceImpl) RemoveOverride(ctx context.Context, beatID string) error {
	if !narrative.ValidBeatID(beatID) {
		return models.ErrInvalidBeatID
	}
	if err := s.overrides.Delete(ctx, beatID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *narrativeServiceImpl) cachedBeats(ctx context.Context) ([]models.Beat, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, narrativeCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("Narrative cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var beats []models.Beat
	if err := json.Unmarshal(raw, &beats); err != nil {
		s.logger.Warn("Narrative cache entry malformed, dropping", zap.Error(err))
		s.invalidate(ctx)
		return nil, false
	}
	return beats, true
}

func (s *narrativeServiceImpl) storeBeats(ctx context.Context, beats []models.Beat) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(beats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, narrativeCacheKey, raw, narrativeCacheTTL).Err(); err != nil {
		s.logger.Warn("Narrative cache write failed", zap.Error(err))
	}
}

func (s *narrativeServiceImpl) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, narrativeCacheKey).Err(); err != nil {
		s.logger.Warn("Narrative cache invalidation failed", zap.Error(err))
	}
}
