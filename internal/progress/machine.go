// Package progress holds the authoritative transition function applied to
// a player's durable progress record. It is pure: callers (the repository)
// are responsible for row locking and persistence.
package progress

import (
	"fmt"

	"shelley-server/internal/models"
)

// Numeric bounds. Event payloads originate in the embedded game, which is
// an external input source, so every value is clamped here regardless of
// any upstream validation.
const (
	MaxScore    = 999_999
	MaxPicks    = 99_999
	MaxDistance = 99_999

	MaxRelationship = 100

	// PieceCap is the artifact-piece ceiling. Collecting all of them
	// assigns RewardCode exactly once.
	PieceCap   = 6
	RewardCode = "SIX25"

	relationshipCompletedGain  = 3
	relationshipSkippedLoss    = 1
	relationshipOnboardingGain = 5

	fourthWallMinCompleted    = 2
	fourthWallMinRelationship = 30
)

// Clamp bounds v to [min, max].
func Clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Apply computes the next progress record for one game event. The input
// record is not mutated. Unknown event types return
// models.ErrInvalidEventType so handlers answer with a client error
// instead of silently dropping the event.
func Apply(current models.Progress, event models.GameEvent) (models.Progress, error) {
	next := current.Clone()
	if next.GameRecords == nil {
		next.GameRecords = make(map[string]models.GameRecord)
	}

	score := Clamp(event.Score, 0, MaxScore)
	picks := Clamp(event.Picks, 0, MaxPicks)
	distance := Clamp(event.Distance, 0, MaxDistance)

	switch event.Type {
	case models.EventCompleted:
		name := gameName(event)
		rec := next.GameRecords[name]
		rec.TimesPlayed++
		rec.TimesCompleted++
		rec.LastScore = score
		if rec.LastScore > rec.HighScore {
			rec.HighScore = rec.LastScore
		}
		if distance > rec.BestDistance {
			rec.BestDistance = distance
		}
		next.GameRecords[name] = rec

		next.GamesPlayed++
		next.GamesCompleted++
		next.TotalScore += score
		next.TotalPicks += picks
		next.PoRelationship = Clamp(next.PoRelationship+relationshipCompletedGain, 0, MaxRelationship)
		// Evaluated on the post-increment values: the 2nd completion and
		// crossing the relationship threshold may land in the same event.
		if next.GamesCompleted >= fourthWallMinCompleted && next.PoRelationship >= fourthWallMinRelationship {
			next.FourthWallUnlocked = true
		}

	case models.EventSkipped:
		name := gameName(event)
		rec := next.GameRecords[name]
		rec.TimesPlayed++
		next.GameRecords[name] = rec

		next.GamesPlayed++
		next.GamesSkipped++
		next.PoRelationship = Clamp(next.PoRelationship-relationshipSkippedLoss, 0, MaxRelationship)

	case models.EventScoreUpdate:
		next.TotalScore += score
		next.TotalPicks += picks

	case models.EventPieceCollected:
		next.PiecesCollected = Clamp(next.PiecesCollected+1, 0, PieceCap)
		if next.PiecesCollected >= PieceCap && next.RewardCode == nil {
			code := RewardCode
			next.RewardCode = &code
		}

	case models.EventOnboardingComplete:
		next.OnboardingComplete = true
		next.PoRelationship = Clamp(next.PoRelationship+relationshipOnboardingGain, 0, MaxRelationship)
		// Piece collection and onboarding completion can arrive out of the
		// expected order; assign the code here too, still set-if-unset.
		if next.PiecesCollected >= PieceCap && next.RewardCode == nil {
			code := RewardCode
			next.RewardCode = &code
		}

	default:
		return current, fmt.Errorf("%w: %q", models.ErrInvalidEventType, event.Type)
	}

	return next, nil
}

func gameName(event models.GameEvent) string {
	if event.GameName == "" {
		return "unknown"
	}
	return event.GameName
}
