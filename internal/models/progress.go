package models

import (
	"time"

	"github.com/google/uuid"
)

// GameRecord tracks per-game stats inside a progress record.
// Every field is monotonic except LastScore, which is overwritten on each run.
type GameRecord struct {
	TimesPlayed    int `json:"timesPlayed"`
	TimesCompleted int `json:"timesCompleted"`
	HighScore      int `json:"highScore"`
	LastScore      int `json:"lastScore"`
	BestDistance   int `json:"bestDistance"`
}

// Progress is the durable per-session player progress record.
// One row per session; optionally linked to an account after signup/login.
type Progress struct {
	GamesPlayed        int                   `json:"gamesPlayed"`
	GamesCompleted     int                   `json:"gamesCompleted"`
	GamesSkipped       int                   `json:"gamesSkipped"`
	TotalScore         int                   `json:"totalScore"`
	TotalPicks         int                   `json:"totalPicks"`
	PoRelationship     int                   `json:"poRelationship"`
	OnboardingComplete bool                  `json:"onboardingComplete"`
	FourthWallUnlocked bool                  `json:"fourthWallUnlocked"`
	PiecesCollected    int                   `json:"piecesCollected"`
	RewardCode         *string               `json:"rewardCode"`
	GameRecords        map[string]GameRecord `json:"gameRecords"`
}

// EmptyProgress returns a fresh all-zero record with a non-nil records map.
func EmptyProgress() Progress {
	return Progress{GameRecords: make(map[string]GameRecord)}
}

// Clone returns a deep copy; GameRecords must not be shared between
// the cached snapshot and callers mutating it.
func (p Progress) Clone() Progress {
	cp := p
	cp.GameRecords = make(map[string]GameRecord, len(p.GameRecords))
	for name, rec := range p.GameRecords {
		cp.GameRecords[name] = rec
	}
	if p.RewardCode != nil {
		code := *p.RewardCode
		cp.RewardCode = &code
	}
	return cp
}

// Session is an anonymous cookie-identified visitor identity.
type Session struct {
	ID         uuid.UUID `json:"id"`
	IPAddress  string    `json:"-"`
	UserAgent  string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	LastSeenAt time.Time `json:"lastSeenAt"`
}

// AggregatedProgress is account-level progress summed/maxed across every
// session row linked to the account. Used for reward derivation only.
type AggregatedProgress struct {
	GamesCompleted  int `db:"games_completed"`
	TotalPicks      int `db:"total_picks"`
	PoRelationship  int `db:"po_relationship"`
	PiecesCollected int `db:"pieces_collected"`
}
