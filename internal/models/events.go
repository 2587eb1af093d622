package models

import "time"

// GameEventType enumerates the semantic progress events accepted by the
// game-event endpoint. This is the server-side vocabulary; the richer
// bridge protocol (internal/protocol) maps down to these.
type GameEventType string

const (
	EventCompleted          GameEventType = "completed"
	EventSkipped            GameEventType = "skipped"
	EventScoreUpdate        GameEventType = "score_update"
	EventOnboardingComplete GameEventType = "onboarding_complete"
	EventPieceCollected     GameEventType = "piece_collected"
)

// Valid reports whether t is a member of the closed event-type set.
func (t GameEventType) Valid() bool {
	switch t {
	case EventCompleted, EventSkipped, EventScoreUpdate, EventOnboardingComplete, EventPieceCollected:
		return true
	}
	return false
}

// GameEvent is the wire body of POST /api/game-event. Numeric fields are
// untrusted and clamped by the state machine before accumulation.
type GameEvent struct {
	Type       GameEventType `json:"type"`
	GameName   string        `json:"gameName,omitempty"`
	Score      int           `json:"score,omitempty"`
	Picks      int           `json:"picks,omitempty"`
	Distance   int           `json:"distance,omitempty"`
	PieceIndex int           `json:"pieceIndex,omitempty"`
	PieceTotal int           `json:"pieceTotal,omitempty"`
}

// GameSessionRecord is one archived game_session telemetry event.
type GameSessionRecord struct {
	SessionID  string    `json:"sessionId" db:"session_id"`
	Action     string    `json:"action" db:"action"`
	GameName   string    `json:"gameName" db:"game_name"`
	FinalScore int       `json:"finalScore" db:"final_score"`
	Duration   int       `json:"duration" db:"duration_seconds"`
	OccurredAt time.Time `json:"occurredAt" db:"occurred_at"`
}
