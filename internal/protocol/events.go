package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidMessage is returned for any inbound frame that is not a
// member of the closed event set with the expected field shape.
var ErrInvalidMessage = errors.New("invalid game message")

// Event is a game→host message. Closed set, same as Command.
type Event interface {
	EventType() string
}

// NavigateEvent asks the host to navigate to a site route.
type NavigateEvent struct {
	Route string `json:"route"`
}

func (NavigateEvent) EventType() string { return "navigate" }

// MiniGameCompleteEvent ends a transition mini-game run.
type MiniGameCompleteEvent struct {
	Score   int  `json:"score"`
	Skipped bool `json:"skipped"`
}

func (MiniGameCompleteEvent) EventType() string { return "minigame_complete" }

// PlayerStateEvent is periodic character state for HUD displays.
type PlayerStateEvent struct {
	Mood   string `json:"mood"`
	Score  int    `json:"score"`
	Action string `json:"action"`
}

func (PlayerStateEvent) EventType() string { return "player_state" }

// GameReadyEvent signals the game build finished loading. Commands sent
// before this are dropped by the transport.
type GameReadyEvent struct{}

func (GameReadyEvent) EventType() string { return "game_ready" }

type GameErrorEvent struct {
	Message string `json:"message"`
}

func (GameErrorEvent) EventType() string { return "game_error" }

type NarrativeStartEvent struct {
	BeatID string `json:"beatId"`
}

func (NarrativeStartEvent) EventType() string { return "narrative_start" }

type NarrativeEndEvent struct {
	BeatID string `json:"beatId"`
}

func (NarrativeEndEvent) EventType() string { return "narrative_end" }

// OnboardingCompleteEvent fires once when the scripted intro is done.
type OnboardingCompleteEvent struct{}

func (OnboardingCompleteEvent) EventType() string { return "onboarding_complete" }

// ScoreUpdateEvent is mid-session telemetry, not a session end.
type ScoreUpdateEvent struct {
	Score    int `json:"score"`
	Picks    int `json:"picks"`
	Distance int `json:"distance"`
}

func (ScoreUpdateEvent) EventType() string { return "score_update" }

// PieceCollectedEvent reports one collected artifact piece.
type PieceCollectedEvent struct {
	Piece int `json:"piece"`
	Total int `json:"total"`
}

func (PieceCollectedEvent) EventType() string { return "piece_collected" }

// MorphToPlatformerEvent marks the runner→platformer world break.
type MorphToPlatformerEvent struct{}

func (MorphToPlatformerEvent) EventType() string { return "morph_to_platformer" }

type MorphCompleteEvent struct{}

func (MorphCompleteEvent) EventType() string { return "morph_complete" }

// GameSessionEvent is session telemetry for the archive pipeline.
type GameSessionEvent struct {
	Action     string `json:"action"`
	GameName   string `json:"gameName"`
	FinalScore int    `json:"finalScore"`
	Duration   int    `json:"duration"`
}

func (GameSessionEvent) EventType() string { return "game_session" }

type eventEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ParseEvent validates and decodes an inbound frame. A frame is accepted
// iff it is a JSON object whose type is in the closed event set and whose
// data carries the required fields for that type; everything else returns
// ErrInvalidMessage. Numeric payloads are NOT trusted here — range
// clamping happens in the progress state machine.
func ParseEvent(raw []byte) (Event, error) {
	var env eventEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	switch env.Type {
	case "navigate":
		var data struct {
			Route string `json:"route"`
		}
		if err := decodeData(env.Data, &data); err != nil {
			return nil, err
		}
		if data.Route == "" {
			return nil, fmt.Errorf("%w: navigate requires data.route", ErrInvalidMessage)
		}
		return NavigateEvent{Route: data.Route}, nil

	case "minigame_complete":
		var data struct {
			Score   *int  `json:"score"`
			Skipped *bool `json:"skipped"`
		}
		if err := decodeData(env.Data, &data); err != nil {
			return nil, err
		}
		if data.Score == nil || data.Skipped == nil {
			return nil, fmt.Errorf("%w: minigame_complete requires score and skipped", ErrInvalidMessage)
		}
		return MiniGameCompleteEvent{Score: *data.Score, Skipped: *data.Skipped}, nil

	case "player_state":
		var data struct {
			Mood   string `json:"mood"`
			Score  int    `json:"score"`
			Action string `json:"action"`
		}
		if err := decodeData(env.Data, &data); err != nil {
			return nil, err
		}
		if data.Mood == "" || data.Action == "" {
			return nil, fmt.Errorf("%w: player_state requires mood and action", ErrInvalidMessage)
		}
		return PlayerStateEvent{Mood: data.Mood, Score: data.Score, Action: data.Action}, nil

	case "game_ready":
		return GameReadyEvent{}, nil

	case "game_error":
		var data struct {
			Message string `json:"message"`
		}
		if err := decodeData(env.Data, &data); err != nil {
			return nil, err
		}
		if data.Message == "" {
			return nil, fmt.Errorf("%w: game_error requires message", ErrInvalidMessage)
		}
		return GameErrorEvent{Message: data.Message}, nil

	case "narrative_start", "narrative_end":
		var data struct {
			BeatID string `json:"beatId"`
		}
		if err := decodeData(env.Data, &data); err != nil {
			return nil, err
		}
		if data.BeatID == "" {
			return nil, fmt.Errorf("%w: %s requires beatId", ErrInvalidMessage, env.Type)
		}
		if env.Type == "narrative_start" {
			return NarrativeStartEvent{BeatID: data.BeatID}, nil
		}
		return NarrativeEndEvent{BeatID: data.BeatID}, nil

	case "onboarding_complete":
		return OnboardingCompleteEvent{}, nil

	case "score_update":
		var data struct {
			Score    *int `json:"score"`
			Picks    *int `json:"picks"`
			Distance *int `json:"distance"`
		}
		if err := decodeData(env.Data, &data); err != nil {
			return nil, err
		}
		if data.Score == nil || data.Picks == nil || data.Distance == nil {
			return nil, fmt.Errorf("%w: score_update requires score, picks and distance", ErrInvalidMessage)
		}
		return ScoreUpdateEvent{Score: *data.Score, Picks: *data.Picks, Distance: *data.Distance}, nil

	case "piece_collected":
		var data struct {
			Piece *int `json:"piece"`
			Total *int `json:"total"`
		}
		if err := decodeData(env.Data, &data); err != nil {
			return nil, err
		}
		if data.Piece == nil || data.Total == nil {
			return nil, fmt.Errorf("%w: piece_collected requires piece and total", ErrInvalidMessage)
		}
		return PieceCollectedEvent{Piece: *data.Piece, Total: *data.Total}, nil

	case "morph_to_platformer":
		return MorphToPlatformerEvent{}, nil

	case "morph_complete":
		return MorphCompleteEvent{}, nil

	case "game_session":
		var data struct {
			Action     string `json:"action"`
			GameName   string `json:"gameName"`
			FinalScore int    `json:"finalScore"`
			Duration   int    `json:"duration"`
		}
		if err := decodeData(env.Data, &data); err != nil {
			return nil, err
		}
		switch data.Action {
		case "started", "completed", "skipped":
		default:
			return nil, fmt.Errorf("%w: game_session action %q", ErrInvalidMessage, data.Action)
		}
		if data.GameName == "" {
			return nil, fmt.Errorf("%w: game_session requires gameName", ErrInvalidMessage)
		}
		return GameSessionEvent{
			Action:     data.Action,
			GameName:   data.GameName,
			FinalScore: data.FinalScore,
			Duration:   data.Duration,
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, env.Type)
	}
}

func decodeData(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing data", ErrInvalidMessage)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return nil
}
