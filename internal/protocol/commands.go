// Package protocol defines the closed message families exchanged with an
// embedded game build: Commands flow host→game, Events flow game→host.
// The game runs across a process boundary and is only partially trusted,
// so every inbound message is shape-checked before it reaches the rest of
// the application.
package protocol

import (
	"encoding/json"

	"shelley-server/internal/models"
)

// Command is a host→game message. The set is closed: only types in this
// package satisfy the interface.
type Command interface {
	CommandType() string
	payload() any
}

// StartCommand starts (or restarts) the game, optionally in a named mode.
type StartCommand struct {
	Level string
}

func (c StartCommand) CommandType() string { return "start" }
func (c StartCommand) payload() any {
	if c.Level == "" {
		return nil
	}
	return map[string]string{"level": c.Level}
}

type PauseCommand struct{}

func (PauseCommand) CommandType() string { return "pause" }
func (PauseCommand) payload() any        { return nil }

type ResumeCommand struct{}

func (ResumeCommand) CommandType() string { return "resume" }
func (ResumeCommand) payload() any        { return nil }

// MoveToCommand walks the player character to a named target zone.
type MoveToCommand struct {
	Target string
}

func (c MoveToCommand) CommandType() string { return "move_to" }
func (c MoveToCommand) payload() any {
	return map[string]string{"target": c.Target}
}

// ConfigCommand pushes host-side state into the game after game_ready.
// Nil fields are omitted so the game keeps its defaults.
type ConfigCommand struct {
	RelationshipLevel  *int
	GamesPlayed        *int
	FourthWallUnlocked *bool
	Features           map[string]bool
}

func (c ConfigCommand) CommandType() string { return "config" }
func (c ConfigCommand) payload() any {
	type configData struct {
		RelationshipLevel  *int            `json:"relationshipLevel,omitempty"`
		GamesPlayed        *int            `json:"gamesPlayed,omitempty"`
		FourthWallUnlocked *bool           `json:"fourthWallUnlocked,omitempty"`
		Features           map[string]bool `json:"features,omitempty"`
	}
	return configData{
		RelationshipLevel:  c.RelationshipLevel,
		GamesPlayed:        c.GamesPlayed,
		FourthWallUnlocked: c.FourthWallUnlocked,
		Features:           c.Features,
	}
}

// UpdateNarrativeCommand replaces the game's compiled-in beat list with
// the CMS-merged one.
type UpdateNarrativeCommand struct {
	Beats []models.Beat
}

func (c UpdateNarrativeCommand) CommandType() string { return "update_narrative" }
func (c UpdateNarrativeCommand) payload() any {
	return map[string]any{"beats": c.Beats}
}

// Control names a virtual input channel on the embedded game.
type Control string

const (
	ControlJump      Control = "jump"
	ControlSlide     Control = "slide"
	ControlAdvance   Control = "advance"
	ControlAttack    Control = "attack"
	ControlMoveLeft  Control = "move_left"
	ControlMoveRight Control = "move_right"
)

// InputCommand is a virtual button press or release, e.g. "jump_press".
type InputCommand struct {
	Control Control
	Pressed bool
}

func (c InputCommand) CommandType() string {
	if c.Pressed {
		return string(c.Control) + "_press"
	}
	return string(c.Control) + "_release"
}
func (InputCommand) payload() any { return nil }

// commandEnvelope is the wire form: {"command": "...", "data": {...}}.
type commandEnvelope struct {
	Command string `json:"command"`
	Data    any    `json:"data,omitempty"`
}

// MarshalCommand serializes a Command to its JSON wire form.
func MarshalCommand(cmd Command) ([]byte, error) {
	return json.Marshal(commandEnvelope{Command: cmd.CommandType(), Data: cmd.payload()})
}
