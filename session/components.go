package session

import (
	"github.com/plus3/viztris/geometry"
	"github.com/plus3/viztris/playfield"
)

// Current tags the piece under player control.
type Current struct{}

// Next tags the look-ahead piece.
type Next struct{}

// Phase is the state of the session state machine.
type Phase int

const (
	Falling Phase = iota
	Resolving
	Spawning
	GameOver
)

func (p Phase) String() string {
	switch p {
	case Falling:
		return "falling"
	case Resolving:
		return "resolving"
	case Spawning:
		return "spawning"
	case GameOver:
		return "game-over"
	default:
		return "unknown"
	}
}

// Status is the session state machine singleton.
type Status struct {
	Phase Phase
	// Quit is set when the game ended on request rather than a blocked spawn.
	Quit   bool
	Locked int
}

// Intent holds the command waiting for the next frame.
type Intent struct {
	Command Command
}

// Display holds the presentation toggles.
type Display struct {
	HelpVisible    bool
	PreviewVisible bool
	ColorEnabled   bool
}

// Snapshot is a copy of everything the presentation needs for a full redraw.
type Snapshot struct {
	Field   playfield.Playfield
	Current geometry.Piece
	Next    geometry.Piece
	Score   Score
	Display Display
}
