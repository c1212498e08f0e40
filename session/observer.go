package session

import (
	"github.com/plus3/viztris/geometry"
	"github.com/plus3/viztris/playfield"
)

// Observer receives redraw hooks. Hooks run after the frame that caused them
// has been fully applied.
type Observer interface {
	PieceMoved(from, to geometry.Piece)
	PieceLocked(piece geometry.Piece)
	LinesCleared(lines int, field playfield.Playfield)
	ScoreChanged(score Score)
	PieceSpawned(current, next geometry.Piece)
	DisplayChanged(snapshot Snapshot)
	GameOver(score Score, quit bool)
}

// NopObserver ignores every hook.
type NopObserver struct{}

func (NopObserver) PieceMoved(from, to geometry.Piece)                {}
func (NopObserver) PieceLocked(piece geometry.Piece)                  {}
func (NopObserver) LinesCleared(lines int, field playfield.Playfield) {}
func (NopObserver) ScoreChanged(score Score)                          {}
func (NopObserver) PieceSpawned(current, next geometry.Piece)         {}
func (NopObserver) DisplayChanged(snapshot Snapshot)                  {}
func (NopObserver) GameOver(score Score, quit bool)                   {}
