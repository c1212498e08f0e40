package term

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/viztris/geometry"
	"github.com/plus3/viztris/playfield"
	"github.com/plus3/viztris/session"
)

func at(x, y int, text string) string {
	return fmt.Sprintf("\033[%d;%dH%s", y, x, text)
}

func newTestScreen(display session.Display) (*Screen, *bytes.Buffer) {
	var out bytes.Buffer
	return NewScreen(&out, display), &out
}

func TestCheckTerminal(t *testing.T) {
	assert.ErrorIs(t, CheckTerminal(""), ErrUnsupportedTerminal)
	assert.ErrorIs(t, CheckTerminal("dumb"), ErrUnsupportedTerminal)
	assert.NoError(t, CheckTerminal("xterm-256color"))
}

func TestScreenBuffersUntilFlush(t *testing.T) {
	screen, out := newTestScreen(session.Display{})
	screen.Begin()
	assert.Zero(t, out.Len())

	require.NoError(t, screen.Flush())
	assert.Equal(t, "\033[?25l\033[?1000h", out.String())

	out.Reset()
	screen.End()
	require.NoError(t, screen.Flush())
	assert.Contains(t, out.String(), "\033[?25h\033[?1000l")
}

func TestPieceMovedErasesAndDraws(t *testing.T) {
	screen, out := newTestScreen(session.Display{ColorEnabled: true})
	from := geometry.NewPiece(geometry.Square, geometry.Blue, 0).At(3, 0)
	to := from.At(3, 1)

	screen.PieceMoved(from, to)
	require.NoError(t, screen.Flush())

	text := out.String()
	// Square cells sit at local columns 1-2, two terminal columns per cell.
	erase := at(FieldX+8, FieldY, fieldEmptyCell)
	assert.Contains(t, text, erase)
	assert.Contains(t, text, at(FieldX+8, FieldY+2, filledCell))
	assert.Less(t, strings.Index(text, erase), strings.Index(text, "\033[34m\033[44m"))
}

func TestColorDisabled(t *testing.T) {
	screen, out := newTestScreen(session.Display{})
	screen.PieceLocked(geometry.NewPiece(geometry.Line, geometry.Red, 1).At(0, 18))
	require.NoError(t, screen.Flush())

	assert.NotContains(t, out.String(), "\033[31m")
	assert.Contains(t, out.String(), at(FieldX, FieldY+19, filledCell))
}

func TestLinesClearedRedrawsField(t *testing.T) {
	screen, out := newTestScreen(session.Display{})
	var field playfield.Playfield
	field.Set(0, playfield.Height-1, geometry.Green)

	screen.LinesCleared(1, field)
	require.NoError(t, screen.Flush())

	text := out.String()
	assert.Contains(t, text, at(FieldX, FieldY, strings.Repeat(fieldEmptyCell, playfield.Width)))
	assert.Contains(t, text, at(FieldX, FieldY+playfield.Height-1, filledCell+"\033[0m"+strings.Repeat(fieldEmptyCell, playfield.Width-1)))
}

func TestScoreChanged(t *testing.T) {
	screen, out := newTestScreen(session.Display{})
	screen.ScoreChanged(session.Score{Lines: 3, Points: 5, Level: 1})
	require.NoError(t, screen.Flush())

	assert.Contains(t, out.String(), at(ScoreX, ScoreY, "Lines completed: 3"))
	assert.Contains(t, out.String(), at(ScoreX, ScoreY+1, "Level:           1"))
	assert.Contains(t, out.String(), at(ScoreX, ScoreY+2, "Score:           5"))
}

func TestPreviewVisibility(t *testing.T) {
	next := geometry.NewPiece(geometry.Square, geometry.Cyan, 0)
	current := geometry.NewPiece(geometry.T, geometry.Red, 0).At(3, 0)

	t.Run("visible", func(t *testing.T) {
		screen, out := newTestScreen(session.Display{PreviewVisible: true})
		screen.PieceSpawned(current, next)
		require.NoError(t, screen.Flush())
		assert.Contains(t, out.String(), at(NextX+2, NextY, filledCell))
	})

	t.Run("hidden", func(t *testing.T) {
		screen, out := newTestScreen(session.Display{})
		screen.PieceSpawned(current, next)
		require.NoError(t, screen.Flush())
		assert.Contains(t, out.String(), at(NextX+2, NextY, nextEmptyCell))
		assert.NotContains(t, out.String(), at(NextX+2, NextY, filledCell))
	})
}

func TestRedraw(t *testing.T) {
	screen, out := newTestScreen(session.Display{})
	snap := session.Snapshot{
		Current: geometry.NewPiece(geometry.Line, geometry.Cyan, 0).At(3, 0),
		Next:    geometry.NewPiece(geometry.Z, geometry.Red, 0),
		Score:   session.NewScore(session.DefaultFallDelay),
		Display: session.Display{HelpVisible: true, PreviewVisible: true},
	}

	screen.Redraw(snap)
	require.NoError(t, screen.Flush())

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "\033[2J"))
	assert.Contains(t, text, at(HelpX, HelpY, helpText[0]))
	assert.Contains(t, text, at(FieldX-2, FieldY, "<|"))
	assert.Contains(t, text, at(FieldX, FieldY+playfield.Height+1, "\\/"))
	assert.Contains(t, text, at(ScoreX, ScoreY+1, "Level:           1"))

	out.Reset()
	snap.Display.HelpVisible = false
	screen.DisplayChanged(snap)
	require.NoError(t, screen.Flush())
	assert.NotContains(t, out.String(), helpText[0])
}

func TestStatusLines(t *testing.T) {
	screen, out := newTestScreen(session.Display{})
	screen.ShowStatus("both", true, true)
	screen.ShowHex("61.00.00.00:00.00.00.00:00.00.00.00:00.00.00.00")
	screen.ShowTelemetry("speed=3\n")
	screen.GameOver(session.Score{}, true)
	require.NoError(t, screen.Flush())

	text := out.String()
	assert.Contains(t, text, at(ScoreX, ScoreY+3, "stdin_flag"))
	assert.Contains(t, text, at(ScoreX+12, ScoreY+3, "fifo_flag"))
	assert.Contains(t, text, at(ScoreX, ScoreY+4, "status: both    "))
	assert.Contains(t, text, at(1, HexY, "61.00.00.00"))
	assert.Contains(t, text, at(1, TelemetryY, "\033[Kspeed=3"))
	assert.NotContains(t, text, "speed=3\n")
	assert.Contains(t, text, at(GameOverX, GameOverY, "Game over!"))

	out.Reset()
	screen.ShowStatus("timeout", false, false)
	require.NoError(t, screen.Flush())
	assert.Contains(t, out.String(), at(ScoreX, ScoreY+3, "          "))
}
