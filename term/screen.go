package term

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/plus3/viztris/geometry"
	"github.com/plus3/viztris/playfield"
	"github.com/plus3/viztris/session"
)

// Screen layout, in 1-based terminal columns and rows.
const (
	FieldX     = 30
	FieldY     = 1
	ScoreX     = 1
	ScoreY     = 2
	HelpX      = 58
	HelpY      = 1
	NextX      = 14
	NextY      = 11
	GameOverX  = 1
	GameOverY  = playfield.Height + 3
	HexY       = 25
	TelemetryY = 29
)

const (
	filledCell     = "[]"
	fieldEmptyCell = " ."
	nextEmptyCell  = "  "

	borderColor = geometry.Yellow
	scoreColor  = geometry.Green
	helpColor   = geometry.Cyan
)

var helpText = [...]string{
	"  Use cursor keys",
	"       or",
	"    s: rotate",
	"a: left,  d: right",
	"    space: drop",
	"      q: quit",
	"  c: toggle color",
	"n: toggle show next",
	"h: toggle this help",
}

// ErrUnsupportedTerminal is returned by CheckTerminal for terminals that
// cannot position the cursor.
var ErrUnsupportedTerminal = errors.New("unsupported terminal")

// CheckTerminal validates the TERM value.
func CheckTerminal(name string) error {
	if name == "" || name == "dumb" {
		return fmt.Errorf("%w: TERM=%q", ErrUnsupportedTerminal, name)
	}
	return nil
}

// Screen draws the game with ANSI escape sequences. It implements
// session.Observer; output is buffered until Flush.
type Screen struct {
	w       *bufio.Writer
	display session.Display
	next    geometry.Piece
	hasNext bool
}

var _ session.Observer = (*Screen)(nil)

// NewScreen creates a screen writing to w.
func NewScreen(w io.Writer, display session.Display) *Screen {
	return &Screen{w: bufio.NewWriter(w), display: display}
}

// Flush writes out everything drawn so far.
func (s *Screen) Flush() error {
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("flush screen: %w", err)
	}
	return nil
}

// Begin hides the cursor and enables mouse reporting.
func (s *Screen) Begin() {
	s.w.WriteString("\033[?25l")
	s.w.WriteString("\033[?1000h")
}

// End restores the cursor and mouse state and parks the cursor below the
// board.
func (s *Screen) End() {
	s.resetColors()
	s.w.WriteString("\033[?25h")
	s.w.WriteString("\033[?1000l")
	s.print(GameOverX, GameOverY+1, "")
}

// Redraw clears the terminal and draws everything in snapshot.
func (s *Screen) Redraw(snap session.Snapshot) {
	s.display = snap.Display
	s.w.WriteString("\033[2J")
	s.drawHelp()
	s.drawScore(snap.Score)
	s.drawBorder()
	s.drawField(&snap.Field)
	s.next, s.hasNext = snap.Next, true
	s.drawNext(s.display.PreviewVisible)
	s.drawPiece(snap.Current, FieldX, FieldY, true, fieldEmptyCell)
}

func (s *Screen) PieceMoved(from, to geometry.Piece) {
	s.drawPiece(from, FieldX, FieldY, false, fieldEmptyCell)
	s.drawPiece(to, FieldX, FieldY, true, fieldEmptyCell)
}

func (s *Screen) PieceLocked(piece geometry.Piece) {
	s.drawPiece(piece, FieldX, FieldY, true, fieldEmptyCell)
}

func (s *Screen) LinesCleared(lines int, field playfield.Playfield) {
	s.drawField(&field)
}

func (s *Screen) ScoreChanged(score session.Score) {
	s.drawScore(score)
}

func (s *Screen) PieceSpawned(current, next geometry.Piece) {
	if s.hasNext {
		s.drawNext(false)
	}
	s.next, s.hasNext = next, true
	s.drawNext(s.display.PreviewVisible)
	s.drawPiece(current, FieldX, FieldY, true, fieldEmptyCell)
}

func (s *Screen) DisplayChanged(snap session.Snapshot) {
	s.Redraw(snap)
}

func (s *Screen) GameOver(score session.Score, quit bool) {
	s.print(GameOverX, GameOverY, "Game over!")
	s.print(GameOverX, GameOverY+1, "")
}

// ShowStatus prints which sources woke the loop.
func (s *Screen) ShowStatus(status string, keyboard, control bool) {
	s.print(ScoreX, ScoreY+3, flag("stdin_flag", keyboard))
	s.print(ScoreX+12, ScoreY+3, flag("fifo_flag", control))
	s.print(ScoreX, ScoreY+4, fmt.Sprintf("status: %-8s", status))
}

// ShowHex prints the dump of the last keyboard read.
func (s *Screen) ShowHex(hex string) {
	s.print(1, HexY, hex)
}

// ShowTelemetry prints the last message from the control channel.
func (s *Screen) ShowTelemetry(text string) {
	s.print(1, TelemetryY, "\033[K"+strings.TrimRight(text, "\r\n"))
}

// ShowError prints err in the top left corner.
func (s *Screen) ShowError(err error) {
	s.resetColors()
	s.print(1, 1, err.Error())
}

func flag(name string, set bool) string {
	if set {
		return name
	}
	return strings.Repeat(" ", len(name))
}

func (s *Screen) print(x, y int, text string) {
	fmt.Fprintf(s.w, "\033[%d;%dH%s", y, x, text)
}

func (s *Screen) setColor(c geometry.Color) {
	if s.display.ColorEnabled {
		fmt.Fprintf(s.w, "\033[3%dm\033[4%dm", c, c)
	}
}

func (s *Screen) setForeground(c geometry.Color) {
	if s.display.ColorEnabled {
		fmt.Fprintf(s.w, "\033[3%dm", c)
	}
}

func (s *Screen) setBold() {
	s.w.WriteString("\033[1m")
}

func (s *Screen) resetColors() {
	s.w.WriteString("\033[0m")
}

func (s *Screen) drawPiece(p geometry.Piece, originX, originY int, visible bool, empty string) {
	text := empty
	if visible {
		s.setColor(p.Color)
		text = filledCell
	}
	for _, cell := range p.Cells() {
		s.print(originX+cell.X*2, originY+cell.Y, text)
	}
	if visible {
		s.resetColors()
	}
}

// drawNext draws the preview piece at the local origin of the preview box.
func (s *Screen) drawNext(visible bool) {
	s.drawPiece(s.next.At(0, 0), NextX, NextY, visible, nextEmptyCell)
}

func (s *Screen) drawField(field *playfield.Playfield) {
	for y := range playfield.Height {
		s.print(FieldX, FieldY+y, "")
		for x := range playfield.Width {
			c := field.Cell(x, y)
			if c == geometry.Empty {
				s.w.WriteString(fieldEmptyCell)
				continue
			}
			s.setColor(c)
			s.w.WriteString(filledCell)
			s.resetColors()
		}
	}
}

func (s *Screen) drawScore(score session.Score) {
	s.setBold()
	s.setForeground(scoreColor)
	s.print(ScoreX, ScoreY, fmt.Sprintf("Lines completed: %d", score.Lines))
	s.print(ScoreX, ScoreY+1, fmt.Sprintf("Level:           %d", score.Level))
	s.print(ScoreX, ScoreY+2, fmt.Sprintf("Score:           %d", score.Points))
	s.resetColors()
}

func (s *Screen) drawHelp() {
	blank := strings.Repeat(" ", len(helpText[len(helpText)-1]))
	if s.display.HelpVisible {
		s.setForeground(helpColor)
		s.setBold()
	}
	for i, line := range helpText {
		if !s.display.HelpVisible {
			line = blank
		}
		s.print(HelpX, HelpY+i, line)
	}
	if s.display.HelpVisible {
		s.resetColors()
	}
}

func (s *Screen) drawBorder() {
	left := FieldX - 2
	right := FieldX + playfield.Width*2

	s.setBold()
	s.setForeground(borderColor)
	for i := range playfield.Height + 1 {
		s.print(left, FieldY+i, "<|")
		s.print(right, FieldY+i, "|>")
	}
	bottom := FieldY + playfield.Height
	for i := range playfield.Width {
		s.print(FieldX+i*2, bottom, "==")
		s.print(FieldX+i*2, bottom+1, "\\/")
	}
	s.resetColors()
}
