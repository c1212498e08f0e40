// Package playfield implements the fixed 10x20 board of packed rows:
// collision testing, locking pieces and compacting completed lines.
package playfield

import "github.com/plus3/viztris/geometry"

const (
	Width  = 10
	Height = 20

	cellBits = 3
	cellMask = 1<<cellBits - 1
	rowMask  = 1<<(Width*cellBits) - 1
)

// Row packs ten 3-bit cell colors into the low 30 bits. Cell x occupies bits
// [3x, 3x+3).
type Row uint32

// Cell returns the color stored at column x.
func (r Row) Cell(x int) geometry.Color {
	return geometry.Color(r>>(uint(x)*cellBits)) & cellMask
}

// With returns the row with column x set to color c.
func (r Row) With(x int, c geometry.Color) Row {
	shift := uint(x) * cellBits
	r &^= cellMask << shift
	r |= Row(c&cellMask) << shift
	return r & rowMask
}

// Complete reports whether every cell of the row is occupied.
func (r Row) Complete() bool {
	for x := range Width {
		if r.Cell(x) == geometry.Empty {
			return false
		}
	}
	return true
}

// Count returns the number of occupied cells.
func (r Row) Count() int {
	n := 0
	for x := range Width {
		if r.Cell(x) != geometry.Empty {
			n++
		}
	}
	return n
}

// Playfield is the board, row 0 at the top.
type Playfield [Height]Row

// Cell returns the color at (x, y). Coordinates must be on the board.
func (f *Playfield) Cell(x, y int) geometry.Color {
	return f[y].Cell(x)
}

// Set stores a color at (x, y). Coordinates must be on the board.
func (f *Playfield) Set(x, y int, c geometry.Color) {
	f[y] = f[y].With(x, c)
}

// InBounds reports whether a cell lies on the board.
func InBounds(p geometry.Point) bool {
	return p.X >= 0 && p.X < Width && p.Y >= 0 && p.Y < Height
}

// Fits reports whether all cells are on the board and unoccupied.
func (f *Playfield) Fits(cells [4]geometry.Point) bool {
	for _, c := range cells {
		if !InBounds(c) || f.Cell(c.X, c.Y) != geometry.Empty {
			return false
		}
	}
	return true
}

// Lock ORs the piece color into the four cells of its current position. The
// caller must have checked that the position fits.
func (f *Playfield) Lock(p geometry.Piece) {
	for _, c := range p.Cells() {
		f[c.Y] |= Row(p.Color&cellMask) << (uint(c.X) * cellBits)
	}
}

// ClearCompletedLines removes every complete row in a single top-to-bottom
// pass. Rows above a removed one shift down by one and row 0 is zeroed, so
// non-adjacent complete rows compact correctly. It returns the number of rows
// removed.
func (f *Playfield) ClearCompletedLines() int {
	cleared := 0
	for y := range Height {
		if !f[y].Complete() {
			continue
		}
		copy(f[1:y+1], f[:y])
		f[0] = 0
		cleared++
	}
	return cleared
}

// Occupied returns the number of non-empty cells on the board.
func (f *Playfield) Occupied() int {
	n := 0
	for _, r := range f {
		n += r.Count()
	}
	return n
}
