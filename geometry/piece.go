package geometry

import "math/rand/v2"

// Piece is a shape instance placed on the board. X and Y locate the top-left
// corner of the shape's 4x4 local grid.
type Piece struct {
	Shape       Shape
	Color       Color
	X, Y        int
	Orientation int
	Symmetry    int
}

// NewPiece creates a piece at the origin. The orientation is reduced modulo
// the shape's symmetry.
func NewPiece(shape Shape, color Color, orientation int) Piece {
	symmetry := Symmetry(shape)
	return Piece{
		Shape:       shape,
		Color:       color,
		Orientation: wrap(orientation, symmetry),
		Symmetry:    symmetry,
	}
}

// RandomPiece picks a shape, a hue and an orientation uniformly.
func RandomPiece(rng *rand.Rand) Piece {
	shape := Shape(rng.IntN(ShapeCount))
	color := Hues[rng.IntN(len(Hues))]
	return NewPiece(shape, color, rng.IntN(Symmetry(shape)))
}

// Cells returns the four absolute board cells the piece covers.
func (p Piece) Cells() [cellCount]Point {
	cells := Offsets(p.Shape, p.Orientation)
	for i := range cells {
		cells[i].X += p.X
		cells[i].Y += p.Y
	}
	return cells
}

// Moved returns the candidate piece after a shift of (dx, dy) and a rotation
// of dz steps. The receiver is left untouched.
func (p Piece) Moved(dx, dy, dz int) Piece {
	p.X += dx
	p.Y += dy
	p.Orientation = wrap(p.Orientation+dz, p.Symmetry)
	return p
}

// At returns a copy of the piece placed at (x, y).
func (p Piece) At(x, y int) Piece {
	p.X = x
	p.Y = y
	return p
}
