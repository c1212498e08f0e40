package playfield

import "github.com/plus3/viztris/geometry"

// MoveResult is the outcome of a movement attempt.
type MoveResult int

const (
	// Moved means the candidate position was committed.
	Moved MoveResult = iota
	// Rejected means a sideways move or rotation did not fit; the piece is unchanged.
	Rejected
	// Settled means a downward step did not fit and the piece must be locked.
	Settled
)

func (r MoveResult) String() string {
	switch r {
	case Moved:
		return "moved"
	case Rejected:
		return "rejected"
	case Settled:
		return "settled"
	default:
		return "unknown"
	}
}

// AttemptMove shifts the piece by (dx, dy) and rotates it by dz steps if the
// candidate fits. A failed attempt with dy == 0 is silent; a failed attempt
// with dy != 0 reports Settled.
func AttemptMove(f *Playfield, p *geometry.Piece, dx, dy, dz int) MoveResult {
	candidate := p.Moved(dx, dy, dz)
	if f.Fits(candidate.Cells()) {
		*p = candidate
		return Moved
	}
	if dy == 0 {
		return Rejected
	}
	return Settled
}
