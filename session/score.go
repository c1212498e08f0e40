package session

import "time"

const (
	// LevelThreshold is the score step between levels.
	LevelThreshold = 20
	// DelayFactor scales the fall delay on every level-up.
	DelayFactor = 0.8
	// DefaultFallDelay is the fall delay at level 1.
	DefaultFallDelay = time.Second
)

// Score is the line, point and level state of a game.
type Score struct {
	Lines     int
	Points    int
	Level     int
	FallDelay time.Duration
}

// NewScore returns the level 1 state with the given fall delay.
func NewScore(fallDelay time.Duration) Score {
	return Score{Level: 1, FallDelay: fallDelay}
}

// Add records an n-line clear: n² points and n lines. Each time the points
// pass LevelThreshold times the current level, the level goes up by one and
// the fall delay shrinks by DelayFactor. It returns the number of levels
// gained.
func (s *Score) Add(lines int) int {
	if lines <= 0 {
		return 0
	}
	s.Lines += lines
	s.Points += lines * lines

	gained := 0
	for s.Points > LevelThreshold*s.Level {
		s.Level++
		s.FallDelay = time.Duration(float64(s.FallDelay) * DelayFactor)
		gained++
	}
	return gained
}
