// Package session runs one game: the current and look-ahead pieces, the
// board, the score and the command API, organised as ECS systems that run
// once per applied command.
package session

import (
	"io"
	"math/rand/v2"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/plus3/viztris/ecs"
	"github.com/plus3/viztris/geometry"
	"github.com/plus3/viztris/playfield"
)

// Options configure a new Session. Zero values select the defaults.
type Options struct {
	FallDelay time.Duration
	Display   Display
	Rand      *rand.Rand
	Observer  Observer
	Log       log.FieldLogger
}

// Session owns all game state. It is not safe for concurrent use; the input
// loop is its only caller.
type Session struct {
	storage   *ecs.Storage
	scheduler *ecs.Scheduler

	intent  *ecs.Singleton[Intent]
	status  *ecs.Singleton[Status]
	field   *ecs.Singleton[playfield.Playfield]
	score   *ecs.Singleton[Score]
	display *ecs.Singleton[Display]
	active  *ecs.Query[activePiece]
	queued  *ecs.Query[queuedPiece]

	observer Observer
	rng      *rand.Rand
	log      log.FieldLogger
}

// New creates a session on an empty board and spawns the first current and
// look-ahead pieces.
func New(opts Options) *Session {
	if opts.FallDelay <= 0 {
		opts.FallDelay = DefaultFallDelay
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}
	if opts.Log == nil {
		discard := log.New()
		discard.SetOutput(io.Discard)
		opts.Log = discard
	}

	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[geometry.Piece](registry)
	ecs.RegisterComponent[Current](registry)
	ecs.RegisterComponent[Next](registry)
	storage := ecs.NewStorage(registry)

	s := &Session{
		storage:  storage,
		intent:   ecs.NewSingleton[Intent](storage),
		status:   ecs.NewSingleton[Status](storage, Status{Phase: Spawning}),
		field:    ecs.NewSingleton[playfield.Playfield](storage),
		score:    ecs.NewSingleton[Score](storage, NewScore(opts.FallDelay)),
		display:  ecs.NewSingleton[Display](storage, opts.Display),
		active:   ecs.NewQuery[activePiece](storage),
		queued:   ecs.NewQuery[queuedPiece](storage),
		observer: opts.Observer,
		rng:      opts.Rand,
		log:      opts.Log,
	}

	s.scheduler = ecs.NewScheduler(storage)
	s.scheduler.Register(&ControlSystem{session: s})
	s.scheduler.Register(&ResolveSystem{session: s})
	s.scheduler.Register(&SpawnSystem{session: s})

	storage.Spawn(geometry.RandomPiece(s.rng), Next{})
	s.scheduler.Once()
	return s
}

// Apply runs one frame with the given command. It returns false, doing
// nothing, once the game is over.
func (s *Session) Apply(cmd Command) bool {
	if s.Over() {
		return false
	}
	s.intent.Get().Command = cmd
	s.scheduler.Once()
	return true
}

// Phase returns the state machine phase. Between calls to Apply it is either
// Falling or GameOver.
func (s *Session) Phase() Phase {
	return s.status.Get().Phase
}

// Over reports whether the game has ended.
func (s *Session) Over() bool {
	return s.Phase() == GameOver
}

// Quit reports whether the game ended on request.
func (s *Session) Quit() bool {
	return s.status.Get().Quit
}

// Score returns the current score state.
func (s *Session) Score() Score {
	return *s.score.Get()
}

// FallDelay returns the current interval between gravity ticks.
func (s *Session) FallDelay() time.Duration {
	return s.score.Get().FallDelay
}

// Locked returns the number of pieces locked so far.
func (s *Session) Locked() int {
	return s.status.Get().Locked
}

// Current returns the piece under control.
func (s *Session) Current() (geometry.Piece, bool) {
	active, ok := s.active.First()
	if !ok {
		return geometry.Piece{}, false
	}
	return *active.Piece, true
}

// Next returns the look-ahead piece.
func (s *Session) Next() (geometry.Piece, bool) {
	queued, ok := s.queued.First()
	if !ok {
		return geometry.Piece{}, false
	}
	return *queued.Piece, true
}

// Snapshot copies the state needed for a full redraw.
func (s *Session) Snapshot() Snapshot {
	current, _ := s.Current()
	next, _ := s.Next()
	return Snapshot{
		Field:   *s.field.Get(),
		Current: current,
		Next:    next,
		Score:   *s.score.Get(),
		Display: *s.display.Get(),
	}
}

// Stats returns scheduler statistics for the systems of this session.
func (s *Session) Stats() *ecs.SchedulerStats {
	return s.scheduler.GetStats()
}

// StorageStats returns entity and singleton counts.
func (s *Session) StorageStats() *ecs.StorageStats {
	return s.storage.CollectStats()
}

func (s *Session) notifyGameOver(frame *ecs.UpdateFrame, quit bool) {
	score := *s.score.Get()
	s.log.WithField("score", score.Points).
		WithField("lines", score.Lines).
		WithField("level", score.Level).
		WithField("quit", quit).
		Info("game over")
	frame.Commands.Defer(func() { s.observer.GameOver(score, quit) })
}
