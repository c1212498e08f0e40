package session

import (
	"reflect"

	"github.com/plus3/viztris/ecs"
	"github.com/plus3/viztris/geometry"
	"github.com/plus3/viztris/playfield"
)

// Spawn position of a new current piece: horizontally centred, top row.
const (
	SpawnX = (playfield.Width - 4) / 2
	SpawnY = 0
)

type activePiece struct {
	ecs.EntityId
	*geometry.Piece
	*Current
}

type queuedPiece struct {
	ecs.EntityId
	*geometry.Piece
	*Next
}

// ControlSystem applies the pending intent to the current piece while the
// session is Falling. A settled soft drop or a hard drop moves the session to
// Resolving within the same frame.
type ControlSystem struct {
	Intent  ecs.Singleton[Intent]
	Status  ecs.Singleton[Status]
	Field   ecs.Singleton[playfield.Playfield]
	Display ecs.Singleton[Display]
	Active  ecs.Query[activePiece]

	session *Session
}

func (s *ControlSystem) Execute(frame *ecs.UpdateFrame) {
	intent := s.Intent.Get()
	cmd := intent.Command
	intent.Command = CommandNone

	status := s.Status.Get()
	if cmd == CommandNone || status.Phase != Falling {
		return
	}

	switch cmd {
	case CommandQuit:
		status.Phase = GameOver
		status.Quit = true
		s.session.notifyGameOver(frame, true)
		return
	case CommandToggleHelp, CommandTogglePreview, CommandToggleColor:
		s.toggle(frame, cmd)
		return
	}

	active, ok := s.Active.First()
	if !ok {
		return
	}
	field := s.Field.Get()
	before := *active.Piece

	switch cmd {
	case CommandLeft:
		playfield.AttemptMove(field, active.Piece, -1, 0, 0)
	case CommandRight:
		playfield.AttemptMove(field, active.Piece, 1, 0, 0)
	case CommandRotate:
		playfield.AttemptMove(field, active.Piece, 0, 0, 1)
	case CommandSoftDrop, CommandGravity:
		if playfield.AttemptMove(field, active.Piece, 0, 1, 0) == playfield.Settled {
			status.Phase = Resolving
		}
	case CommandHardDrop:
		for playfield.AttemptMove(field, active.Piece, 0, 1, 0) == playfield.Moved {
		}
		status.Phase = Resolving
	}

	if after := *active.Piece; after != before {
		frame.Commands.Defer(func() { s.session.observer.PieceMoved(before, after) })
	}
}

func (s *ControlSystem) toggle(frame *ecs.UpdateFrame, cmd Command) {
	display := s.Display.Get()
	switch cmd {
	case CommandToggleHelp:
		display.HelpVisible = !display.HelpVisible
	case CommandTogglePreview:
		display.PreviewVisible = !display.PreviewVisible
	case CommandToggleColor:
		display.ColorEnabled = !display.ColorEnabled
	}
	frame.Commands.Defer(func() { s.session.observer.DisplayChanged(s.session.Snapshot()) })
}

// ResolveSystem locks a settled piece, clears completed lines and updates the
// score, then hands over to spawning.
type ResolveSystem struct {
	Status ecs.Singleton[Status]
	Field  ecs.Singleton[playfield.Playfield]
	Score  ecs.Singleton[Score]
	Active ecs.Query[activePiece]

	session *Session
}

func (s *ResolveSystem) Execute(frame *ecs.UpdateFrame) {
	status := s.Status.Get()
	if status.Phase != Resolving {
		return
	}
	status.Phase = Spawning

	active, ok := s.Active.First()
	if !ok {
		return
	}

	piece := *active.Piece
	field := s.Field.Get()
	field.Lock(piece)
	status.Locked++
	frame.Commands.Delete(active.EntityId)
	frame.Commands.Defer(func() { s.session.observer.PieceLocked(piece) })

	lines := field.ClearCompletedLines()
	if lines == 0 {
		return
	}

	score := s.Score.Get()
	if gained := score.Add(lines); gained > 0 {
		s.session.log.WithField("level", score.Level).
			WithField("delay", score.FallDelay).
			Info("level up")
	}

	compacted, updated := *field, *score
	frame.Commands.Defer(func() {
		s.session.observer.LinesCleared(lines, compacted)
		s.session.observer.ScoreChanged(updated)
	})
}

// SpawnSystem promotes the look-ahead piece to the current slot and queues a
// fresh look-ahead piece. A promoted piece that does not fit ends the game.
type SpawnSystem struct {
	Status ecs.Singleton[Status]
	Field  ecs.Singleton[playfield.Playfield]
	Queue  ecs.Query[queuedPiece]

	session *Session
}

func (s *SpawnSystem) Execute(frame *ecs.UpdateFrame) {
	status := s.Status.Get()
	if status.Phase != Spawning {
		return
	}

	var current geometry.Piece
	queued, ok := s.Queue.First()
	if ok {
		current = queued.Piece.At(SpawnX, SpawnY)
	} else {
		current = geometry.RandomPiece(s.session.rng).At(SpawnX, SpawnY)
	}

	if !s.Field.Get().Fits(current.Cells()) {
		status.Phase = GameOver
		s.session.notifyGameOver(frame, false)
		return
	}

	if ok {
		*queued.Piece = current
		frame.Commands.RemoveComponent(queued.EntityId, reflect.TypeFor[Next]())
		frame.Commands.AddComponent(queued.EntityId, Current{})
	} else {
		frame.Commands.Spawn(current, Current{})
	}

	next := geometry.RandomPiece(s.session.rng)
	frame.Commands.Spawn(next, Next{})
	status.Phase = Falling

	s.session.log.WithField("shape", current.Shape).Debug("piece spawned")
	frame.Commands.Defer(func() { s.session.observer.PieceSpawned(current, next) })
}
