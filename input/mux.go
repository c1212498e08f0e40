package input

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/plus3/viztris/session"
)

// TelemetrySize bounds one drain of the control channel.
const TelemetrySize = 65535

// TapLineMax bounds one line written to the tap, newline included. Pipe writes
// up to this size are atomic, so a full tap drops whole lines.
const TapLineMax = 512

// Ready reports which sources have data.
type Ready struct {
	Keyboard bool
	Control  bool
}

// Waiter blocks until a source is ready or the timeout elapses.
type Waiter interface {
	Wait(timeout time.Duration) (Ready, error)
}

// Status describes how a wake-up came about.
type Status int

const (
	StatusTimeout Status = iota
	StatusPipe
	StatusStdin
	StatusBoth
	// StatusBuffered means the command came from an earlier keyboard read.
	StatusBuffered
	// StatusInterrupted means the wait ended early without data.
	StatusInterrupted
)

var statusNames = [...]string{
	StatusTimeout:     "timeout",
	StatusPipe:        "pipe",
	StatusStdin:       "stdin",
	StatusBoth:        "both",
	StatusBuffered:    "buffered",
	StatusInterrupted: "interrupted",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// Keyboard reports whether the keyboard was ready at this wake-up.
func (s Status) Keyboard() bool {
	return s == StatusStdin || s == StatusBoth
}

// Control reports whether the control channel was ready at this wake-up.
func (s Status) Control() bool {
	return s == StatusPipe || s == StatusBoth
}

// Event is the outcome of one wake-up.
type Event struct {
	Command session.Command
	Status  Status
	// Hex is the dump of the keyboard read, empty when nothing was read.
	Hex string
	// Telemetry is the text drained from the control channel.
	Telemetry    string
	HasTelemetry bool
}

// Options configure a Multiplexer.
type Options struct {
	Keyboard io.Reader
	Control  io.Reader
	// Tap receives every keyboard read as a hex line and echoes telemetry.
	// It may be nil.
	Tap    io.Writer
	Waiter Waiter
	Now    func() time.Time
	Log    log.FieldLogger
}

// Multiplexer turns the sources into one Event per call to Next.
type Multiplexer struct {
	keyboard io.Reader
	control  io.Reader
	tap      io.Writer
	waiter   Waiter
	now      func() time.Time
	log      log.FieldLogger

	decoder   Decoder
	deadline  time.Time
	telemetry []byte
}

// NewMultiplexer creates a multiplexer. The first gravity deadline is armed by
// the first call to Next.
func NewMultiplexer(opts Options) *Multiplexer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Tap == nil {
		opts.Tap = io.Discard
	}
	if opts.Log == nil {
		discard := log.New()
		discard.SetOutput(io.Discard)
		opts.Log = discard
	}
	return &Multiplexer{
		keyboard:  opts.Keyboard,
		control:   opts.Control,
		tap:       opts.Tap,
		waiter:    opts.Waiter,
		now:       opts.Now,
		log:       opts.Log,
		telemetry: make([]byte, TelemetrySize),
	}
}

// Deadline returns the time of the next gravity tick.
func (m *Multiplexer) Deadline() time.Time {
	return m.deadline
}

// Next returns the command for one wake-up.
//
// Bytes left over from an earlier keyboard read are dispatched first, one per
// call and without waiting. Otherwise Next waits until the gravity deadline.
// A timeout yields CommandGravity and re-arms the deadline to now + delay.
// Any other wake-up keeps the deadline, so the next wait is shorter. When both
// sources are ready the control channel is drained before the keyboard is
// read.
//
// Transient read and wait errors produce an event without a command. Any
// other I/O error is returned. A closed keyboard yields CommandQuit.
func (m *Multiplexer) Next(delay time.Duration) (Event, error) {
	if cmd, ok := m.decoder.Next(); ok {
		return Event{Command: cmd, Status: StatusBuffered}, nil
	}

	now := m.now()
	if m.deadline.IsZero() {
		m.deadline = now.Add(delay)
	}

	remaining := m.deadline.Sub(now)
	if remaining <= 0 {
		m.deadline = now.Add(delay)
		return Event{Command: session.CommandGravity, Status: StatusTimeout}, nil
	}

	ready, err := m.waiter.Wait(remaining)
	if err != nil {
		if IsTransient(err) {
			return Event{Status: StatusInterrupted}, nil
		}
		return Event{}, fmt.Errorf("wait for input: %w", err)
	}

	var ev Event
	switch {
	case ready.Control && ready.Keyboard:
		ev.Status = StatusBoth
	case ready.Control:
		ev.Status = StatusPipe
	case ready.Keyboard:
		ev.Status = StatusStdin
	default:
		m.deadline = m.now().Add(delay)
		return Event{Command: session.CommandGravity, Status: StatusTimeout}, nil
	}

	if ready.Control {
		if err := m.drainControl(&ev); err != nil {
			return ev, err
		}
	}
	if ready.Keyboard {
		if err := m.readKeyboard(&ev); err != nil {
			return ev, err
		}
	}
	return ev, nil
}

func (m *Multiplexer) drainControl(ev *Event) error {
	n, err := m.control.Read(m.telemetry)
	if err != nil && !errors.Is(err, io.EOF) {
		if IsTransient(err) {
			return nil
		}
		return fmt.Errorf("read control channel: %w", err)
	}
	if n <= 0 {
		return nil
	}

	ev.Telemetry = string(m.telemetry[:n])
	ev.HasTelemetry = true
	m.log.WithField("bytes", n).Debug("telemetry received")

	line := strings.TrimRight(ev.Telemetry, "\r\n")
	if len(line) > TapLineMax-1 {
		line = line[:TapLineMax-1]
	}
	return m.writeTap(line + "\n")
}

func (m *Multiplexer) readKeyboard(ev *Event) error {
	var buf [ReadSize]byte
	n, err := m.keyboard.Read(buf[:])
	if err != nil && !errors.Is(err, io.EOF) {
		if IsTransient(err) {
			return nil
		}
		return fmt.Errorf("read keyboard: %w", err)
	}
	if n <= 0 {
		m.log.Info("keyboard closed")
		ev.Command = session.CommandQuit
		return nil
	}

	m.decoder.Load(buf[:n])
	ev.Hex = FormatHex(m.decoder.Buffer())
	if err := m.writeTap(ev.Hex + "\n"); err != nil {
		return err
	}
	ev.Command, _ = m.decoder.Next()
	return nil
}

// writeTap drops lines the tap has no room for; only other errors are
// returned.
func (m *Multiplexer) writeTap(line string) error {
	_, err := io.WriteString(m.tap, line)
	switch {
	case err == nil:
		return nil
	case IsTransient(err), errors.Is(err, io.ErrShortWrite):
		m.log.WithError(err).WithField("bytes", len(line)).Debug("tap line dropped")
		return nil
	}
	return fmt.Errorf("write control output: %w", err)
}
