package input

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/plus3/viztris/session"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

type waitResult struct {
	ready   Ready
	elapsed time.Duration
	err     error
}

// scriptedWaiter replays results in order and advances the clock. A result
// with nothing ready, or an exhausted script, is a full timeout.
type scriptedWaiter struct {
	clock    *fakeClock
	results  []waitResult
	timeouts []time.Duration
}

func (w *scriptedWaiter) Wait(timeout time.Duration) (Ready, error) {
	w.timeouts = append(w.timeouts, timeout)
	if len(w.results) == 0 {
		w.clock.now = w.clock.now.Add(timeout)
		return Ready{}, nil
	}
	r := w.results[0]
	w.results = w.results[1:]
	if r.ready == (Ready{}) && r.err == nil {
		r.elapsed = timeout
	}
	w.clock.now = w.clock.now.Add(r.elapsed)
	return r.ready, r.err
}

type readResult struct {
	data string
	err  error
}

// scriptedReader returns one scripted result per Read, then EAGAIN.
type scriptedReader struct {
	reads []readResult
}

func (r *scriptedReader) Read(p []byte) (int, error) {
	if len(r.reads) == 0 {
		return 0, unix.EAGAIN
	}
	next := r.reads[0]
	r.reads = r.reads[1:]
	return copy(p, next.data), next.err
}

type muxFixture struct {
	clock    *fakeClock
	waiter   *scriptedWaiter
	keyboard *scriptedReader
	control  *scriptedReader
	tap      *bytes.Buffer
	mux      *Multiplexer
	start    time.Time
}

func newMuxFixture() *muxFixture {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := &muxFixture{
		clock:    &fakeClock{now: start},
		keyboard: &scriptedReader{},
		control:  &scriptedReader{},
		tap:      &bytes.Buffer{},
		start:    start,
	}
	f.waiter = &scriptedWaiter{clock: f.clock}
	f.mux = NewMultiplexer(Options{
		Keyboard: f.keyboard,
		Control:  f.control,
		Tap:      f.tap,
		Waiter:   f.waiter,
		Now:      f.clock.Now,
	})
	return f
}

func TestTimeoutYieldsGravity(t *testing.T) {
	f := newMuxFixture()

	ev, err := f.mux.Next(time.Second)
	require.NoError(t, err)
	assert.Equal(t, session.CommandGravity, ev.Command)
	assert.Equal(t, StatusTimeout, ev.Status)
	assert.Equal(t, f.start.Add(2*time.Second), f.mux.Deadline())

	_, err = f.mux.Next(500 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, f.waiter.timeouts)
	assert.Equal(t, f.start.Add(2500*time.Millisecond), f.mux.Deadline())
	assert.Empty(t, f.tap.String())
}

func TestKeyboardKeepsDeadline(t *testing.T) {
	f := newMuxFixture()
	f.waiter.results = []waitResult{
		{ready: Ready{Keyboard: true}, elapsed: 300 * time.Millisecond},
	}
	f.keyboard.reads = []readResult{{data: "a"}}

	ev, err := f.mux.Next(time.Second)
	require.NoError(t, err)
	assert.Equal(t, session.CommandLeft, ev.Command)
	assert.Equal(t, StatusStdin, ev.Status)
	assert.Equal(t, "61.00.00.00:00.00.00.00:00.00.00.00:00.00.00.00", ev.Hex)
	assert.Equal(t, f.start.Add(time.Second), f.mux.Deadline())

	ev, err = f.mux.Next(time.Second)
	require.NoError(t, err)
	assert.Equal(t, session.CommandGravity, ev.Command)
	assert.Equal(t, []time.Duration{time.Second, 700 * time.Millisecond}, f.waiter.timeouts)
	assert.Equal(t, f.start.Add(2*time.Second), f.mux.Deadline())
}

func TestArrowAcrossThreeDispatches(t *testing.T) {
	f := newMuxFixture()
	f.waiter.results = []waitResult{
		{ready: Ready{Keyboard: true}, elapsed: 10 * time.Millisecond},
	}
	f.keyboard.reads = []readResult{{data: "\x1b[A"}}

	var cmds []session.Command
	var statuses []Status
	for range 3 {
		ev, err := f.mux.Next(time.Second)
		require.NoError(t, err)
		cmds = append(cmds, ev.Command)
		statuses = append(statuses, ev.Status)
	}

	assert.Equal(t, []session.Command{session.CommandNone, session.CommandNone, session.CommandRotate}, cmds)
	assert.Equal(t, []Status{StatusStdin, StatusBuffered, StatusBuffered}, statuses)
	assert.Len(t, f.waiter.timeouts, 1, "buffered bytes are served without waiting")
	assert.Equal(t, "1B.5B.41.00:00.00.00.00:00.00.00.00:00.00.00.00\n", f.tap.String())
}

func TestBothReadyDrainsControlFirst(t *testing.T) {
	f := newMuxFixture()
	f.waiter.results = []waitResult{
		{ready: Ready{Keyboard: true, Control: true}, elapsed: 100 * time.Millisecond},
	}
	f.control.reads = []readResult{{data: "hello\n"}}
	f.keyboard.reads = []readResult{{data: "d"}}

	ev, err := f.mux.Next(time.Second)
	require.NoError(t, err)
	assert.Equal(t, StatusBoth, ev.Status)
	assert.Equal(t, session.CommandRight, ev.Command)
	assert.True(t, ev.HasTelemetry)
	assert.Equal(t, "hello\n", ev.Telemetry)
	assert.Equal(t, "hello\n64.00.00.00:00.00.00.00:00.00.00.00:00.00.00.00\n", f.tap.String())
	assert.Equal(t, f.start.Add(time.Second), f.mux.Deadline())
}

func TestControlOnlyIsTelemetry(t *testing.T) {
	f := newMuxFixture()
	f.waiter.results = []waitResult{
		{ready: Ready{Control: true}, elapsed: 100 * time.Millisecond},
	}
	f.control.reads = []readResult{{data: "x=1"}}

	ev, err := f.mux.Next(time.Second)
	require.NoError(t, err)
	assert.Equal(t, StatusPipe, ev.Status)
	assert.Equal(t, session.CommandNone, ev.Command)
	assert.Equal(t, "x=1", ev.Telemetry)
	assert.Empty(t, ev.Hex)
	assert.Equal(t, "x=1\n", f.tap.String())
}

func TestTransientErrors(t *testing.T) {
	t.Run("wait", func(t *testing.T) {
		f := newMuxFixture()
		f.waiter.results = []waitResult{
			{err: unix.EINTR, elapsed: 200 * time.Millisecond},
		}

		ev, err := f.mux.Next(time.Second)
		require.NoError(t, err)
		assert.Equal(t, StatusInterrupted, ev.Status)
		assert.Equal(t, session.CommandNone, ev.Command)
		assert.Equal(t, f.start.Add(time.Second), f.mux.Deadline())
	})

	t.Run("reads", func(t *testing.T) {
		f := newMuxFixture()
		f.waiter.results = []waitResult{
			{ready: Ready{Keyboard: true, Control: true}, elapsed: time.Millisecond},
		}
		f.control.reads = []readResult{{err: unix.EAGAIN}}
		f.keyboard.reads = []readResult{{err: unix.EWOULDBLOCK}}

		ev, err := f.mux.Next(time.Second)
		require.NoError(t, err)
		assert.Equal(t, session.CommandNone, ev.Command)
		assert.False(t, ev.HasTelemetry)
		assert.Empty(t, ev.Hex)
		assert.Empty(t, f.tap.String())
	})
}

func TestHardErrors(t *testing.T) {
	t.Run("keyboard", func(t *testing.T) {
		f := newMuxFixture()
		f.waiter.results = []waitResult{{ready: Ready{Keyboard: true}}}
		f.keyboard.reads = []readResult{{err: unix.EIO}}

		_, err := f.mux.Next(time.Second)
		require.Error(t, err)
		assert.ErrorIs(t, err, unix.EIO)
		assert.Contains(t, err.Error(), "read keyboard")
	})

	t.Run("control", func(t *testing.T) {
		f := newMuxFixture()
		f.waiter.results = []waitResult{{ready: Ready{Control: true}}}
		f.control.reads = []readResult{{err: unix.EBADF}}

		_, err := f.mux.Next(time.Second)
		assert.ErrorIs(t, err, unix.EBADF)
	})

	t.Run("wait", func(t *testing.T) {
		f := newMuxFixture()
		f.waiter.results = []waitResult{{err: unix.EBADF}}

		_, err := f.mux.Next(time.Second)
		assert.ErrorIs(t, err, unix.EBADF)
	})

	t.Run("tap", func(t *testing.T) {
		f := newMuxFixture()
		f.waiter.results = []waitResult{{ready: Ready{Keyboard: true}}}
		f.keyboard.reads = []readResult{{data: "a"}}
		f.mux.tap = failingWriter{err: unix.EPIPE}

		_, err := f.mux.Next(time.Second)
		assert.ErrorIs(t, err, unix.EPIPE)
	})
}

type failingWriter struct {
	err error
}

func (w failingWriter) Write([]byte) (int, error) {
	return 0, w.err
}

// shortWriter accepts half of every write.
type shortWriter struct {
	bytes.Buffer
}

func (w *shortWriter) Write(p []byte) (int, error) {
	n, _ := w.Buffer.Write(p[:len(p)/2])
	return n, io.ErrShortWrite
}

func TestTapShortWriteIsDropped(t *testing.T) {
	f := newMuxFixture()
	f.waiter.results = []waitResult{
		{ready: Ready{Keyboard: true, Control: true}, elapsed: time.Millisecond},
	}
	f.control.reads = []readResult{{data: "status ok"}}
	f.keyboard.reads = []readResult{{data: "d"}}
	f.mux.tap = &shortWriter{}

	ev, err := f.mux.Next(time.Second)
	require.NoError(t, err)
	assert.Equal(t, session.CommandRight, ev.Command)
	assert.Equal(t, "status ok", ev.Telemetry)
}

func TestTelemetryEchoIsBounded(t *testing.T) {
	f := newMuxFixture()
	f.waiter.results = []waitResult{
		{ready: Ready{Control: true}, elapsed: time.Millisecond},
	}
	long := strings.Repeat("t", 20000)
	f.control.reads = []readResult{{data: long + "\n"}}

	ev, err := f.mux.Next(time.Second)
	require.NoError(t, err)
	assert.Equal(t, long+"\n", ev.Telemetry, "the event keeps the whole message")

	tap := f.tap.String()
	assert.Len(t, tap, TapLineMax)
	assert.True(t, strings.HasSuffix(tap, "t\n"))
}

func TestKeyboardClosedQuits(t *testing.T) {
	f := newMuxFixture()
	f.waiter.results = []waitResult{{ready: Ready{Keyboard: true}}}
	f.keyboard.reads = []readResult{{err: io.EOF}}

	ev, err := f.mux.Next(time.Second)
	require.NoError(t, err)
	assert.Equal(t, session.CommandQuit, ev.Command)
}

func TestOverdueDeadlineSkipsWait(t *testing.T) {
	f := newMuxFixture()
	f.waiter.results = []waitResult{
		{ready: Ready{Keyboard: true}, elapsed: 1500 * time.Millisecond},
	}
	f.keyboard.reads = []readResult{{data: "s"}}

	ev, err := f.mux.Next(time.Second)
	require.NoError(t, err)
	assert.Equal(t, session.CommandRotate, ev.Command)

	ev, err = f.mux.Next(time.Second)
	require.NoError(t, err)
	assert.Equal(t, session.CommandGravity, ev.Command)
	assert.Len(t, f.waiter.timeouts, 1)
	assert.Equal(t, f.start.Add(2500*time.Millisecond), f.mux.Deadline())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "both", StatusBoth.String())
	assert.Equal(t, "unknown", Status(42).String())
	assert.False(t, IsTransient(errors.New("boom")))
	assert.True(t, IsTransient(unix.EINTR))
}

func TestStatusSources(t *testing.T) {
	assert.True(t, StatusBoth.Keyboard())
	assert.True(t, StatusBoth.Control())
	assert.True(t, StatusStdin.Keyboard())
	assert.False(t, StatusStdin.Control())
	assert.True(t, StatusPipe.Control())
	assert.False(t, StatusBuffered.Keyboard())
	assert.False(t, StatusTimeout.Control())
}
