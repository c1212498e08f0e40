// Package input merges the keyboard, the external control channel and the
// gravity timer into one stream of session commands.
package input

import "github.com/plus3/viztris/session"

const (
	// ReadSize is the largest keyboard read decoded at once.
	ReadSize = 16

	// ETX is the byte a raw terminal delivers for Ctrl-C.
	ETX = 3
	// ESC starts an escape sequence.
	ESC = 27
)

// Decoder holds the bytes of the last keyboard read that have not been
// dispatched yet, and the history used to recognise ESC [ X sequences.
type Decoder struct {
	buf     [ReadSize]byte
	n       int
	pos     int
	history [3]byte
}

// Load replaces the pending bytes with a fresh read. Bytes past ReadSize are
// dropped. The read buffer is zeroed beyond the loaded bytes.
func (d *Decoder) Load(read []byte) {
	d.buf = [ReadSize]byte{}
	d.n = copy(d.buf[:], read)
	d.pos = 0
}

// Buffer returns the raw buffer of the last read, zero padded.
func (d *Decoder) Buffer() [ReadSize]byte {
	return d.buf
}

// Pending reports whether undispatched bytes remain from the last read.
func (d *Decoder) Pending() bool {
	return d.pos < d.n
}

// Next dispatches the next pending byte. It returns CommandNone and false
// when nothing is pending.
func (d *Decoder) Next() (session.Command, bool) {
	if !d.Pending() {
		return session.CommandNone, false
	}
	c := d.buf[d.pos]
	d.pos++
	return d.Decode(c), true
}

// Decode shifts c into the key history and maps the resulting key. The byte
// following ESC [ is kept as is; every other byte is lower-cased.
func (d *Decoder) Decode(c byte) session.Command {
	d.history[2] = d.history[1]
	d.history[1] = d.history[0]
	if d.history[2] == ESC && d.history[1] == '[' {
		d.history[0] = c
		return escapeCommand(c)
	}
	d.history[0] = toLower(c)
	return keyCommand(d.history[0])
}

func toLower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

func escapeCommand(c byte) session.Command {
	switch c {
	case 'A':
		return session.CommandRotate
	case 'B':
		return session.CommandSoftDrop
	case 'C':
		return session.CommandRight
	case 'D':
		return session.CommandLeft
	}
	return session.CommandNone
}

func keyCommand(c byte) session.Command {
	switch c {
	case ETX, 'q':
		return session.CommandQuit
	case 'a':
		return session.CommandLeft
	case 'd':
		return session.CommandRight
	case 's':
		return session.CommandRotate
	case ' ':
		return session.CommandHardDrop
	case 'h':
		return session.CommandToggleHelp
	case 'n':
		return session.CommandTogglePreview
	case 'c':
		return session.CommandToggleColor
	}
	return session.CommandNone
}
