//go:build unix

package term

import (
	"io"

	"golang.org/x/sys/unix"
)

// Descriptor is a raw file descriptor read and written with plain system
// calls. Unlike *os.File it never changes the descriptor's blocking mode,
// which the non-blocking channels rely on.
type Descriptor int

// Stdin is the keyboard.
var Stdin = Descriptor(unix.Stdin)

func (d Descriptor) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := unix.Read(int(d), p)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (d Descriptor) Write(p []byte) (int, error) {
	n, err := unix.Write(int(d), p)
	if err != nil {
		return max(n, 0), err
	}
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// Fd returns the descriptor number.
func (d Descriptor) Fd() int {
	return int(d)
}

func (d Descriptor) Close() error {
	return unix.Close(int(d))
}
