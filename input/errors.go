package input

import (
	"errors"

	"golang.org/x/sys/unix"
)

// IsTransient reports whether err only means that no data is available right
// now. Such errors are never fatal to the loop.
func IsTransient(err error) bool {
	return errors.Is(err, unix.EAGAIN) ||
		errors.Is(err, unix.EWOULDBLOCK) ||
		errors.Is(err, unix.EINTR)
}
