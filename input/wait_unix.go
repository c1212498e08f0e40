//go:build unix

package input

import (
	"time"

	"golang.org/x/sys/unix"
)

// SelectWaiter waits on two raw descriptors with select(2).
type SelectWaiter struct {
	Keyboard int
	Control  int
}

func (w SelectWaiter) Wait(timeout time.Duration) (Ready, error) {
	var set unix.FdSet
	set.Zero()
	set.Set(w.Keyboard)
	set.Set(w.Control)

	tv := unix.NsecToTimeval(max(timeout, 0).Nanoseconds())
	if _, err := unix.Select(max(w.Keyboard, w.Control)+1, &set, nil, nil, &tv); err != nil {
		return Ready{}, err
	}
	return Ready{
		Keyboard: set.IsSet(w.Keyboard),
		Control:  set.IsSet(w.Control),
	}, nil
}
