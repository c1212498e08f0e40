//go:build unix

package term

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

// ChannelMode is the permission of a freshly created channel.
const ChannelMode = 0o777

// Channel is a named pipe opened read-write and non-blocking. Holding both
// ends keeps the pipe open while peers come and go.
type Channel struct {
	Descriptor
	Path string
}

// OpenChannel creates the named pipe at path, replacing whatever was there,
// and opens it.
func OpenChannel(path string) (*Channel, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("remove stale channel %s: %w", path, err)
	}
	if err := unix.Mkfifo(path, ChannelMode); err != nil {
		return nil, fmt.Errorf("create channel %s: %w", path, err)
	}
	// Mkfifo is subject to the umask.
	if err := unix.Chmod(path, ChannelMode); err != nil {
		return nil, fmt.Errorf("chmod channel %s: %w", path, err)
	}
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open channel %s: %w", path, err)
	}
	return &Channel{Descriptor: Descriptor(fd), Path: path}, nil
}

func (c *Channel) Close() error {
	if err := c.Descriptor.Close(); err != nil {
		return fmt.Errorf("close channel %s: %w", c.Path, err)
	}
	return nil
}
