//go:build unix

package osfs

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/pagekit/vfs"
)

// lockFile takes a non-blocking exclusive flock. flock locks belong to the
// open file description, so a second handle on the same file fails even
// inside one process.
func lockFile(f *os.File) error {
	err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err == nil {
		return nil
	}
	if errors.Is(err, unix.EWOULDBLOCK) {
		return fmt.Errorf("lock %s: %w", f.Name(), vfs.ErrLocked)
	}
	return vfs.WrapOSError("lock", f.Name(), err)
}
