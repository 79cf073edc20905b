//go:build windows

package osfs

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/windows"

	"github.com/joshuapare/pagekit/vfs"
)

// lockFile takes an exclusive lock on the first byte without waiting.
func lockFile(f *os.File) error {
	ol := new(windows.Overlapped)
	err := windows.LockFileEx(
		windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0,
		1,
		0,
		ol,
	)
	if err == nil {
		return nil
	}
	if errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
		return fmt.Errorf("lock %s: %w", f.Name(), vfs.ErrLocked)
	}
	return vfs.WrapOSError("lock", f.Name(), err)
}
