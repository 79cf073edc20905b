//go:build darwin

package osfs

import (
	"os"

	"golang.org/x/sys/unix"
)

// datasync uses F_FULLFSYNC so data reaches the platter, not just the drive
// cache. Filesystems that reject it fall back to fsync.
func datasync(f *os.File) error {
	if _, err := unix.FcntlInt(f.Fd(), unix.F_FULLFSYNC, 0); err == nil {
		return nil
	}
	return unix.Fsync(int(f.Fd()))
}
