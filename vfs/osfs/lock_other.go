//go:build !unix && !windows

package osfs

import "os"

// lockFile is a no-op where the platform has no advisory locks.
func lockFile(_ *os.File) error {
	return nil
}
