//go:build !linux && !darwin && !windows

package osfs

import "os"

func datasync(f *os.File) error {
	return f.Sync()
}
