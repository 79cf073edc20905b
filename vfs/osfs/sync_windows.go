//go:build windows

package osfs

import (
	"os"

	"golang.org/x/sys/windows"
)

func datasync(f *os.File) error {
	return windows.FlushFileBuffers(windows.Handle(f.Fd()))
}
