package osfs

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joshuapare/pagekit/vfs"
)

// file backs both vfs.BlockAccessFile and vfs.RandomAccessFile; block mode
// only adds the alignment checks.
type file struct {
	fsys       *FS
	key        string
	f          *os.File
	block      bool
	blockShift uint
	closed     bool
}

var (
	_ vfs.BlockAccessFile  = (*file)(nil)
	_ vfs.RandomAccessFile = (*file)(nil)
)

func (f *file) Read(offset int64, p []byte) error {
	if f.closed {
		return vfs.ErrClosed
	}
	if f.block {
		if err := vfs.CheckAligned(offset, len(p), f.blockShift); err != nil {
			return err
		}
	}
	n, err := f.f.ReadAt(p, offset)
	if n == len(p) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("read %s at %d: %w: short read (%d of %d bytes): %w", f.f.Name(), offset, vfs.ErrIO, n, len(p), err)
}

func (f *file) Write(p []byte, offset int64) error {
	if f.closed {
		return vfs.ErrClosed
	}
	if f.block {
		if err := vfs.CheckAligned(offset, len(p), f.blockShift); err != nil {
			return err
		}
	}
	if offset < 0 {
		return fmt.Errorf("write %s: %w: negative offset %d", f.f.Name(), vfs.ErrIO, offset)
	}
	if _, err := f.f.WriteAt(p, offset); err != nil {
		return vfs.WrapOSError("write", f.f.Name(), err)
	}
	return nil
}

func (f *file) Sync() error {
	if f.closed {
		return vfs.ErrClosed
	}
	return vfs.WrapOSError("sync", f.f.Name(), datasync(f.f))
}

func (f *file) Lock() error {
	if f.closed {
		return vfs.ErrClosed
	}
	return lockFile(f.f)
}

// Close releases the descriptor, which also drops any advisory lock.
func (f *file) Close() error {
	if f.closed {
		return vfs.ErrClosed
	}
	f.closed = true
	f.fsys.release(f.key)
	return vfs.WrapOSError("close", f.f.Name(), f.f.Close())
}
