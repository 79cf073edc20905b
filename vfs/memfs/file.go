package memfs

import (
	"fmt"
	"io"
	"math"

	"github.com/joshuapare/pagekit/vfs"
)

type file struct {
	fsys       *FS
	name       string
	n          *node
	block      bool
	blockShift uint
	closed     bool
}

var (
	_ vfs.BlockAccessFile  = (*file)(nil)
	_ vfs.RandomAccessFile = (*file)(nil)
)

func (f *file) check(offset int64, n int) error {
	if f.closed {
		return vfs.ErrClosed
	}
	if f.block {
		if err := vfs.CheckAligned(offset, n, f.blockShift); err != nil {
			return err
		}
	}
	if offset < 0 {
		return fmt.Errorf("%s: %w: negative offset %d", f.name, vfs.ErrIO, offset)
	}
	if offset > math.MaxInt64-int64(n) {
		return fmt.Errorf("%s: %w: range at %d+%d overflows", f.name, vfs.ErrIO, offset, n)
	}
	return nil
}

func (f *file) Read(offset int64, p []byte) error {
	if err := f.check(offset, len(p)); err != nil {
		return err
	}
	f.fsys.mu.Lock()
	defer f.fsys.mu.Unlock()
	if offset+int64(len(p)) > int64(len(f.n.data)) {
		return fmt.Errorf("read %s at %d: %w: %w", f.name, offset, vfs.ErrIO, io.ErrUnexpectedEOF)
	}
	copy(p, f.n.data[offset:])
	return nil
}

func (f *file) Write(p []byte, offset int64) error {
	if err := f.check(offset, len(p)); err != nil {
		return err
	}
	f.fsys.mu.Lock()
	defer f.fsys.mu.Unlock()
	end := offset + int64(len(p))
	if end > int64(len(f.n.data)) {
		grown := make([]byte, end)
		copy(grown, f.n.data)
		f.n.data = grown
	}
	copy(f.n.data[offset:end], p)
	return nil
}

func (f *file) Sync() error {
	if f.closed {
		return vfs.ErrClosed
	}
	return nil
}

func (f *file) Lock() error {
	if f.closed {
		return vfs.ErrClosed
	}
	f.fsys.mu.Lock()
	defer f.fsys.mu.Unlock()
	if f.n.lockedBy != nil && f.n.lockedBy != f {
		return fmt.Errorf("lock %s: %w", f.name, vfs.ErrLocked)
	}
	f.n.lockedBy = f
	return nil
}

func (f *file) Close() error {
	if f.closed {
		return vfs.ErrClosed
	}
	f.closed = true
	f.fsys.mu.Lock()
	defer f.fsys.mu.Unlock()
	if f.n.lockedBy == f {
		f.n.lockedBy = nil
	}
	f.n.open--
	return nil
}
