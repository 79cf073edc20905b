// Package osfs implements vfs.VFS on top of the operating system's files.
//
// Block and random access files are both plain *os.File handles using
// positioned reads and writes. Advisory locking and durable sync are
// platform specific (flock / LockFileEx, fdatasync / F_FULLFSYNC /
// FlushFileBuffers) and come from golang.org/x/sys.
package osfs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/joshuapare/pagekit/vfs"
)

const filePerm = 0o644

// FS is an operating system backed vfs.VFS. It remembers which paths it has
// open so RemoveFile can refuse to delete them.
type FS struct {
	mu   sync.Mutex
	open map[string]int
}

var _ vfs.VFS = (*FS)(nil)

// New returns an FS.
func New() *FS {
	return &FS{open: make(map[string]int)}
}

// OpenForBlockAccess implements vfs.VFS.
func (fsys *FS) OpenForBlockAccess(
	path string,
	blockShift uint,
	createIfMissing, errorIfExists bool,
) (vfs.BlockAccessFile, int64, error) {
	if err := vfs.CheckBlockShift(blockShift); err != nil {
		return nil, 0, err
	}
	f, size, err := fsys.openFile(path, createIfMissing, errorIfExists)
	if err != nil {
		return nil, 0, err
	}
	f.block = true
	f.blockShift = blockShift
	return f, size, nil
}

// OpenForRandomAccess implements vfs.VFS.
func (fsys *FS) OpenForRandomAccess(
	path string,
	createIfMissing, errorIfExists bool,
) (vfs.RandomAccessFile, int64, error) {
	f, size, err := fsys.openFile(path, createIfMissing, errorIfExists)
	if err != nil {
		return nil, 0, err
	}
	return f, size, nil
}

// RemoveFile implements vfs.VFS.
func (fsys *FS) RemoveFile(path string) error {
	key, err := canonical(path)
	if err != nil {
		return err
	}
	fsys.mu.Lock()
	defer fsys.mu.Unlock()
	if fsys.open[key] > 0 {
		return fmt.Errorf("remove %s: %w", path, vfs.ErrFileBusy)
	}
	return vfs.WrapOSError("remove", path, os.Remove(path))
}

// errorIfExists only has an effect together with createIfMissing.
func (fsys *FS) openFile(path string, createIfMissing, errorIfExists bool) (*file, int64, error) {
	key, err := canonical(path)
	if err != nil {
		return nil, 0, err
	}

	flags := os.O_RDWR
	if createIfMissing {
		flags |= os.O_CREATE
		if errorIfExists {
			flags |= os.O_EXCL
		}
	}
	f, err := os.OpenFile(path, flags, filePerm)
	if err != nil {
		return nil, 0, vfs.WrapOSError("open", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, vfs.WrapOSError("stat", path, err)
	}

	fsys.mu.Lock()
	fsys.open[key]++
	fsys.mu.Unlock()

	return &file{fsys: fsys, key: key, f: f}, st.Size(), nil
}

func (fsys *FS) release(key string) {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()
	if fsys.open[key] <= 1 {
		delete(fsys.open, key)
		return
	}
	fsys.open[key]--
}

func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", vfs.WrapOSError("resolve", path, err)
	}
	return abs, nil
}
