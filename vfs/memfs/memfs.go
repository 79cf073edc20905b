// Package memfs implements vfs.VFS in memory. Files live as long as the FS
// value and are shared between handles opened on the same path, so tests can
// close and reopen a file and observe what was written.
package memfs

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/joshuapare/pagekit/vfs"
)

type node struct {
	data     []byte
	open     int
	lockedBy *file
}

// FS is an in-memory vfs.VFS. It is safe for concurrent use; the files it
// returns are not.
type FS struct {
	mu    sync.Mutex
	files map[string]*node
}

var _ vfs.VFS = (*FS)(nil)

// New returns an empty FS.
func New() *FS {
	return &FS{files: make(map[string]*node)}
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
	key := filepath.Clean(path)
	fsys.mu.Lock()
	defer fsys.mu.Unlock()
	n, ok := fsys.files[key]
	if !ok {
		return fmt.Errorf("remove %s: %w", path, vfs.ErrPathNotFound)
	}
	if n.open > 0 {
		return fmt.Errorf("remove %s: %w", path, vfs.ErrFileBusy)
	}
	delete(fsys.files, key)
	return nil
}

// Exists reports whether path names a file.
func (fsys *FS) Exists(path string) bool {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()
	_, ok := fsys.files[filepath.Clean(path)]
	return ok
}

// Bytes returns a copy of the file contents, or nil if path does not exist.
func (fsys *FS) Bytes(path string) []byte {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()
	n, ok := fsys.files[filepath.Clean(path)]
	if !ok {
		return nil
	}
	out := make([]byte, len(n.data))
	copy(out, n.data)
	return out
}

// SetBytes replaces the file contents, creating the file if needed. Tests use
// it to plant corrupt files.
func (fsys *FS) SetBytes(path string, data []byte) {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()
	key := filepath.Clean(path)
	n, ok := fsys.files[key]
	if !ok {
		n = &node{}
		fsys.files[key] = n
	}
	n.data = append(n.data[:0], data...)
}

func (fsys *FS) openFile(path string, createIfMissing, errorIfExists bool) (*file, int64, error) {
	key := filepath.Clean(path)
	fsys.mu.Lock()
	defer fsys.mu.Unlock()

	n, ok := fsys.files[key]
	switch {
	case !ok && !createIfMissing:
		return nil, 0, fmt.Errorf("open %s: %w", path, vfs.ErrPathNotFound)
	case ok && createIfMissing && errorIfExists:
		return nil, 0, fmt.Errorf("open %s: %w", path, vfs.ErrAlreadyExists)
	case !ok:
		n = &node{}
		fsys.files[key] = n
	}
	n.open++
	return &file{fsys: fsys, name: key, n: n}, int64(len(n.data)), nil
}
