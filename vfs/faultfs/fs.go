package faultfs

import (
	"sync"

	"github.com/joshuapare/pagekit/vfs"
)

// FS wraps a vfs.VFS and hands out wrapped block files. Random access files
// and RemoveFile pass through untouched.
type FS struct {
	base vfs.VFS

	mu    sync.Mutex
	files []*File
	armed error
}

var _ vfs.VFS = (*FS)(nil)

// New returns an FS over base.
func New(base vfs.VFS) *FS {
	return &FS{base: base}
}

// OpenForBlockAccess opens through the base VFS and wraps the result. A file
// opened while an error is armed starts out armed.
func (fsys *FS) OpenForBlockAccess(
	path string,
	blockShift uint,
	createIfMissing, errorIfExists bool,
) (vfs.BlockAccessFile, int64, error) {
	f, size, err := fsys.base.OpenForBlockAccess(path, blockShift, createIfMissing, errorIfExists)
	if err != nil {
		return nil, 0, err
	}
	w := Wrap(f)
	fsys.mu.Lock()
	defer fsys.mu.Unlock()
	if fsys.armed != nil {
		w.SetAccessError(fsys.armed)
	}
	fsys.files = append(fsys.files, w)
	return w, size, nil
}

// OpenForRandomAccess implements vfs.VFS.
func (fsys *FS) OpenForRandomAccess(
	path string,
	createIfMissing, errorIfExists bool,
) (vfs.RandomAccessFile, int64, error) {
	return fsys.base.OpenForRandomAccess(path, createIfMissing, errorIfExists)
}

// RemoveFile implements vfs.VFS.
func (fsys *FS) RemoveFile(path string) error {
	return fsys.base.RemoveFile(path)
}

// SetAccessError arms err on every block file handed out so far and on those
// opened later; nil disarms.
func (fsys *FS) SetAccessError(err error) {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()
	fsys.armed = err
	for _, f := range fsys.files {
		f.SetAccessError(err)
	}
}

// Files returns the wrappers handed out so far, oldest first.
func (fsys *FS) Files() []*File {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()
	out := make([]*File, len(fsys.files))
	copy(out, fsys.files)
	return out
}

// ReleaseAll calls Release on every wrapper.
func (fsys *FS) ReleaseAll() error {
	var first error
	for _, f := range fsys.Files() {
		if err := f.Release(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
