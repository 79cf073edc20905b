// Package faultfs wraps vfs files so tests can simulate I/O failures.
//
// A wrapped file forwards every call unchanged until an error is armed with
// SetAccessError. From then on every call, Close included, returns that error
// without touching the wrapped file. Release plays the part of a destructor:
// it closes the wrapped file only if Close never reached it, so armed tests
// do not leak handles.
package faultfs

import (
	"sync"

	"github.com/joshuapare/pagekit/vfs"
)

// File wraps a vfs.BlockAccessFile.
type File struct {
	file vfs.BlockAccessFile

	mu                  sync.Mutex
	accessErr           error
	isClosed            bool
	wrappedFileIsClosed bool
}

var _ vfs.BlockAccessFile = (*File)(nil)

// Wrap returns a forwarding wrapper around f.
func Wrap(f vfs.BlockAccessFile) *File {
	return &File{file: f}
}

// SetAccessError arms err; nil disarms.
func (w *File) SetAccessError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.accessErr = err
}

// AccessError returns the armed error, or nil.
func (w *File) AccessError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.accessErr
}

// guard returns the error a call should fail with, if any.
func (w *File) guard() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isClosed {
		return vfs.ErrClosed
	}
	return w.accessErr
}

func (w *File) Read(offset int64, p []byte) error {
	if err := w.guard(); err != nil {
		return err
	}
	return w.file.Read(offset, p)
}

func (w *File) Write(p []byte, offset int64) error {
	if err := w.guard(); err != nil {
		return err
	}
	return w.file.Write(p, offset)
}

func (w *File) Sync() error {
	if err := w.guard(); err != nil {
		return err
	}
	return w.file.Sync()
}

func (w *File) Lock() error {
	if err := w.guard(); err != nil {
		return err
	}
	return w.file.Lock()
}

// Close marks the wrapper closed. With an armed error it returns that error
// and leaves the wrapped file open for Release.
func (w *File) Close() error {
	w.mu.Lock()
	if w.isClosed {
		w.mu.Unlock()
		return vfs.ErrClosed
	}
	w.isClosed = true
	if w.accessErr != nil {
		err := w.accessErr
		w.mu.Unlock()
		return err
	}
	w.wrappedFileIsClosed = true
	w.mu.Unlock()
	return w.file.Close()
}

// Release closes the wrapped file if Close did not. It is safe to call more
// than once.
func (w *File) Release() error {
	w.mu.Lock()
	if w.wrappedFileIsClosed {
		w.mu.Unlock()
		return nil
	}
	w.wrappedFileIsClosed = true
	w.isClosed = true
	w.mu.Unlock()
	return w.file.Close()
}
