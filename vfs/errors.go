package vfs

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrIO indicates the storage reported a failure.
	ErrIO = errors.New("vfs: i/o error")

	// ErrAlreadyExists indicates an exclusive create found an existing file.
	ErrAlreadyExists = errors.New("vfs: file already exists")

	// ErrPathNotFound indicates the file does not exist.
	ErrPathNotFound = errors.New("vfs: path not found")

	// ErrMisaligned indicates a block I/O offset or length is not block aligned.
	ErrMisaligned = errors.New("vfs: misaligned block access")

	// ErrClosed indicates an operation on a closed file.
	ErrClosed = errors.New("vfs: file already closed")

	// ErrFileBusy indicates the file is held open and cannot be removed.
	ErrFileBusy = errors.New("vfs: file is open")

	// ErrLocked indicates another handle holds the file lock.
	ErrLocked = errors.New("vfs: file is locked")

	// ErrBadBlockShift indicates a block shift outside [MinBlockShift, MaxBlockShift].
	ErrBadBlockShift = errors.New("vfs: unsupported block shift")
)

// WrapOSError maps an error returned by the os package onto the vfs
// sentinels, keeping the original error in the chain.
func WrapOSError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s %s: %w: %w", op, path, ErrPathNotFound, err)
	case errors.Is(err, fs.ErrExist):
		return fmt.Errorf("%s %s: %w: %w", op, path, ErrAlreadyExists, err)
	default:
		return fmt.Errorf("%s %s: %w: %w", op, path, ErrIO, err)
	}
}

// CheckAligned validates a block I/O request.
func CheckAligned(offset int64, n int, blockShift uint) error {
	mask := int64(1)<<blockShift - 1
	if offset < 0 || offset&mask != 0 || int64(n)&mask != 0 {
		return fmt.Errorf("%w: offset %d length %d block size %d", ErrMisaligned, offset, n, int64(1)<<blockShift)
	}
	return nil
}

// CheckBlockShift validates a block shift.
func CheckBlockShift(shift uint) error {
	if shift < MinBlockShift || shift > MaxBlockShift {
		return fmt.Errorf("%w: %d", ErrBadBlockShift, shift)
	}
	return nil
}
