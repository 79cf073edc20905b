//go:build unix

package mmfile

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/pagekit/internal/buf"
)

// Map maps the file at path read-only and returns its contents and a
// function that unmaps it. The slice must not be used after unmapping.
func Map(path string) ([]byte, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close() // the mapping outlives the descriptor

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	if info.Size() == 0 {
		return []byte{}, noop, nil
	}
	size, ok := buf.ToInt(uint64(info.Size()))
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, info.Size())
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, fmt.Errorf("mmfile: mmap %s: %w", path, err)
	}
	unmapped := false
	cleanup := func() error {
		if unmapped {
			return nil
		}
		unmapped = true
		if err := unix.Munmap(data); err != nil && !errors.Is(err, unix.EINVAL) {
			return fmt.Errorf("mmfile: munmap %s: %w", path, err)
		}
		return nil
	}
	return data, cleanup, nil
}
