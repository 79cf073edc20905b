// Package mmfile maps page files into memory for read-only inspection.
package mmfile

import "errors"

// ErrTooLarge indicates the file does not fit in this process's address space.
var ErrTooLarge = errors.New("mmfile: file too large to map")

func noop() error { return nil }
