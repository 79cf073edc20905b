package freelist

import (
	"errors"
	"fmt"

	"github.com/joshuapare/pagekit/internal/format"
)

var (
	// ErrOutOfSpace indicates the free list is empty.
	ErrOutOfSpace = errors.New("freelist: no free pages")

	// ErrDataCorrupted indicates list metadata read from the file is invalid.
	ErrDataCorrupted = errors.New("freelist: data corrupted")

	// ErrDatabaseTooLarge indicates a page id or offset does not fit this host.
	ErrDatabaseTooLarge = errors.New("freelist: database too large")

	// ErrBadPageSize indicates a store page size the list format cannot use.
	ErrBadPageSize = errors.New("freelist: unsupported page size")

	// ErrInvalidPage indicates the invalid sentinel was passed as a page id.
	ErrInvalidPage = errors.New("freelist: invalid page id")
)

// CorruptionError describes a list value that failed validation.
type CorruptionError struct {
	PageID format.PageID // list page holding the bad value
	Offset int           // byte offset of the bad field within the page, -1 if N/A
	Reason string
	Err    error // underlying format error, if any
}

func (e *CorruptionError) Error() string {
	msg := fmt.Sprintf("freelist: data corrupted: list page %d", e.PageID)
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" at offset 0x%X", e.Offset)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrDataCorrupted) true for every CorruptionError.
func (e *CorruptionError) Is(target error) bool {
	return target == ErrDataCorrupted
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}

func corrupt(page format.PageID, off int, err error, reason string, args ...any) error {
	return &CorruptionError{
		PageID: page,
		Offset: off,
		Reason: fmt.Sprintf(reason, args...),
		Err:    err,
	}
}
