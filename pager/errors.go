package pager

import "errors"

var (
	// ErrClosed indicates the pager or snapshot has been closed.
	ErrClosed = errors.New("pager: closed")

	// ErrPageRange indicates a page id outside [1, page count).
	ErrPageRange = errors.New("pager: page out of range")

	// ErrBadPageShift indicates a page shift outside the supported range.
	ErrBadPageShift = errors.New("pager: unsupported page shift")

	// ErrBufferSize indicates a page buffer whose length is not the page size.
	ErrBufferSize = errors.New("pager: buffer is not one page")

	// ErrReadOnly indicates a write through a snapshot.
	ErrReadOnly = errors.New("pager: read-only snapshot")
)
