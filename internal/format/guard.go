package format

import "fmt"

// IsCorruptEntryOffset reports whether off cannot be the offset of an entry
// in a list page of pageSize bytes. Use it before reading or writing an entry
// at an offset that came from disk.
//
// The checks are the minimum needed to keep the access in bounds: the offset
// must lie in [ListFirstEntryOffset, pageSize) and be entry-aligned. The
// entry's value is not inspected. The function is total: every uint64 input
// gets an answer, and a non-positive pageSize makes every offset corrupt.
func IsCorruptEntryOffset(off uint64, pageSize int) bool {
	if pageSize <= 0 {
		return true
	}
	return off < ListFirstEntryOffset ||
		off >= uint64(pageSize) ||
		off&ListEntryMask != 0
}

// CheckNextEntryOffset validates a next-entry offset loaded from a list page.
// Unlike an entry offset, it may equal pageSize (the page is full).
func CheckNextEntryOffset(off uint64, pageSize int) error {
	switch {
	case pageSize < MinListPageSize:
		return fmt.Errorf("%w: page size %d below minimum %d", ErrBadEntryOffset, pageSize, MinListPageSize)
	case off < ListFirstEntryOffset:
		return fmt.Errorf("%w: offset %d below first entry %d", ErrBadEntryOffset, off, ListFirstEntryOffset)
	case off > uint64(pageSize):
		return fmt.Errorf("%w: offset %d beyond page size %d", ErrBadEntryOffset, off, pageSize)
	case off&ListEntryMask != 0:
		return fmt.Errorf("%w: offset %d not %d-byte aligned", ErrBadEntryOffset, off, ListEntrySize)
	}
	return nil
}

// PageOffset converts a page id into a byte offset in the file. It fails
// with ErrTooLarge when the offset does not fit in an int64, or the id is
// the invalid sentinel.
func PageOffset(id PageID, shift uint) (int64, error) {
	if id == InvalidPageID {
		return 0, fmt.Errorf("%w: invalid page id", ErrTooLarge)
	}
	if shift >= 63 || uint64(id) > uint64(1<<63-1)>>shift {
		return 0, fmt.Errorf("%w: page %d with shift %d", ErrTooLarge, id, shift)
	}
	return int64(id) << shift, nil
}
