package format

import "errors"

var (
	// ErrSignatureMismatch indicates a header had an unexpected magic.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrUnsupported indicates a version or page size this package cannot handle.
	ErrUnsupported = errors.New("format: unsupported feature")
	// ErrBadChecksum indicates the header checksum does not match its contents.
	ErrBadChecksum = errors.New("format: checksum mismatch")
	// ErrBadEntryOffset indicates a list page entry offset failed validation.
	ErrBadEntryOffset = errors.New("format: corrupt entry offset")
	// ErrTooLarge indicates a 64-bit page id or size cannot be represented on this host.
	ErrTooLarge = errors.New("format: value too large for this host")
)
