// Package format houses the low-level encoders and decoders for the pagekit
// file format: the header page and the free list pages. It is deliberately
// allocation-free and knows nothing about files; higher-level packages feed it
// page buffers and decide what to do with the values it reports.
package format

import "math"

// PageID identifies a page of the backing file. Page ids are 64-bit on every
// host; a file written by a 64-bit host may hold ids a 32-bit host cannot
// address, so narrowing goes through PageOffset or buf.ToInt.
type PageID uint64

// InvalidPageID is the sentinel meaning "no page" or "end of list".
const InvalidPageID PageID = math.MaxUint64

var (
	// HeaderSignature is the four-byte signature at the start of every file.
	// Layout:
	//   0x00  'p' 'g' 'k' 't'
	HeaderSignature = []byte{'p', 'g', 'k', 't'}
)

const (
	// FormatVersion is the only on-disk version this package writes or reads.
	FormatVersion = 1

	// MinPageShift and MaxPageShift bound the page sizes a file may use
	// (4 KiB to 64 KiB).
	MinPageShift = 12
	MaxPageShift = 16

	// DefaultPageShift selects 4 KiB pages.
	DefaultPageShift = 12

	// HeaderPageID is the page holding the file header. It is never free.
	HeaderPageID PageID = 0

	// DWORDSize is the size of a 32-bit word (checksum unit).
	DWORDSize = 4
)

// Header page field offsets.
const (
	HeaderSignatureOffset    = 0x00 // 4
	HeaderVersionOffset      = 0x04 // 4
	HeaderPageShiftOffset    = 0x08 // 4
	HeaderReservedOffset     = 0x0C // 4
	HeaderPrimarySeqOffset   = 0x10 // 4
	HeaderSecondarySeqOffset = 0x14 // 4
	HeaderPageCountOffset    = 0x18 // 8
	HeaderFreeListHeadOffset = 0x20 // 8
	HeaderChecksumOffset     = 0x28 // 4

	// HeaderChecksumDwords is the number of dwords XORed into the checksum.
	HeaderChecksumDwords = HeaderChecksumOffset / DWORDSize

	// HeaderMinSize is the number of header bytes that carry data.
	HeaderMinSize = HeaderChecksumOffset + DWORDSize
)

// Free list page field offsets.
const (
	// ListNextEntryOffset is where the next-entry offset lives. Every list
	// operation reads it, so it sits first in the page.
	ListNextEntryOffset = 0
	// ListNextPageIDOffset is where the successor list page id lives.
	ListNextPageIDOffset = 8
	// ListFirstEntryOffset is the offset of the first entry in a list page.
	ListFirstEntryOffset = 16
	// ListEntrySize is the size of one entry (a page id).
	ListEntrySize = 8
	// ListEntryMask masks the misaligned bits of an entry offset.
	ListEntryMask = ListEntrySize - 1

	// MinListPageSize is the smallest page that can hold the list header.
	MinListPageSize = ListFirstEntryOffset
)

// ListCapacity returns how many entries fit in a list page of pageSize bytes.
func ListCapacity(pageSize int) int {
	if pageSize < MinListPageSize {
		return 0
	}
	return (pageSize - ListFirstEntryOffset) / ListEntrySize
}
