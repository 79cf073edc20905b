package format

import (
	"bytes"
	"fmt"
)

// Header is the decoded header page.
//
// The two sequence numbers implement the commit protocol: a writer bumps
// PrimarySeq and persists the header before writing data pages, then sets
// SecondarySeq = PrimarySeq once the data is durable. A header with
// PrimarySeq != SecondarySeq belongs to a file whose last commit did not
// finish.
type Header struct {
	Version      uint32
	PageShift    uint32
	PrimarySeq   uint32
	SecondarySeq uint32
	PageCount    uint64
	FreeListHead PageID
	Checksum     uint32
}

// NewHeader returns the header of a freshly created file: one page (the
// header itself) and no free pages.
func NewHeader(shift uint) Header {
	return Header{
		Version:      FormatVersion,
		PageShift:    uint32(shift),
		PrimarySeq:   1,
		SecondarySeq: 1,
		PageCount:    1,
		FreeListHead: InvalidPageID,
	}
}

// Clean reports whether the last commit completed.
func (h Header) Clean() bool {
	return h.PrimarySeq == h.SecondarySeq
}

// ParseHeader decodes and validates a header page.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderMinSize {
		return Header{}, fmt.Errorf("header: %w: %d bytes", ErrTruncated, len(b))
	}
	if !bytes.Equal(b[HeaderSignatureOffset:HeaderSignatureOffset+4], HeaderSignature) {
		return Header{}, fmt.Errorf("header: %w: got %q", ErrSignatureMismatch, b[:4])
	}
	h := Header{
		Version:      ReadU32(b, HeaderVersionOffset),
		PageShift:    ReadU32(b, HeaderPageShiftOffset),
		PrimarySeq:   ReadU32(b, HeaderPrimarySeqOffset),
		SecondarySeq: ReadU32(b, HeaderSecondarySeqOffset),
		PageCount:    ReadU64(b, HeaderPageCountOffset),
		FreeListHead: ReadPageID(b, HeaderFreeListHeadOffset),
		Checksum:     ReadU32(b, HeaderChecksumOffset),
	}
	if sum := HeaderChecksum(b); sum != h.Checksum {
		return Header{}, fmt.Errorf("header: %w: stored 0x%08X, computed 0x%08X", ErrBadChecksum, h.Checksum, sum)
	}
	if h.Version != FormatVersion {
		return Header{}, fmt.Errorf("header: %w: version %d", ErrUnsupported, h.Version)
	}
	if !ValidPageShift(uint(h.PageShift)) {
		return Header{}, fmt.Errorf("header: %w: page shift %d", ErrUnsupported, h.PageShift)
	}
	if h.PageCount == 0 {
		return Header{}, fmt.Errorf("header: %w: page count 0", ErrTruncated)
	}
	return h, nil
}

// Encode writes the header into b (at least HeaderMinSize bytes), computing
// the checksum. Bytes past the header fields are left untouched.
func (h *Header) Encode(b []byte) {
	copy(b[HeaderSignatureOffset:], HeaderSignature)
	PutU32(b, HeaderVersionOffset, h.Version)
	PutU32(b, HeaderPageShiftOffset, h.PageShift)
	PutU32(b, HeaderReservedOffset, 0)
	PutU32(b, HeaderPrimarySeqOffset, h.PrimarySeq)
	PutU32(b, HeaderSecondarySeqOffset, h.SecondarySeq)
	PutU64(b, HeaderPageCountOffset, h.PageCount)
	PutPageID(b, HeaderFreeListHeadOffset, h.FreeListHead)
	h.Checksum = HeaderChecksum(b)
	PutU32(b, HeaderChecksumOffset, h.Checksum)
}

// HeaderChecksum XORs the dwords preceding the checksum field.
func HeaderChecksum(b []byte) uint32 {
	if len(b) < HeaderMinSize {
		return 0
	}
	var sum uint32
	for i := range HeaderChecksumDwords {
		sum ^= ReadU32(b, i*DWORDSize)
	}
	return sum
}
