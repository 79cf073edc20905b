package format

import "encoding/binary"

// Every multi-byte integer in a pagekit file is little-endian, so a file
// written on one architecture opens on any other. The helpers panic on a
// short buffer like a slice index would; callers size their buffers from
// the page size before touching them.

// PutU32 writes v at off in little-endian order.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// PutU64 writes v at off in little-endian order.
func PutU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+8], v)
}

// ReadU32 reads a little-endian uint32 at off.
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

// ReadU64 reads a little-endian uint64 at off.
func ReadU64(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+8])
}

// PutPageID writes a page id at off.
func PutPageID(b []byte, off int, id PageID) {
	PutU64(b, off, uint64(id))
}

// ReadPageID reads a page id at off.
func ReadPageID(b []byte, off int) PageID {
	return PageID(ReadU64(b, off))
}
