package format

// ListPage interprets a page buffer as a free list page.
//
// Layout (little-endian):
//
//	0x00  next entry offset (8)  where the next entry will be appended
//	0x08  next page id      (8)  successor list page, InvalidPageID at the tail
//	0x10  entries           (8n) free page ids, a LIFO stack
//
// The same buffer holds application data once the page is allocated, so a
// ListPage is only a view: it never owns or copies the bytes. The setters do
// not validate their arguments, which lets tests build corrupt pages.
type ListPage []byte

// NextEntryOffset returns the raw next-entry offset. It comes from disk and
// must pass CheckNextEntryOffset before it is used as an index.
func (p ListPage) NextEntryOffset() uint64 {
	return ReadU64(p, ListNextEntryOffset)
}

// SetNextEntryOffset stores the next-entry offset.
func (p ListPage) SetNextEntryOffset(off uint64) {
	PutU64(p, ListNextEntryOffset, off)
}

// NextPageID returns the successor list page id.
func (p ListPage) NextPageID() PageID {
	return ReadPageID(p, ListNextPageIDOffset)
}

// SetNextPageID stores the successor list page id.
func (p ListPage) SetNextPageID(id PageID) {
	PutPageID(p, ListNextPageIDOffset, id)
}

// Init turns the buffer into an empty list page linking to next.
func (p ListPage) Init(next PageID) {
	p.SetNextEntryOffset(ListFirstEntryOffset)
	p.SetNextPageID(next)
}

// Entry reads the entry stored at off. off must have passed
// IsCorruptEntryOffset for len(p).
func (p ListPage) Entry(off uint64) PageID {
	return ReadPageID(p, int(off))
}

// SetEntry stores id at off. off must have passed IsCorruptEntryOffset for
// len(p).
func (p ListPage) SetEntry(off uint64, id PageID) {
	PutPageID(p, int(off), id)
}

// EntryCount returns the number of live entries, or -1 if the next-entry
// offset is corrupt.
func (p ListPage) EntryCount() int {
	off := p.NextEntryOffset()
	if CheckNextEntryOffset(off, len(p)) != nil {
		return -1
	}
	return int(off-ListFirstEntryOffset) / ListEntrySize
}

// IsEmpty reports whether the page holds no entries. Callers validate the
// offset first.
func (p ListPage) IsEmpty() bool {
	return p.NextEntryOffset() == ListFirstEntryOffset
}

// IsFull reports whether the page has no room for another entry. Callers
// validate the offset first.
func (p ListPage) IsFull() bool {
	return p.NextEntryOffset() == uint64(len(p))
}
