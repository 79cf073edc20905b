package freelist

import (
	"fmt"

	"github.com/joshuapare/pagekit/internal/format"
)

// Allocator pushes and pops page ids on the on-disk free list.
type Allocator struct {
	store    PageStore
	pageSize int
	page     format.ListPage // scratch buffer for the head list page

	// valid page ids are [first, end)
	first format.PageID
	end   format.PageID
}

// New returns an Allocator over store.
func New(store PageStore) (*Allocator, error) {
	size := store.PageSize()
	if err := checkPageSize(size); err != nil {
		return nil, err
	}
	return &Allocator{
		store:    store,
		pageSize: size,
		page:     make(format.ListPage, size),
		end:      format.InvalidPageID,
	}, nil
}

// SetBounds restricts the page ids the allocator accepts and hands out to
// [first, end). Ids read from the list outside the bounds are reported as
// corruption. By default every id but InvalidPageID is valid.
func (a *Allocator) SetBounds(first, end format.PageID) {
	a.first, a.end = first, end
}

func (a *Allocator) inBounds(id format.PageID) bool {
	return id >= a.first && id < a.end
}

// PageSize returns the page size of the underlying store.
func (a *Allocator) PageSize() int {
	return a.pageSize
}

// Allocate pops a free page. It returns the page, and the head to use from
// now on. The page's previous contents are meaningless; the caller
// initializes it.
//
// When the head list page still holds entries, the top entry is popped and
// the head page is persisted. When it is empty, the head page itself is
// returned and its successor becomes the head.
func (a *Allocator) Allocate(head format.PageID) (format.PageID, format.PageID, error) {
	if head == format.InvalidPageID {
		return format.InvalidPageID, head, ErrOutOfSpace
	}

	off, err := a.loadHead(head)
	if err != nil {
		return format.InvalidPageID, head, err
	}

	if off == format.ListFirstEntryOffset {
		next := a.page.NextPageID()
		if next == head {
			return format.InvalidPageID, head, corrupt(head, format.ListNextPageIDOffset, nil,
				"list page links to itself")
		}
		if next != format.InvalidPageID && !a.inBounds(next) {
			return format.InvalidPageID, head, corrupt(head, format.ListNextPageIDOffset, nil,
				"next list page %d out of range", next)
		}
		return head, next, nil
	}

	entryOff := off - format.ListEntrySize
	if format.IsCorruptEntryOffset(entryOff, a.pageSize) {
		return format.InvalidPageID, head, corrupt(head, format.ListNextEntryOffset, nil,
			"entry offset %d out of range", entryOff)
	}
	id := a.page.Entry(entryOff)
	if id == head || !a.inBounds(id) {
		return format.InvalidPageID, head, corrupt(head, int(entryOff), nil,
			"entry holds page id %d", id)
	}

	a.page.SetNextEntryOffset(entryOff)
	if err := a.store.WritePage(head, a.page); err != nil {
		return format.InvalidPageID, head, fmt.Errorf("freelist: persist list page %d: %w", head, err)
	}
	return id, head, nil
}

// Free pushes id onto the list headed by head and returns the new head.
//
// With an empty list, or a full head list page, id becomes the new head list
// page (linking to the old head) instead of an entry.
func (a *Allocator) Free(head, id format.PageID) (format.PageID, error) {
	if id == format.InvalidPageID {
		return head, ErrInvalidPage
	}
	if !a.inBounds(id) {
		return head, fmt.Errorf("%w: page %d outside [%d, %d)", ErrInvalidPage, id, a.first, a.end)
	}
	if head == format.InvalidPageID {
		return a.startList(head, id)
	}
	if id == head {
		return head, fmt.Errorf("freelist: page %d is already the head list page", id)
	}

	off, err := a.loadHead(head)
	if err != nil {
		return head, err
	}
	if off == uint64(a.pageSize) {
		return a.startList(head, id)
	}
	if format.IsCorruptEntryOffset(off, a.pageSize) {
		return head, corrupt(head, format.ListNextEntryOffset, nil, "entry offset %d out of range", off)
	}

	a.page.SetEntry(off, id)
	a.page.SetNextEntryOffset(off + format.ListEntrySize)
	if err := a.store.WritePage(head, a.page); err != nil {
		return head, fmt.Errorf("freelist: persist list page %d: %w", head, err)
	}
	return head, nil
}

// startList turns id into an empty list page linking to head.
func (a *Allocator) startList(head, id format.PageID) (format.PageID, error) {
	clear(a.page)
	a.page.Init(head)
	if err := a.store.WritePage(id, a.page); err != nil {
		return head, fmt.Errorf("freelist: persist new list page %d: %w", id, err)
	}
	return id, nil
}

// loadHead reads the head list page into the scratch buffer and validates
// its next-entry offset.
func (a *Allocator) loadHead(head format.PageID) (uint64, error) {
	if !a.inBounds(head) {
		return 0, corrupt(head, -1, nil, "head list page %d out of range", head)
	}
	if err := a.store.ReadPage(head, a.page); err != nil {
		return 0, fmt.Errorf("freelist: read list page %d: %w", head, err)
	}
	off := a.page.NextEntryOffset()
	if err := format.CheckNextEntryOffset(off, a.pageSize); err != nil {
		return 0, corrupt(head, format.ListNextEntryOffset, err, "bad next entry offset")
	}
	return off, nil
}
