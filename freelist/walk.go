package freelist

import (
	"fmt"

	"github.com/joshuapare/pagekit/internal/format"
)

// ListPageInfo describes one list page of the chain.
type ListPageInfo struct {
	ID      format.PageID
	Next    format.PageID
	Entries []format.PageID // bottom of the stack first
}

// Walk visits every list page from head to tail. It stops at the first
// corrupt page, at a page visited twice (a cycle), or when fn returns an
// error, which Walk returns unchanged.
func Walk(store PageStore, head format.PageID, fn func(ListPageInfo) error) error {
	return walk(store, head, nil, fn)
}

// walk is Walk with a hook that vets each list page id before it is read.
func walk(store PageStore, head format.PageID, vet func(format.PageID) error, fn func(ListPageInfo) error) error {
	size := store.PageSize()
	if err := checkPageSize(size); err != nil {
		return err
	}
	page := make(format.ListPage, size)
	seen := make(map[format.PageID]struct{})

	for id := head; id != format.InvalidPageID; {
		if _, dup := seen[id]; dup {
			return corrupt(id, -1, nil, "list chain revisits page %d", id)
		}
		seen[id] = struct{}{}
		if vet != nil {
			if err := vet(id); err != nil {
				return err
			}
		}

		if err := store.ReadPage(id, page); err != nil {
			return fmt.Errorf("freelist: read list page %d: %w", id, err)
		}
		off := page.NextEntryOffset()
		if err := format.CheckNextEntryOffset(off, size); err != nil {
			return corrupt(id, format.ListNextEntryOffset, err, "bad next entry offset")
		}

		info := ListPageInfo{
			ID:      id,
			Next:    page.NextPageID(),
			Entries: make([]format.PageID, 0, (off-format.ListFirstEntryOffset)/format.ListEntrySize),
		}
		for e := uint64(format.ListFirstEntryOffset); e < off; e += format.ListEntrySize {
			info.Entries = append(info.Entries, page.Entry(e))
		}
		if err := fn(info); err != nil {
			return err
		}
		id = info.Next
	}
	return nil
}

// Stats summarizes a free list.
type Stats struct {
	ListPages int // pages holding list metadata
	Entries   int // page ids stored in list pages
}

// FreePages returns the number of free pages, list pages included.
func (s Stats) FreePages() int {
	return s.ListPages + s.Entries
}

// VerifyOptions bounds the page ids Verify accepts.
type VerifyOptions struct {
	// PageCount, when non-zero, rejects any id >= PageCount.
	PageCount uint64
	// Reserved ids (such as the header page) must never appear in the list.
	Reserved []format.PageID
}

// Verify walks the list and checks that every free page appears exactly
// once: no cycles, no duplicate ids, no reserved or out-of-range ids, no
// corrupt offsets.
func Verify(store PageStore, head format.PageID, opts VerifyOptions) (Stats, error) {
	var stats Stats
	seen := make(map[format.PageID]format.PageID) // free page -> list page it was found in
	reserved := make(map[format.PageID]struct{}, len(opts.Reserved))
	for _, id := range opts.Reserved {
		reserved[id] = struct{}{}
	}

	check := func(list, id format.PageID, off int) error {
		if _, ok := reserved[id]; ok {
			return corrupt(list, off, nil, "reserved page %d is listed as free", id)
		}
		if opts.PageCount != 0 && uint64(id) >= opts.PageCount {
			return corrupt(list, off, nil, "page %d beyond page count %d", id, opts.PageCount)
		}
		if where, dup := seen[id]; dup {
			return corrupt(list, off, nil, "page %d already listed in list page %d", id, where)
		}
		seen[id] = list
		return nil
	}

	vet := func(id format.PageID) error {
		if err := check(id, id, -1); err != nil {
			return err
		}
		stats.ListPages++
		return nil
	}
	err := walk(store, head, vet, func(info ListPageInfo) error {
		for i, id := range info.Entries {
			if err := check(info.ID, id, format.ListFirstEntryOffset+i*format.ListEntrySize); err != nil {
				return err
			}
			stats.Entries++
		}
		return nil
	})
	return stats, err
}

// Collect returns every free page id in allocation order: the order in
// which repeated Allocate calls would hand them out.
func Collect(store PageStore, head format.PageID) ([]format.PageID, error) {
	var out []format.PageID
	err := Walk(store, head, func(info ListPageInfo) error {
		for i := len(info.Entries) - 1; i >= 0; i-- {
			out = append(out, info.Entries[i])
		}
		out = append(out, info.ID)
		return nil
	})
	return out, err
}
