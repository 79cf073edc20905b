package pager

import (
	"errors"
	"fmt"

	"github.com/joshuapare/pagekit/freelist"
	"github.com/joshuapare/pagekit/internal/buf"
	"github.com/joshuapare/pagekit/internal/format"
)

// Alloc returns a page for the caller to use. Pages come from the free list
// first; when it is empty the file grows by Options.GrowPages pages. The
// page contents are unspecified.
//
// A corrupt free list yields an error matching freelist.ErrDataCorrupted
// and leaves the list unchanged.
func (p *Pager) Alloc() (format.PageID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return format.InvalidPageID, ErrClosed
	}

	id, head, err := p.alloc.Allocate(p.hdr.FreeListHead)
	switch {
	case err == nil:
		p.hdr.FreeListHead = head
		p.hdrDirty = true
		p.metrics.allocations.WithLabelValues(sourceFreeList).Inc()
		return id, nil
	case errors.Is(err, freelist.ErrOutOfSpace):
		return p.grow()
	default:
		p.checkCorruption(err)
		return format.InvalidPageID, err
	}
}

// grow appends GrowPages pages to the file, returns the first and frees the
// rest. The new pages are zeroed in the dirty set so the next commit
// extends the file. Called only with an empty free list; on error the
// pager is left as it was.
func (p *Pager) grow() (format.PageID, error) {
	n := uint64(p.opts.GrowPages)
	count := p.hdr.PageCount
	if count > uint64(format.InvalidPageID)-n {
		return format.InvalidPageID, fmt.Errorf("pager: %w: page count %d", freelist.ErrDatabaseTooLarge, count)
	}
	if _, err := buf.FileSize(count+n, p.shift); err != nil {
		return format.InvalidPageID, fmt.Errorf("pager: %w: %w", freelist.ErrDatabaseTooLarge, err)
	}

	first := format.PageID(count)
	saved, savedDirty := p.hdr, p.hdrDirty
	undo := func() {
		p.hdr, p.hdrDirty = saved, savedDirty
		p.setBounds()
		for i := range n {
			p.dirty.drop(first + format.PageID(i))
		}
	}

	p.hdr.PageCount = count + n
	p.hdrDirty = true
	p.setBounds()
	for i := range n {
		p.dirty.put(first+format.PageID(i), p.zero)
	}

	// Free the extra pages highest first, so they are reused lowest first.
	for id := first + format.PageID(n) - 1; id > first; id-- {
		head, err := p.alloc.Free(p.hdr.FreeListHead, id)
		if err != nil {
			undo()
			p.checkCorruption(err)
			return format.InvalidPageID, fmt.Errorf("pager: grow: %w", err)
		}
		p.hdr.FreeListHead = head
	}

	p.metrics.allocations.WithLabelValues(sourceGrowth).Inc()
	p.log.Debug("grew page file", "path", p.path, "first", first, "added", n, "pages", p.hdr.PageCount)
	return first, nil
}

// Free returns page id to the free list. Freeing a page that is already
// free corrupts the list; Verify detects it.
func (p *Pager) Free(id format.PageID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if id == format.HeaderPageID || uint64(id) >= p.hdr.PageCount {
		return fmt.Errorf("%w: page %d, file has %d pages", ErrPageRange, id, p.hdr.PageCount)
	}

	head, err := p.alloc.Free(p.hdr.FreeListHead, id)
	if err != nil {
		p.checkCorruption(err)
		return err
	}
	p.hdr.FreeListHead = head
	p.hdrDirty = true
	p.metrics.frees.Inc()
	return nil
}

// checkCorruption records err if it reports a corrupt free list.
func (p *Pager) checkCorruption(err error) {
	if !errors.Is(err, freelist.ErrDataCorrupted) {
		return
	}
	p.metrics.corruptions.Inc()
	p.log.Warn("free list corruption", "path", p.path, "error", err)
}
