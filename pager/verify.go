package pager

import (
	"github.com/joshuapare/pagekit/freelist"
	"github.com/joshuapare/pagekit/internal/format"
)

// Verify checks the free list: every listed page lies inside the file, is
// not the header page and appears once.
func (p *Pager) Verify() (freelist.Stats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return freelist.Stats{}, ErrClosed
	}
	return p.verifyLocked()
}

func (p *Pager) verifyLocked() (freelist.Stats, error) {
	stats, err := freelist.Verify(pageStore{p}, p.hdr.FreeListHead, freelist.VerifyOptions{
		PageCount: p.hdr.PageCount,
		Reserved:  []format.PageID{format.HeaderPageID},
	})
	if err != nil {
		p.checkCorruption(err)
	}
	return stats, err
}

// FreePages returns the free page ids in the order Alloc would hand them
// out.
func (p *Pager) FreePages() ([]format.PageID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}
	ids, err := freelist.Collect(pageStore{p}, p.hdr.FreeListHead)
	if err != nil {
		p.checkCorruption(err)
	}
	return ids, err
}
