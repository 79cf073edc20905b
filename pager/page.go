package pager

import (
	"fmt"

	"github.com/joshuapare/pagekit/freelist"
	"github.com/joshuapare/pagekit/internal/format"
)

// ReadPage fills b (PageSize bytes) with page id, as last written.
func (p *Pager) ReadPage(id format.PageID, b []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	return p.readPage(id, b)
}

// WritePage replaces the contents of page id with b (PageSize bytes). The
// page reaches the file at the next Commit.
func (p *Pager) WritePage(id format.PageID, b []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	return p.writePage(id, b)
}

func (p *Pager) checkPage(id format.PageID, b []byte) error {
	if id == format.HeaderPageID || uint64(id) >= p.hdr.PageCount {
		return fmt.Errorf("%w: page %d, file has %d pages", ErrPageRange, id, p.hdr.PageCount)
	}
	if len(b) != p.pageSize {
		return fmt.Errorf("%w: %d bytes, page size %d", ErrBufferSize, len(b), p.pageSize)
	}
	return nil
}

func (p *Pager) readPage(id format.PageID, b []byte) error {
	if err := p.checkPage(id, b); err != nil {
		return err
	}
	if data, ok := p.dirty.get(id); ok {
		copy(b, data)
		return nil
	}
	off, err := format.PageOffset(id, p.shift)
	if err != nil {
		return fmt.Errorf("pager: %w: %w", freelist.ErrDatabaseTooLarge, err)
	}
	if err := p.file.Read(off, b); err != nil {
		return fmt.Errorf("pager: read page %d: %w", id, err)
	}
	return nil
}

func (p *Pager) writePage(id format.PageID, b []byte) error {
	if err := p.checkPage(id, b); err != nil {
		return err
	}
	p.dirty.put(id, b)
	return nil
}

// pageStore is the freelist.PageStore view of a pager whose mutex is held.
type pageStore struct {
	p *Pager
}

func (s pageStore) PageSize() int {
	return s.p.pageSize
}

func (s pageStore) ReadPage(id format.PageID, b []byte) error {
	return s.p.readPage(id, b)
}

func (s pageStore) WritePage(id format.PageID, b []byte) error {
	return s.p.writePage(id, b)
}
