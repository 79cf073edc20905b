package pager

import (
	"fmt"

	"github.com/joshuapare/pagekit/freelist"
	"github.com/joshuapare/pagekit/internal/buf"
	"github.com/joshuapare/pagekit/internal/format"
	"github.com/joshuapare/pagekit/internal/mmfile"
)

// Snapshot is a read-only, memory-mapped view of a page file for offline
// inspection. It sees the file as last written; pages still pending in a
// live Pager are not visible. It implements freelist.PageStore.
type Snapshot struct {
	path     string
	data     []byte
	unmap    func() error
	hdr      format.Header
	pageSize int
}

var _ freelist.PageStore = (*Snapshot)(nil)

// OpenSnapshot maps the file at path and validates its header.
func OpenSnapshot(path string) (*Snapshot, error) {
	data, unmap, err := mmfile.Map(path)
	if err != nil {
		return nil, fmt.Errorf("pager: map %s: %w", path, err)
	}
	s, err := newSnapshot(path, data)
	if err != nil {
		_ = unmap()
		return nil, err
	}
	s.unmap = unmap
	return s, nil
}

func newSnapshot(path string, data []byte) (*Snapshot, error) {
	hdr, err := format.ParseHeader(data)
	if err != nil {
		return nil, fmt.Errorf("pager: %w: %w", freelist.ErrDataCorrupted, err)
	}
	if err := checkHeader(hdr, int64(len(data))); err != nil {
		return nil, err
	}
	return &Snapshot{
		path:     path,
		data:     data,
		hdr:      hdr,
		pageSize: format.PageSize(uint(hdr.PageShift)),
	}, nil
}

// Close unmaps the file. Pages read before Close remain valid; the
// snapshot itself is unusable afterwards.
func (s *Snapshot) Close() error {
	if s.data == nil {
		return ErrClosed
	}
	s.data = nil
	if s.unmap == nil {
		return nil
	}
	return s.unmap()
}

// Header returns the file header.
func (s *Snapshot) Header() format.Header {
	return s.hdr
}

// PageSize implements freelist.PageStore.
func (s *Snapshot) PageSize() int {
	return s.pageSize
}

// ReadPage implements freelist.PageStore.
func (s *Snapshot) ReadPage(id format.PageID, b []byte) error {
	if s.data == nil {
		return ErrClosed
	}
	if id == format.HeaderPageID || uint64(id) >= s.hdr.PageCount {
		return fmt.Errorf("%w: page %d, file has %d pages", ErrPageRange, id, s.hdr.PageCount)
	}
	if len(b) != s.pageSize {
		return fmt.Errorf("%w: %d bytes, page size %d", ErrBufferSize, len(b), s.pageSize)
	}
	off, err := format.PageOffset(id, uint(s.hdr.PageShift))
	if err != nil {
		return fmt.Errorf("pager: %w: %w", freelist.ErrDatabaseTooLarge, err)
	}
	start, ok := buf.ToInt(uint64(off))
	if !ok {
		return fmt.Errorf("pager: %w: page %d", freelist.ErrDatabaseTooLarge, id)
	}
	page, ok := buf.Slice(s.data, start, s.pageSize)
	if !ok {
		return fmt.Errorf("pager: %w: page %d past end of file", format.ErrTruncated, id)
	}
	copy(b, page)
	return nil
}

// WritePage implements freelist.PageStore; it always fails.
func (s *Snapshot) WritePage(id format.PageID, _ []byte) error {
	return fmt.Errorf("%w: page %d", ErrReadOnly, id)
}

// Verify checks the free list as Pager.Verify does.
func (s *Snapshot) Verify() (freelist.Stats, error) {
	if s.data == nil {
		return freelist.Stats{}, ErrClosed
	}
	return freelist.Verify(s, s.hdr.FreeListHead, freelist.VerifyOptions{
		PageCount: s.hdr.PageCount,
		Reserved:  []format.PageID{format.HeaderPageID},
	})
}

// FreePages returns the free page ids in allocation order.
func (s *Snapshot) FreePages() ([]format.PageID, error) {
	if s.data == nil {
		return nil, ErrClosed
	}
	return freelist.Collect(s, s.hdr.FreeListHead)
}

// Walk visits the list pages of the free list, head first.
func (s *Snapshot) Walk(fn func(freelist.ListPageInfo) error) error {
	if s.data == nil {
		return ErrClosed
	}
	return freelist.Walk(s, s.hdr.FreeListHead, fn)
}
