package freelist

import (
	"fmt"

	"github.com/joshuapare/pagekit/internal/format"
)

// PageStore is the page-level access the allocator needs. The pager
// implements it on top of its page cache.
type PageStore interface {
	// PageSize returns the size of every page in bytes.
	PageSize() int

	// ReadPage fills buf (PageSize bytes) with the contents of page id.
	ReadPage(id format.PageID, buf []byte) error

	// WritePage persists buf (PageSize bytes) as page id.
	WritePage(id format.PageID, buf []byte) error
}

func checkPageSize(size int) error {
	if size < format.MinListPageSize || !format.IsPowerOfTwo(size) {
		return fmt.Errorf("%w: %d", ErrBadPageSize, size)
	}
	return nil
}
