package pager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/joshuapare/pagekit/freelist"
	"github.com/joshuapare/pagekit/internal/buf"
	"github.com/joshuapare/pagekit/internal/format"
	"github.com/joshuapare/pagekit/vfs"
)

// Pager manages the pages of one file.
type Pager struct {
	mu sync.Mutex

	path     string
	file     vfs.BlockAccessFile
	opts     Options
	log      *slog.Logger
	metrics  *metrics
	shift    uint
	pageSize int

	hdr       format.Header // current state, including uncommitted changes
	committed format.Header // state as of the last successful commit
	hdrDirty  bool
	hdrBuf    []byte
	zero      []byte

	dirty     *dirtySet
	alloc     *freelist.Allocator
	recovered bool
	closed    bool
}

// Create creates a new page file at path. It fails with vfs.ErrAlreadyExists
// if the file exists.
func Create(fsys vfs.VFS, path string, opts *Options) (*Pager, error) {
	o := opts.withDefaults()
	if !format.ValidPageShift(o.PageShift) {
		return nil, fmt.Errorf("%w: %d (want %d-%d)", ErrBadPageShift, o.PageShift,
			format.MinPageShift, format.MaxPageShift)
	}

	f, _, err := fsys.OpenForBlockAccess(path, o.PageShift, true, true)
	if err != nil {
		return nil, fmt.Errorf("pager: create %s: %w", path, err)
	}
	if err := f.Lock(); err != nil {
		return nil, closeOnError(f, fmt.Errorf("pager: lock %s: %w", path, err))
	}

	p := newPager(path, f, o, format.NewHeader(o.PageShift))
	if err := p.writeHeader(&p.hdr); err != nil {
		return nil, closeOnError(f, fmt.Errorf("pager: write header: %w", err))
	}
	if o.FlushMode != FlushDataOnly {
		if err := f.Sync(); err != nil {
			return nil, closeOnError(f, fmt.Errorf("pager: sync header: %w", err))
		}
	}
	p.committed = p.hdr

	p.log.Debug("created page file", "path", path, "page_size", p.pageSize)
	return p, nil
}

// Open opens an existing page file. The page size comes from the header.
func Open(fsys vfs.VFS, path string, opts *Options) (*Pager, error) {
	o := opts.withDefaults()

	shift, err := probeShift(fsys, path)
	if err != nil {
		return nil, err
	}

	f, size, err := fsys.OpenForBlockAccess(path, shift, false, false)
	if err != nil {
		return nil, fmt.Errorf("pager: open %s: %w", path, err)
	}
	if err := f.Lock(); err != nil {
		return nil, closeOnError(f, fmt.Errorf("pager: lock %s: %w", path, err))
	}

	page := make([]byte, 1<<shift)
	if err := f.Read(0, page); err != nil {
		return nil, closeOnError(f, fmt.Errorf("pager: read header: %w", err))
	}
	hdr, err := format.ParseHeader(page)
	if err != nil {
		return nil, closeOnError(f, fmt.Errorf("pager: %w: %w", freelist.ErrDataCorrupted, err))
	}
	if uint(hdr.PageShift) != shift {
		return nil, closeOnError(f, fmt.Errorf("pager: %w: header changed while opening", freelist.ErrDataCorrupted))
	}
	if err := checkHeader(hdr, size); err != nil {
		return nil, closeOnError(f, err)
	}

	p := newPager(path, f, o, hdr)
	p.committed = hdr
	if need, _ := buf.FileSize(hdr.PageCount, shift); size > need {
		p.log.Warn("file extends past last page", "path", path, "size", size, "pages", hdr.PageCount)
	}
	if !format.IsPageAligned(size, shift) {
		p.log.Warn("file ends in a partial page", "path", path, "size", size, "page_size", p.pageSize)
	}

	if !hdr.Clean() {
		p.recovered = true
		p.log.Warn("unclean shutdown detected",
			"path", path,
			"primary_seq", hdr.PrimarySeq,
			"secondary_seq", hdr.SecondarySeq)
		if o.VerifyUnclean {
			if _, err := p.verifyLocked(); err != nil {
				return nil, closeOnError(f, fmt.Errorf("pager: verify after unclean shutdown: %w", err))
			}
		}
	}

	p.log.Debug("opened page file", "path", path, "page_size", p.pageSize, "pages", hdr.PageCount)
	return p, nil
}

func newPager(path string, f vfs.BlockAccessFile, o Options, hdr format.Header) *Pager {
	shift := uint(hdr.PageShift)
	pageSize := format.PageSize(shift)
	p := &Pager{
		path:     path,
		file:     f,
		opts:     o,
		log:      o.Logger.With("component", "pager"),
		metrics:  newMetrics(o.Registerer),
		shift:    shift,
		pageSize: pageSize,
		hdr:      hdr,
		hdrBuf:   make([]byte, pageSize),
		zero:     make([]byte, pageSize),
		dirty:    newDirtySet(pageSize),
	}
	// The page size is a valid shift here, so New cannot fail.
	p.alloc, _ = freelist.New(pageStore{p})
	p.setBounds()
	return p
}

// probeShift reads the page shift from the header without knowing the
// block size.
func probeShift(fsys vfs.VFS, path string) (uint, error) {
	f, size, err := fsys.OpenForRandomAccess(path, false, false)
	if err != nil {
		return 0, fmt.Errorf("pager: open %s: %w", path, err)
	}
	defer f.Close()

	if size < format.HeaderMinSize {
		return 0, fmt.Errorf("pager: %w: %w: %d bytes", freelist.ErrDataCorrupted, format.ErrTruncated, size)
	}
	b := make([]byte, format.HeaderMinSize)
	if err := f.Read(0, b); err != nil {
		return 0, fmt.Errorf("pager: read header: %w", err)
	}
	hdr, err := format.ParseHeader(b)
	if err != nil {
		return 0, fmt.Errorf("pager: %w: %w", freelist.ErrDataCorrupted, err)
	}
	return uint(hdr.PageShift), nil
}

// checkHeader validates header fields against the file size.
func checkHeader(hdr format.Header, size int64) error {
	if hdr.PageCount >= uint64(format.InvalidPageID) {
		return fmt.Errorf("pager: %w: page count %d", freelist.ErrDatabaseTooLarge, hdr.PageCount)
	}
	need, err := buf.FileSize(hdr.PageCount, uint(hdr.PageShift))
	if err != nil {
		return fmt.Errorf("pager: %w: %w", freelist.ErrDatabaseTooLarge, err)
	}
	if size < need {
		return fmt.Errorf("pager: %w: %w: file holds %d bytes, header claims %d pages",
			freelist.ErrDataCorrupted, format.ErrTruncated, size, hdr.PageCount)
	}
	head := hdr.FreeListHead
	if head != format.InvalidPageID && (head == format.HeaderPageID || uint64(head) >= hdr.PageCount) {
		return fmt.Errorf("pager: %w: free list head %d outside file of %d pages",
			freelist.ErrDataCorrupted, head, hdr.PageCount)
	}
	return nil
}

func closeOnError(f vfs.BlockAccessFile, err error) error {
	if cerr := f.Close(); cerr != nil {
		return errors.Join(err, cerr)
	}
	return err
}

// Close commits pending changes and closes the file. The pager is unusable
// afterwards, even if Close returns an error.
func (p *Pager) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.closed = true

	err := p.commitLocked(context.Background())
	if cerr := p.file.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("pager: close: %w", cerr))
	}
	if err != nil {
		p.log.Warn("close failed", "path", p.path, "error", err)
	} else {
		p.log.Debug("closed page file", "path", p.path)
	}
	return err
}

// Sync flushes written data to durable storage. Only needed with
// FlushDataOnly.
func (p *Pager) Sync() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if err := p.file.Sync(); err != nil {
		return fmt.Errorf("pager: sync: %w", err)
	}
	return nil
}

// Path returns the path the pager was opened with.
func (p *Pager) Path() string {
	return p.path
}

// PageSize returns the page size in bytes.
func (p *Pager) PageSize() int {
	return p.pageSize
}

// Header returns the current header, uncommitted changes included.
func (p *Pager) Header() format.Header {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hdr
}

// PageCount returns the number of pages, the header page included.
func (p *Pager) PageCount() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hdr.PageCount
}

// DirtyPages returns the number of pages waiting for the next commit.
func (p *Pager) DirtyPages() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dirty.len()
}

// Recovered reports whether Open found the last commit unfinished.
func (p *Pager) Recovered() bool {
	return p.recovered
}

// setBounds limits the allocator to the pages of the file.
func (p *Pager) setBounds() {
	p.alloc.SetBounds(format.HeaderPageID+1, format.PageID(p.hdr.PageCount))
	p.metrics.pages.Set(float64(p.hdr.PageCount))
}
