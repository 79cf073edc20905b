package pager

import (
	"context"
	"fmt"
	"slices"

	"github.com/joshuapare/pagekit/internal/format"
	"github.com/joshuapare/pagekit/vfs"
)

// maxRunPages caps the size of a single write when flushing a run.
const maxRunPages = 256

// run is a stretch of consecutive dirty pages.
type run struct {
	First format.PageID
	Count int
}

// dirtySet holds pages written since the last commit. Reads consult it
// before the file, so it doubles as the pager's page cache.
//
// NOT thread-safe; the pager serializes access.
type dirtySet struct {
	pageSize int
	pages    map[format.PageID][]byte
	spare    [][]byte // released page buffers
}

func newDirtySet(pageSize int) *dirtySet {
	return &dirtySet{
		pageSize: pageSize,
		pages:    make(map[format.PageID][]byte),
	}
}

// put records a copy of data as the new contents of page id.
func (d *dirtySet) put(id format.PageID, data []byte) {
	b, ok := d.pages[id]
	if !ok {
		b = d.alloc()
		d.pages[id] = b
	}
	copy(b, data)
}

// get returns the buffered contents of page id. The slice is owned by the
// set and valid until the next put, reset or flush.
func (d *dirtySet) get(id format.PageID) ([]byte, bool) {
	b, ok := d.pages[id]
	return b, ok
}

// drop forgets page id, if buffered.
func (d *dirtySet) drop(id format.PageID) {
	if b, ok := d.pages[id]; ok {
		d.spare = append(d.spare, b)
		delete(d.pages, id)
	}
}

func (d *dirtySet) len() int {
	return len(d.pages)
}

// reset drops every buffered page.
func (d *dirtySet) reset() {
	for id, b := range d.pages {
		d.spare = append(d.spare, b)
		delete(d.pages, id)
	}
}

func (d *dirtySet) alloc() []byte {
	if n := len(d.spare); n > 0 {
		b := d.spare[n-1]
		d.spare = d.spare[:n-1]
		return b
	}
	return make([]byte, d.pageSize)
}

// coalesce sorts the dirty page ids and merges consecutive ids into runs of
// at most maxRun pages.
func (d *dirtySet) coalesce(maxRun int) []run {
	if len(d.pages) == 0 {
		return nil
	}
	ids := make([]format.PageID, 0, len(d.pages))
	for id := range d.pages {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	runs := make([]run, 0, len(ids))
	current := run{First: ids[0], Count: 1}
	for _, id := range ids[1:] {
		if id == current.First+format.PageID(current.Count) && current.Count < maxRun {
			current.Count++
			continue
		}
		runs = append(runs, current)
		current = run{First: id, Count: 1}
	}
	return append(runs, current)
}

// flush writes every dirty page to f, one write per run, and clears the set.
// On error the set is left intact so the flush can be retried; some runs
// may already be on disk.
func (d *dirtySet) flush(ctx context.Context, f vfs.BlockAccessFile, shift uint) (pages, runs int, err error) {
	if len(d.pages) == 0 {
		return 0, 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	coalesced := d.coalesce(maxRunPages)
	var scratch []byte
	for _, r := range coalesced {
		if err := ctx.Err(); err != nil {
			return pages, runs, err
		}
		off, err := format.PageOffset(r.First, shift)
		if err != nil {
			return pages, runs, err
		}

		data := d.pages[r.First]
		if r.Count > 1 {
			if scratch == nil {
				scratch = make([]byte, 0, maxRunPages*d.pageSize)
			}
			data = scratch[:0]
			for i := range r.Count {
				data = append(data, d.pages[r.First+format.PageID(i)]...)
			}
		}
		if err := f.Write(data, off); err != nil {
			return pages, runs, fmt.Errorf("write pages %d-%d: %w", r.First, r.First+format.PageID(r.Count-1), err)
		}
		pages += r.Count
		runs++
	}

	d.reset()
	return pages, runs, nil
}
