// Package pager manages a page file: a header page followed by fixed-size
// pages, some of which are free and recorded on the free list.
//
// A Pager owns one file opened through a vfs.VFS. Pages written with
// WritePage and free list updates stay in a write-back set until Commit,
// which persists them with an ordered protocol:
//
//  1. The last committed header is written with PrimarySeq bumped (the file
//     is now marked as mid-commit, still pointing at the committed free list)
//  2. Dirty pages are written, coalesced into contiguous runs
//  3. The file is synced (FlushAuto, FlushFull)
//  4. The new header, with its free list head and page count and with
//     SecondarySeq = PrimarySeq, is written
//  5. The file is synced (FlushAuto, FlushFull)
//
// If a crash happens between steps 1 and 4, the header's sequence numbers
// differ on the next Open, which logs a warning and, with VerifyUnclean set,
// validates the free list before handing out the pager.
//
// Alloc reuses pages from the free list and grows the file when the list is
// empty. Free pushes a page back. Page 0 holds the header and is never
// handed out or accepted.
//
// Example:
//
//	p, err := pager.Create(osfs.New(), "pages.db", nil)
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	id, err := p.Alloc()
//	if err != nil {
//	    return err
//	}
//	if err := p.WritePage(id, page); err != nil {
//	    return err
//	}
//	return p.Commit(ctx)
//
// A Pager is safe for use by multiple goroutines; operations are
// serialized.
package pager
