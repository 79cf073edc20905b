// Package freelist tracks the free pages of a pagekit file.
//
// # Overview
//
// Free page ids are stored in the file itself, in a singly-linked chain of
// list pages. Each list page holds a stack of page ids plus the id of the
// next list page:
//
//	head ──► [ off | next ──────► [ off | next=invalid ]
//	         [ 12, 40, 7 ]        [ 3, 9, ..., 31     ]
//
// The chain is built out of the pages it tracks: when a page is freed and
// the head list page is full, the freed page becomes the new head; when the
// head list page runs out of entries, the head page itself is handed out.
//
// # Allocator
//
// Allocator is stateless apart from a scratch page buffer. The head page id
// is owned by the caller (the pager keeps it in the file header) and is
// passed into and returned from every call:
//
//	a, err := freelist.New(store)
//	page, head, err := a.Allocate(head)   // pop
//	head, err = a.Free(head, page)        // push
//
// Ordering is LIFO within a list page and depth-first across pages, so the
// most recently freed page is the next one allocated.
//
// # Errors
//
//   - ErrOutOfSpace: the list is empty; grow the file and retry.
//   - ErrDataCorrupted: a value loaded from a list page failed validation.
//     The operation is abandoned; nothing is skipped or repaired.
//   - Store errors (I/O) propagate unchanged.
//
// On any error the returned head equals the head passed in.
//
// # Thread Safety
//
// An Allocator is not safe for concurrent use, and two operations must not
// interleave on the same head. The pager serializes access.
package freelist
