package freelist

import (
	"errors"
	"fmt"

	"github.com/joshuapare/pagekit/internal/format"
)

var errInjected = errors.New("injected I/O failure")

// memStore is a map-backed PageStore. Pages never written read as zeros.
type memStore struct {
	size      int
	pages     map[format.PageID][]byte
	reads     int
	writes    int
	failRead  bool
	failWrite bool
}

func newMemStore(size int) *memStore {
	return &memStore{size: size, pages: make(map[format.PageID][]byte)}
}

func (s *memStore) PageSize() int { return s.size }

func (s *memStore) ReadPage(id format.PageID, buf []byte) error {
	s.reads++
	if s.failRead {
		return errInjected
	}
	if len(buf) != s.size {
		return fmt.Errorf("read page %d: buffer of %d bytes", id, len(buf))
	}
	if p, ok := s.pages[id]; ok {
		copy(buf, p)
	} else {
		clear(buf)
	}
	return nil
}

func (s *memStore) WritePage(id format.PageID, buf []byte) error {
	s.writes++
	if s.failWrite {
		return errInjected
	}
	if len(buf) != s.size {
		return fmt.Errorf("write page %d: buffer of %d bytes", id, len(buf))
	}
	s.pages[id] = append([]byte(nil), buf...)
	return nil
}

// snapshot copies every page so tests can assert nothing changed.
func (s *memStore) snapshot() map[format.PageID][]byte {
	out := make(map[format.PageID][]byte, len(s.pages))
	for id, p := range s.pages {
		out[id] = append([]byte(nil), p...)
	}
	return out
}

// listPage returns a view of a stored page.
func (s *memStore) listPage(id format.PageID) format.ListPage {
	return format.ListPage(s.pages[id])
}
