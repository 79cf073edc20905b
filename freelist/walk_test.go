package freelist

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/pagekit/internal/format"
)

func TestWalk_ReportsPagesHeadFirst(t *testing.T) {
	a, store := newTestAllocator(t)
	head := freeAll(t, a, seq(1, 10)...)

	var pages []ListPageInfo
	err := Walk(store, head, func(info ListPageInfo) error {
		pages = append(pages, info)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, pages, 2)

	require.Equal(t, format.PageID(8), pages[0].ID)
	require.Equal(t, format.PageID(1), pages[0].Next)
	require.Equal(t, []format.PageID{9, 10}, pages[0].Entries)

	require.Equal(t, format.PageID(1), pages[1].ID)
	require.Equal(t, format.InvalidPageID, pages[1].Next)
	require.Equal(t, seq(2, 7), pages[1].Entries)
}

func TestWalk_EmptyList(t *testing.T) {
	store := newMemStore(testPageSize)
	called := false
	err := Walk(store, format.InvalidPageID, func(ListPageInfo) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	require.False(t, called)
}

func TestWalk_StopsOnCallbackError(t *testing.T) {
	a, store := newTestAllocator(t)
	head := freeAll(t, a, seq(1, 10)...)
	stop := errors.New("stop")

	visits := 0
	err := Walk(store, head, func(ListPageInfo) error {
		visits++
		return stop
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 1, visits)
}

func TestCollect_MatchesAllocationOrder(t *testing.T) {
	a, store := newTestAllocator(t)
	head := freeAll(t, a, seq(1, 15)...)

	order, err := Collect(store, head)
	require.NoError(t, err)
	require.Len(t, order, 15)

	for i, want := range order {
		id, next, err := a.Allocate(head)
		require.NoError(t, err)
		require.Equal(t, want, id, "allocation %d", i)
		head = next
	}
	require.Equal(t, format.InvalidPageID, head)
}

func TestVerify_Stats(t *testing.T) {
	a, store := newTestAllocator(t)
	head := freeAll(t, a, seq(1, 20)...)

	stats, err := Verify(store, head, VerifyOptions{PageCount: 21, Reserved: []format.PageID{0}})
	require.NoError(t, err)
	require.Equal(t, 3, stats.ListPages)
	require.Equal(t, 17, stats.Entries)
	require.Equal(t, 20, stats.FreePages())
}

func TestVerify_DetectsCorruption(t *testing.T) {
	tests := []struct {
		name   string
		mangle func(store *memStore, head format.PageID)
		opts   VerifyOptions
	}{
		{
			name: "cycle",
			mangle: func(store *memStore, head format.PageID) {
				// tail list page points back at the head
				store.listPage(1).SetNextPageID(head)
			},
		},
		{
			name: "duplicate entry",
			mangle: func(store *memStore, _ format.PageID) {
				store.listPage(1).SetEntry(format.ListFirstEntryOffset, 3)
			},
		},
		{
			name: "entry equals a list page",
			mangle: func(store *memStore, head format.PageID) {
				store.listPage(1).SetEntry(format.ListFirstEntryOffset, head)
			},
		},
		{
			name: "reserved page",
			mangle: func(store *memStore, _ format.PageID) {
				store.listPage(1).SetEntry(format.ListFirstEntryOffset, 0)
			},
			opts: VerifyOptions{Reserved: []format.PageID{0}},
		},
		{
			name: "beyond page count",
			mangle: func(store *memStore, _ format.PageID) {
				store.listPage(1).SetEntry(format.ListFirstEntryOffset, 500)
			},
			opts: VerifyOptions{PageCount: 100},
		},
		{
			name: "corrupt offset",
			mangle: func(store *memStore, _ format.PageID) {
				store.listPage(1).SetNextEntryOffset(19)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, store := newTestAllocator(t)
			head := freeAll(t, a, seq(1, 10)...)
			tt.mangle(store, head)

			_, err := Verify(store, head, tt.opts)
			require.ErrorIs(t, err, ErrDataCorrupted)
		})
	}
}

func TestVerify_ReadError(t *testing.T) {
	a, store := newTestAllocator(t)
	head := freeAll(t, a, seq(1, 3)...)
	store.failRead = true

	_, err := Verify(store, head, VerifyOptions{})
	require.ErrorIs(t, err, errInjected)
}
