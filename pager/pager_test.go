package pager

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/pagekit/freelist"
	"github.com/joshuapare/pagekit/internal/format"
	"github.com/joshuapare/pagekit/vfs"
	"github.com/joshuapare/pagekit/vfs/memfs"
)

func TestCreate_WritesHeader(t *testing.T) {
	p, fsys := createMem(t, nil)
	require.Equal(t, 4096, p.PageSize())
	require.Equal(t, uint64(1), p.PageCount())
	require.NoError(t, p.Close())

	data := fsys.Bytes(testPath)
	require.Len(t, data, 4096)
	hdr, err := format.ParseHeader(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(format.DefaultPageShift), hdr.PageShift)
	assert.Equal(t, uint64(1), hdr.PageCount)
	assert.Equal(t, format.InvalidPageID, hdr.FreeListHead)
	assert.True(t, hdr.Clean())
}

func TestCreate_Errors(t *testing.T) {
	t.Run("exists", func(t *testing.T) {
		p, fsys := createMem(t, nil)
		require.NoError(t, p.Close())

		_, err := Create(fsys, testPath, nil)
		require.ErrorIs(t, err, vfs.ErrAlreadyExists)
	})

	for _, shift := range []uint{11, 17} {
		_, err := Create(memfs.New(), testPath, &Options{PageShift: shift})
		require.ErrorIs(t, err, ErrBadPageShift, "shift %d", shift)
	}
}

func TestCreate_PageShifts(t *testing.T) {
	for shift := uint(format.MinPageShift); shift <= format.MaxPageShift; shift++ {
		fsys := memfs.New()
		p, err := Create(fsys, testPath, &Options{PageShift: shift})
		require.NoError(t, err)
		allocN(t, p, 3)
		require.NoError(t, p.Close())

		p, err = Open(fsys, testPath, nil)
		require.NoError(t, err)
		require.Equal(t, 1<<shift, p.PageSize())
		require.Equal(t, uint64(4), p.PageCount())
		require.NoError(t, p.Close())
	}
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(memfs.New(), "missing.db", nil)
	require.ErrorIs(t, err, vfs.ErrPathNotFound)
}

func TestAlloc_GrowsThenReuses(t *testing.T) {
	p, _ := createMem(t, nil)
	defer p.Close()

	require.Equal(t, []format.PageID{1, 2, 3}, allocN(t, p, 3))
	require.Equal(t, uint64(4), p.PageCount())

	require.NoError(t, p.Free(2))
	id, err := p.Alloc()
	require.NoError(t, err)
	require.Equal(t, format.PageID(2), id)

	require.NoError(t, p.Free(1))
	require.NoError(t, p.Free(3))
	require.Equal(t, []format.PageID{3, 1}, allocN(t, p, 2))
	require.Equal(t, format.InvalidPageID, p.Header().FreeListHead)
	require.Equal(t, uint64(4), p.PageCount(), "reuse must not grow the file")
}

func TestAlloc_GrowPages(t *testing.T) {
	p, _ := createMem(t, &Options{GrowPages: 4})
	defer p.Close()

	id, err := p.Alloc()
	require.NoError(t, err)
	require.Equal(t, format.PageID(1), id)
	require.Equal(t, uint64(5), p.PageCount())

	free, err := p.FreePages()
	require.NoError(t, err)
	require.Equal(t, []format.PageID{2, 3, 4}, free)

	require.Equal(t, []format.PageID{2, 3, 4, 5}, allocN(t, p, 4))
	require.Equal(t, uint64(9), p.PageCount())
}

func TestFree_Range(t *testing.T) {
	p, _ := createMem(t, nil)
	defer p.Close()
	allocN(t, p, 2)

	require.ErrorIs(t, p.Free(format.HeaderPageID), ErrPageRange)
	require.ErrorIs(t, p.Free(3), ErrPageRange)
	require.ErrorIs(t, p.Free(format.InvalidPageID), ErrPageRange)
}

func TestReadWritePage(t *testing.T) {
	p, _ := createMem(t, nil)
	defer p.Close()
	ids := allocN(t, p, 2)

	page := fillPage(p.PageSize(), ids[1])
	require.NoError(t, p.WritePage(ids[1], page))
	got := make([]byte, p.PageSize())
	require.NoError(t, p.ReadPage(ids[1], got))
	require.Equal(t, page, got)

	require.NoError(t, p.ReadPage(ids[0], got))
	require.Equal(t, make([]byte, p.PageSize()), got, "grown pages read as zeros")

	require.ErrorIs(t, p.ReadPage(format.HeaderPageID, got), ErrPageRange)
	require.ErrorIs(t, p.WritePage(format.HeaderPageID, got), ErrPageRange)
	require.ErrorIs(t, p.ReadPage(3, got), ErrPageRange)
	require.ErrorIs(t, p.WritePage(ids[0], got[:100]), ErrBufferSize)
}

func TestPager_PersistsAcrossReopen(t *testing.T) {
	p, fsys := createMem(t, nil)
	ids := allocN(t, p, 10)
	for _, id := range ids {
		require.NoError(t, p.WritePage(id, fillPage(p.PageSize(), id)))
	}
	for _, id := range ids {
		if id%2 == 0 {
			require.NoError(t, p.Free(id))
		}
	}
	want, err := p.FreePages()
	require.NoError(t, err)
	require.NoError(t, p.Commit(context.Background()))
	require.NoError(t, p.Close())

	p, err = Open(fsys, testPath, nil)
	require.NoError(t, err)
	defer p.Close()
	require.False(t, p.Recovered())
	require.Equal(t, uint64(11), p.PageCount())

	got, err := p.FreePages()
	require.NoError(t, err)
	require.Equal(t, want, got)

	buf := make([]byte, p.PageSize())
	for _, id := range ids {
		if id%2 == 1 {
			require.NoError(t, p.ReadPage(id, buf))
			require.Equal(t, fillPage(p.PageSize(), id), buf, "page %d", id)
		}
	}

	stats, err := p.Verify()
	require.NoError(t, err)
	require.Equal(t, 5, stats.FreePages())
}

func TestClose_CommitsPendingChanges(t *testing.T) {
	p, fsys := createMem(t, nil)
	allocN(t, p, 3)
	require.NoError(t, p.Free(2))
	require.NoError(t, p.Close())
	require.ErrorIs(t, p.Close(), ErrClosed)

	p, err := Open(fsys, testPath, nil)
	require.NoError(t, err)
	defer p.Close()
	require.Equal(t, uint64(4), p.PageCount())
	require.Equal(t, format.PageID(2), p.Header().FreeListHead)
}

func TestClosedPager(t *testing.T) {
	p, _ := createMem(t, nil)
	require.NoError(t, p.Close())

	_, err := p.Alloc()
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, p.Free(1), ErrClosed)
	require.ErrorIs(t, p.ReadPage(1, make([]byte, 4096)), ErrClosed)
	require.ErrorIs(t, p.WritePage(1, make([]byte, 4096)), ErrClosed)
	require.ErrorIs(t, p.Commit(context.Background()), ErrClosed)
	require.ErrorIs(t, p.Rollback(), ErrClosed)
	require.ErrorIs(t, p.Sync(), ErrClosed)
	_, err = p.Verify()
	require.ErrorIs(t, err, ErrClosed)
}

func TestOpen_Locked(t *testing.T) {
	p, fsys := createMem(t, nil)

	_, err := Open(fsys, testPath, nil)
	require.ErrorIs(t, err, vfs.ErrLocked)

	require.NoError(t, p.Close())
	p, err = Open(fsys, testPath, nil)
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestOpen_RejectsBadFiles(t *testing.T) {
	tests := []struct {
		name   string
		mangle func(t *testing.T, fsys *memfs.FS)
		want   error
	}{
		{
			name: "empty file",
			mangle: func(_ *testing.T, fsys *memfs.FS) {
				fsys.SetBytes(testPath, nil)
			},
			want: format.ErrTruncated,
		},
		{
			name: "bad signature",
			mangle: func(_ *testing.T, fsys *memfs.FS) {
				data := fsys.Bytes(testPath)
				copy(data, "xxxx")
				fsys.SetBytes(testPath, data)
			},
			want: format.ErrSignatureMismatch,
		},
		{
			name: "bad checksum",
			mangle: func(_ *testing.T, fsys *memfs.FS) {
				data := fsys.Bytes(testPath)
				data[format.HeaderPageCountOffset] ^= 0xFF
				fsys.SetBytes(testPath, data)
			},
			want: format.ErrBadChecksum,
		},
		{
			name: "truncated pages",
			mangle: func(t *testing.T, fsys *memfs.FS) {
				rewriteHeader(t, fsys, testPath, func(h *format.Header) { h.PageCount = 50 })
			},
			want: format.ErrTruncated,
		},
		{
			name: "head outside file",
			mangle: func(t *testing.T, fsys *memfs.FS) {
				rewriteHeader(t, fsys, testPath, func(h *format.Header) { h.FreeListHead = 9 })
			},
			want: freelist.ErrDataCorrupted,
		},
		{
			name: "head is header page",
			mangle: func(t *testing.T, fsys *memfs.FS) {
				rewriteHeader(t, fsys, testPath, func(h *format.Header) { h.FreeListHead = 0 })
			},
			want: freelist.ErrDataCorrupted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, fsys := createMem(t, nil)
			allocN(t, p, 3)
			require.NoError(t, p.Close())
			tt.mangle(t, fsys)

			_, err := Open(fsys, testPath, nil)
			require.ErrorIs(t, err, tt.want)
			require.ErrorIs(t, err, freelist.ErrDataCorrupted)

			// a failed open must not leave the file busy
			require.NoError(t, fsys.RemoveFile(testPath))
		})
	}
}

func TestOpen_UncleanShutdown(t *testing.T) {
	p, fsys := createMem(t, nil)
	allocN(t, p, 4)
	require.NoError(t, p.Free(3))
	require.NoError(t, p.Close())
	rewriteHeader(t, fsys, testPath, func(h *format.Header) { h.PrimarySeq++ })

	logger, out := bufferLogger()
	p, err := Open(fsys, testPath, &Options{Logger: logger, VerifyUnclean: true})
	require.NoError(t, err)
	require.True(t, p.Recovered())
	require.Contains(t, out.String(), "unclean shutdown detected")

	// the next commit repairs the marker
	require.NoError(t, p.Free(2))
	require.NoError(t, p.Close())
	hdr, err := format.ParseHeader(fsys.Bytes(testPath))
	require.NoError(t, err)
	require.True(t, hdr.Clean())
}

func TestOpen_UncleanWithCorruptList(t *testing.T) {
	p, fsys := createMem(t, nil)
	allocN(t, p, 4)
	require.NoError(t, p.Free(3))
	require.NoError(t, p.Free(4))
	require.NoError(t, p.Close())
	rewriteHeader(t, fsys, testPath, func(h *format.Header) { h.PrimarySeq++ })
	rewritePage(t, fsys, testPath, 3, func(lp format.ListPage) { lp.SetNextEntryOffset(21) })

	_, err := Open(fsys, testPath, nil)
	require.ErrorIs(t, err, freelist.ErrDataCorrupted)

	// without verification the file opens and the corruption surfaces on use
	p, err = Open(fsys, testPath, &Options{})
	require.NoError(t, err)
	defer p.Close()
	head := p.Header().FreeListHead
	_, err = p.Alloc()
	require.ErrorIs(t, err, freelist.ErrDataCorrupted)
	require.Equal(t, head, p.Header().FreeListHead)
}

func TestRollback(t *testing.T) {
	p, _ := createMem(t, nil)
	defer p.Close()
	allocN(t, p, 3)
	require.NoError(t, p.Free(2))
	require.NoError(t, p.Commit(context.Background()))
	before := p.Header()

	allocN(t, p, 4)
	require.NoError(t, p.Free(1))
	require.NoError(t, p.WritePage(3, fillPage(p.PageSize(), 3)))
	require.NotZero(t, p.DirtyPages())

	require.NoError(t, p.Rollback())
	require.Equal(t, before, p.Header())
	require.Zero(t, p.DirtyPages())

	free, err := p.FreePages()
	require.NoError(t, err)
	require.Equal(t, []format.PageID{2}, free)
	require.ErrorIs(t, p.Free(4), ErrPageRange, "grown pages are gone")
}

func TestPager_ConcurrentAlloc(t *testing.T) {
	p, _ := createMem(t, &Options{GrowPages: 8})
	defer p.Close()

	const workers, each = 8, 50
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[format.PageID]bool)
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range each {
				id, err := p.Alloc()
				assert.NoError(t, err)
				mu.Lock()
				assert.False(t, seen[id], "page %d handed out twice", id)
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Len(t, seen, workers*each)
}

func TestOpen_PartialTrailingPage(t *testing.T) {
	p, fsys := createMem(t, nil)
	allocN(t, p, 2)
	require.NoError(t, p.Close())
	fsys.SetBytes(testPath, append(fsys.Bytes(testPath), make([]byte, 100)...))

	logger, out := bufferLogger()
	p, err := Open(fsys, testPath, &Options{Logger: logger})
	require.NoError(t, err)
	defer p.Close()
	require.Contains(t, out.String(), "file ends in a partial page")
	require.Equal(t, uint64(3), p.PageCount())
}
