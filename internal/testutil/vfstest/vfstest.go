// Package vfstest is a conformance suite for vfs.VFS implementations. Each
// backend's tests call Run with a constructor; every backend must pass the
// same cases.
package vfstest

import (
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/pagekit/vfs"
)

// BlockShift is the block size (4 KiB) used by the suite.
const BlockShift = 12

const blockSize = 1 << BlockShift

// NewFunc returns a fresh VFS and a directory in which the suite may create
// files. The directory may be virtual for in-memory backends.
type NewFunc func(t *testing.T) (vfs.VFS, string)

// Run runs every conformance case against the VFS returned by newFS.
func Run(t *testing.T, newFS NewFunc) {
	cases := []struct {
		name string
		fn   func(t *testing.T, fsys vfs.VFS, path string)
	}{
		{"OpenForBlockAccessOptions", testOpenForBlockAccessOptions},
		{"BlockAccessFilePersistence", testBlockAccessFilePersistence},
		{"BlockAccessFileReadWriteOffsets", testBlockAccessFileReadWriteOffsets},
		{"BlockAccessMisaligned", testBlockAccessMisaligned},
		{"BlockAccessShortRead", testBlockAccessShortRead},
		{"BlockAccessBadShift", testBlockAccessBadShift},
		{"ExclusiveCreateKeepsFirstFile", testExclusiveCreateKeepsFirstFile},
		{"OpenForRandomAccessOptions", testOpenForRandomAccessOptions},
		{"RandomAccessFilePersistence", testRandomAccessFilePersistence},
		{"RandomAccessFileReadWriteOffsets", testRandomAccessFileReadWriteOffsets},
		{"RemoveFile", testRemoveFile},
		{"RemoveOpenFile", testRemoveOpenFile},
		{"RemoveMissingFile", testRemoveMissingFile},
		{"LockConflict", testLockConflict},
		{"CloseTwice", testCloseTwice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fsys, dir := newFS(t)
			tc.fn(t, fsys, filepath.Join(dir, "test_vfs.pgkt"))
		})
	}
}

func randomBytes(seed uint64, n int) []byte {
	rnd := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(rnd.Uint32())
	}
	return b
}

func testOpenForBlockAccessOptions(t *testing.T, fsys vfs.VFS, path string) {
	_, _, err := fsys.OpenForBlockAccess(path, BlockShift, false, false)
	require.ErrorIs(t, err, vfs.ErrPathNotFound)

	f, size, err := fsys.OpenForBlockAccess(path, BlockShift, true, true)
	require.NoError(t, err)
	require.Equal(t, int64(0), size)
	require.NoError(t, f.Close())

	_, _, err = fsys.OpenForBlockAccess(path, BlockShift, true, true)
	require.ErrorIs(t, err, vfs.ErrAlreadyExists)

	f, size, err = fsys.OpenForBlockAccess(path, BlockShift, true, false)
	require.NoError(t, err)
	require.Equal(t, int64(0), size)
	require.NoError(t, f.Close())

	f, size, err = fsys.OpenForBlockAccess(path, BlockShift, false, false)
	require.NoError(t, err)
	require.Equal(t, int64(0), size)
	require.NoError(t, f.Close())
}

func testBlockAccessFilePersistence(t *testing.T, fsys vfs.VFS, path string) {
	buf := randomBytes(1, blockSize)

	f, size, err := fsys.OpenForBlockAccess(path, BlockShift, true, false)
	require.NoError(t, err)
	require.Equal(t, int64(0), size)
	require.NoError(t, f.Write(buf, 0))
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	f, size, err = fsys.OpenForBlockAccess(path, BlockShift, false, false)
	require.NoError(t, err)
	require.Equal(t, int64(blockSize), size)
	got := make([]byte, blockSize)
	require.NoError(t, f.Read(0, got))
	require.NoError(t, f.Close())

	require.Equal(t, buf, got)
	require.NoError(t, fsys.RemoveFile(path))
}

func testBlockAccessFileReadWriteOffsets(t *testing.T, fsys vfs.VFS, path string) {
	var blocks [4][]byte
	for i := range blocks {
		blocks[i] = randomBytes(uint64(10+i), blockSize)
	}
	got := make([]byte, blockSize)

	f, size, err := fsys.OpenForBlockAccess(path, BlockShift, true, false)
	require.NoError(t, err)
	require.Equal(t, int64(0), size)

	// Fill the file with blocks [2, 1, 3, 0].
	order := []int{2, 1, 3, 0}
	for pos, b := range order {
		require.NoError(t, f.Write(blocks[b], int64(pos)<<BlockShift))
	}

	for _, pos := range []int{2, 1, 0, 3} {
		require.NoError(t, f.Read(int64(pos)<<BlockShift, got))
		require.Equal(t, blocks[order[pos]], got, "block at position %d", pos)
	}

	// Rewrite positions 2, 0 and 3.
	require.NoError(t, f.Write(blocks[2], 2<<BlockShift))
	require.NoError(t, f.Write(blocks[0], 0<<BlockShift))
	require.NoError(t, f.Write(blocks[3], 3<<BlockShift))
	want := [][]byte{blocks[0], blocks[1], blocks[2], blocks[3]}

	for _, pos := range []int{1, 0, 3, 2} {
		require.NoError(t, f.Read(int64(pos)<<BlockShift, got))
		require.Equal(t, want[pos], got, "block at position %d", pos)
	}

	require.NoError(t, f.Close())
	require.NoError(t, fsys.RemoveFile(path))
}

func testBlockAccessMisaligned(t *testing.T, fsys vfs.VFS, path string) {
	f, _, err := fsys.OpenForBlockAccess(path, BlockShift, true, false)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	require.ErrorIs(t, f.Write(make([]byte, blockSize), 100), vfs.ErrMisaligned)
	require.ErrorIs(t, f.Write(make([]byte, 100), 0), vfs.ErrMisaligned)
	require.ErrorIs(t, f.Read(blockSize+1, make([]byte, blockSize)), vfs.ErrMisaligned)
	require.ErrorIs(t, f.Read(0, make([]byte, blockSize-1)), vfs.ErrMisaligned)
}

func testBlockAccessShortRead(t *testing.T, fsys vfs.VFS, path string) {
	f, _, err := fsys.OpenForBlockAccess(path, BlockShift, true, false)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	require.NoError(t, f.Write(make([]byte, blockSize), 0))
	require.ErrorIs(t, f.Read(blockSize, make([]byte, blockSize)), vfs.ErrIO)
}

func testBlockAccessBadShift(t *testing.T, fsys vfs.VFS, path string) {
	_, _, err := fsys.OpenForBlockAccess(path, 2, true, false)
	require.ErrorIs(t, err, vfs.ErrBadBlockShift)
}

func testExclusiveCreateKeepsFirstFile(t *testing.T, fsys vfs.VFS, path string) {
	buf := randomBytes(2, blockSize)

	f, _, err := fsys.OpenForBlockAccess(path, BlockShift, true, true)
	require.NoError(t, err)
	require.NoError(t, f.Write(buf, 0))
	require.NoError(t, f.Close())

	_, _, err = fsys.OpenForBlockAccess(path, BlockShift, true, true)
	require.ErrorIs(t, err, vfs.ErrAlreadyExists)

	f, size, err := fsys.OpenForBlockAccess(path, BlockShift, false, false)
	require.NoError(t, err)
	require.Equal(t, int64(blockSize), size)
	got := make([]byte, blockSize)
	require.NoError(t, f.Read(0, got))
	require.NoError(t, f.Close())
	require.Equal(t, buf, got)
}

func testOpenForRandomAccessOptions(t *testing.T, fsys vfs.VFS, path string) {
	_, _, err := fsys.OpenForRandomAccess(path, false, false)
	require.ErrorIs(t, err, vfs.ErrPathNotFound)

	f, size, err := fsys.OpenForRandomAccess(path, true, true)
	require.NoError(t, err)
	require.Equal(t, int64(0), size)
	require.NoError(t, f.Close())

	_, _, err = fsys.OpenForRandomAccess(path, true, true)
	require.ErrorIs(t, err, vfs.ErrAlreadyExists)

	f, size, err = fsys.OpenForRandomAccess(path, true, false)
	require.NoError(t, err)
	require.Equal(t, int64(0), size)
	require.NoError(t, f.Close())

	f, size, err = fsys.OpenForRandomAccess(path, false, false)
	require.NoError(t, err)
	require.Equal(t, int64(0), size)
	require.NoError(t, f.Close())
}

type span struct{ off, n int }

var (
	writeSpans = []span{{0, 2000}, {2000, 1000}, {3000, 3000}, {6000, 500}, {6500, 2500}}
	readSpans  = []span{{0, 2500}, {2500, 500}, {3000, 3000}, {6000, 1000}, {7000, 2000}}
)

func testRandomAccessFilePersistence(t *testing.T, fsys vfs.VFS, path string) {
	buf := randomBytes(3, 9000)
	got := make([]byte, len(buf))

	f, size, err := fsys.OpenForRandomAccess(path, true, false)
	require.NoError(t, err)
	require.Equal(t, int64(0), size)
	for _, s := range writeSpans {
		require.NoError(t, f.Write(buf[s.off:s.off+s.n], int64(s.off)))
	}
	require.NoError(t, f.Close())

	f, size, err = fsys.OpenForRandomAccess(path, false, false)
	require.NoError(t, err)
	require.Equal(t, int64(len(buf)), size)
	for _, s := range readSpans {
		require.NoError(t, f.Read(int64(s.off), got[s.off:s.off+s.n]))
	}
	require.NoError(t, f.Close())

	require.Equal(t, buf, got)
	require.NoError(t, fsys.RemoveFile(path))
}

func testRandomAccessFileReadWriteOffsets(t *testing.T, fsys vfs.VFS, path string) {
	buf := randomBytes(4, 9000)
	got := make([]byte, len(buf))

	f, size, err := fsys.OpenForRandomAccess(path, true, false)
	require.NoError(t, err)
	require.Equal(t, int64(0), size)

	for _, s := range writeSpans {
		require.NoError(t, f.Write(buf[s.off:s.off+s.n], int64(s.off)))
	}
	for _, i := range []int{2, 4, 0, 3, 1} {
		s := readSpans[i]
		require.NoError(t, f.Read(int64(s.off), got[s.off:s.off+s.n]))
	}
	require.Equal(t, buf, got)

	buf = randomBytes(5, 9000)
	for _, i := range []int{2, 3, 0, 4, 1} {
		s := writeSpans[i]
		require.NoError(t, f.Write(buf[s.off:s.off+s.n], int64(s.off)))
	}
	for _, i := range []int{3, 2, 0, 4, 1} {
		s := readSpans[i]
		require.NoError(t, f.Read(int64(s.off), got[s.off:s.off+s.n]))
	}
	require.Equal(t, buf, got)

	require.NoError(t, f.Close())
	require.NoError(t, fsys.RemoveFile(path))
}

func testRemoveFile(t *testing.T, fsys vfs.VFS, path string) {
	f, size, err := fsys.OpenForRandomAccess(path, true, true)
	require.NoError(t, err)
	require.Equal(t, int64(0), size)
	require.NoError(t, f.Close())

	require.NoError(t, fsys.RemoveFile(path))

	_, _, err = fsys.OpenForRandomAccess(path, false, false)
	require.ErrorIs(t, err, vfs.ErrPathNotFound)
}

func testRemoveOpenFile(t *testing.T, fsys vfs.VFS, path string) {
	f, _, err := fsys.OpenForBlockAccess(path, BlockShift, true, true)
	require.NoError(t, err)

	require.ErrorIs(t, fsys.RemoveFile(path), vfs.ErrFileBusy)

	require.NoError(t, f.Close())
	require.NoError(t, fsys.RemoveFile(path))
}

func testRemoveMissingFile(t *testing.T, fsys vfs.VFS, path string) {
	require.ErrorIs(t, fsys.RemoveFile(path), vfs.ErrPathNotFound)
}

func testLockConflict(t *testing.T, fsys vfs.VFS, path string) {
	first, _, err := fsys.OpenForBlockAccess(path, BlockShift, true, true)
	require.NoError(t, err)
	require.NoError(t, first.Lock())

	second, _, err := fsys.OpenForBlockAccess(path, BlockShift, false, false)
	require.NoError(t, err)
	require.ErrorIs(t, second.Lock(), vfs.ErrLocked)
	require.NoError(t, second.Close())

	require.NoError(t, first.Close())

	third, _, err := fsys.OpenForBlockAccess(path, BlockShift, false, false)
	require.NoError(t, err)
	require.NoError(t, third.Lock())
	require.NoError(t, third.Close())
}

func testCloseTwice(t *testing.T, fsys vfs.VFS, path string) {
	f, _, err := fsys.OpenForBlockAccess(path, BlockShift, true, false)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.ErrorIs(t, f.Close(), vfs.ErrClosed)
	require.ErrorIs(t, f.Write(make([]byte, blockSize), 0), vfs.ErrClosed)
	require.ErrorIs(t, f.Read(0, make([]byte, blockSize)), vfs.ErrClosed)
	require.ErrorIs(t, f.Sync(), vfs.ErrClosed)
}
