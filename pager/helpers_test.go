package pager

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/pagekit/internal/format"
	"github.com/joshuapare/pagekit/vfs"
	"github.com/joshuapare/pagekit/vfs/memfs"
)

const testPath = "pages.db"

func createMem(t *testing.T, opts *Options) (*Pager, *memfs.FS) {
	t.Helper()
	fsys := memfs.New()
	p, err := Create(fsys, testPath, opts)
	require.NoError(t, err)
	return p, fsys
}

// fillPage returns a page whose bytes identify id.
func fillPage(size int, id format.PageID) []byte {
	b := make([]byte, size)
	for i := range b {
		b[i] = byte(uint64(id)*31 + uint64(i))
	}
	return b
}

func allocN(t *testing.T, p *Pager, n int) []format.PageID {
	t.Helper()
	ids := make([]format.PageID, 0, n)
	for range n {
		id, err := p.Alloc()
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

// rewriteHeader edits the header of a closed file in place.
func rewriteHeader(t *testing.T, fsys *memfs.FS, path string, fn func(*format.Header)) {
	t.Helper()
	data := fsys.Bytes(path)
	hdr, err := format.ParseHeader(data)
	require.NoError(t, err)
	fn(&hdr)
	hdr.Encode(data)
	fsys.SetBytes(path, data)
}

// rewritePage edits page id of a closed file in place.
func rewritePage(t *testing.T, fsys *memfs.FS, path string, id format.PageID, fn func(format.ListPage)) {
	t.Helper()
	data := fsys.Bytes(path)
	hdr, err := format.ParseHeader(data)
	require.NoError(t, err)
	size := format.PageSize(uint(hdr.PageShift))
	off := int(id) * size
	require.LessOrEqual(t, off+size, len(data))
	fn(format.ListPage(data[off : off+size]))
	fsys.SetBytes(path, data)
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var out bytes.Buffer
	return slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug})), &out
}

// opLog records the file operations a pager performs.
type opLog struct {
	ops     []string
	headers []format.Header
}

func (l *opLog) reset() {
	l.ops = nil
	l.headers = nil
}

// recordingFS wraps every block file so its writes and syncs are logged.
type recordingFS struct {
	vfs.VFS
	log *opLog
}

func (r recordingFS) OpenForBlockAccess(path string, shift uint, create, excl bool) (vfs.BlockAccessFile, int64, error) {
	f, size, err := r.VFS.OpenForBlockAccess(path, shift, create, excl)
	if err != nil {
		return nil, 0, err
	}
	return &recordingFile{BlockAccessFile: f, log: r.log, shift: shift}, size, nil
}

type recordingFile struct {
	vfs.BlockAccessFile
	log   *opLog
	shift uint
}

func (f *recordingFile) Write(p []byte, off int64) error {
	if off == 0 {
		hdr, err := format.ParseHeader(p)
		if err != nil {
			return err
		}
		f.log.headers = append(f.log.headers, hdr)
		f.log.ops = append(f.log.ops, "header")
	} else {
		f.log.ops = append(f.log.ops, fmt.Sprintf("write %d+%d", off>>f.shift, len(p)>>f.shift))
	}
	return f.BlockAccessFile.Write(p, off)
}

func (f *recordingFile) Sync() error {
	f.log.ops = append(f.log.ops, "sync")
	return f.BlockAccessFile.Sync()
}
