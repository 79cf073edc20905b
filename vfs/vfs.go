package vfs

// BlockAccessFile is a file read and written in whole blocks.
type BlockAccessFile interface {
	// Read fills p from the file starting at offset. offset and len(p) must
	// be block aligned, and the range must lie within the file.
	Read(offset int64, p []byte) error

	// Write stores p at offset, extending the file if needed. offset and
	// len(p) must be block aligned.
	Write(p []byte, offset int64) error

	// Sync flushes written data to durable storage.
	Sync() error

	// Lock takes an advisory exclusive lock on the file, failing if another
	// handle holds it. The lock is released by Close.
	Lock() error

	// Close releases the handle. It must be called exactly once; later calls
	// return ErrClosed.
	Close() error
}

// RandomAccessFile is a file read and written at arbitrary byte offsets.
type RandomAccessFile interface {
	Read(offset int64, p []byte) error
	Write(p []byte, offset int64) error
	Sync() error
	Lock() error
	Close() error
}

// VFS opens and removes files.
type VFS interface {
	// OpenForBlockAccess opens path for block I/O with blocks of
	// 1 << blockShift bytes. It returns the handle and the current file size.
	OpenForBlockAccess(path string, blockShift uint, createIfMissing, errorIfExists bool) (BlockAccessFile, int64, error)

	// OpenForRandomAccess opens path for byte-granular I/O. It returns the
	// handle and the current file size.
	OpenForRandomAccess(path string, createIfMissing, errorIfExists bool) (RandomAccessFile, int64, error)

	// RemoveFile deletes path. It fails if the file does not exist or is
	// held open through this VFS.
	RemoveFile(path string) error
}

// MinBlockShift and MaxBlockShift bound the block sizes a VFS accepts.
const (
	MinBlockShift = 9
	MaxBlockShift = 30
)
