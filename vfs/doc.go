// Package vfs defines the file-access contract the storage engine runs on.
//
// # Overview
//
// Two kinds of files are distinguished:
//
//   - BlockAccessFile: reads and writes whole blocks. Offsets and lengths must
//     be multiples of the block size the file was opened with. Page I/O uses
//     this kind.
//   - RandomAccessFile: byte-granular reads and writes with no alignment
//     requirement. Logs and side files use this kind.
//
// A VFS opens both kinds and removes files. There is no process-wide default
// VFS; callers construct one and pass it to whatever needs file I/O:
//
//	fs := osfs.New()
//	f, size, err := fs.OpenForBlockAccess("data.pgkt", 12, true, false)
//
// Tests swap in memfs (in memory) or faultfs (error injection) without any
// global state.
//
// # Open flags
//
//	createIfMissing=false              fail with ErrPathNotFound if absent
//	createIfMissing=true               create if absent, open if present
//	createIfMissing=true, errorIfExists fail with ErrAlreadyExists if present
//
// # Errors
//
// Every operation reports failure through its error return; nothing panics on
// I/O failure. Errors wrap one of the sentinels in this package so callers can
// tell I/O failures (ErrIO) from usage errors (ErrMisaligned, ErrClosed) with
// errors.Is.
//
// # Thread Safety
//
// Files are not safe for concurrent use. A VFS value is safe for concurrent
// Open and RemoveFile calls.
package vfs
