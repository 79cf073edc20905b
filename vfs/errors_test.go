package vfs

import (
	"errors"
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapOSError(t *testing.T) {
	require.NoError(t, WrapOSError("open", "x", nil))

	err := WrapOSError("open", "x", fs.ErrNotExist)
	require.ErrorIs(t, err, ErrPathNotFound)
	require.ErrorIs(t, err, fs.ErrNotExist)

	err = WrapOSError("open", "x", &os.PathError{Op: "open", Path: "x", Err: fs.ErrExist})
	require.ErrorIs(t, err, ErrAlreadyExists)

	err = WrapOSError("write", "x", errors.New("disk on fire"))
	require.ErrorIs(t, err, ErrIO)
	require.NotErrorIs(t, err, ErrPathNotFound)
}

func TestCheckAligned(t *testing.T) {
	require.NoError(t, CheckAligned(0, 4096, 12))
	require.NoError(t, CheckAligned(8192, 8192, 12))
	require.ErrorIs(t, CheckAligned(1, 4096, 12), ErrMisaligned)
	require.ErrorIs(t, CheckAligned(4096, 100, 12), ErrMisaligned)
	require.ErrorIs(t, CheckAligned(-4096, 4096, 12), ErrMisaligned)
}

func TestCheckBlockShift(t *testing.T) {
	require.NoError(t, CheckBlockShift(12))
	require.ErrorIs(t, CheckBlockShift(3), ErrBadBlockShift)
	require.ErrorIs(t, CheckBlockShift(40), ErrBadBlockShift)
}
