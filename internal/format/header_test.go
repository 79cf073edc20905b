package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeader_EncodeParse(t *testing.T) {
	buf := make([]byte, 4096)
	h := NewHeader(13)
	h.PageCount = 42
	h.FreeListHead = 17
	h.PrimarySeq = 9
	h.SecondarySeq = 8
	h.Encode(buf)

	got, err := ParseHeader(buf)
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.False(t, got.Clean())
	require.Equal(t, HeaderSignature, buf[:4])
}

func TestHeader_NewIsClean(t *testing.T) {
	h := NewHeader(DefaultPageShift)
	require.True(t, h.Clean())
	require.Equal(t, uint64(1), h.PageCount)
	require.Equal(t, InvalidPageID, h.FreeListHead)
}

func TestParseHeader_Errors(t *testing.T) {
	valid := func() []byte {
		b := make([]byte, 4096)
		h := NewHeader(12)
		h.Encode(b)
		return b
	}

	t.Run("truncated", func(t *testing.T) {
		_, err := ParseHeader(make([]byte, 10))
		require.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("signature", func(t *testing.T) {
		b := valid()
		b[0] = 'x'
		_, err := ParseHeader(b)
		require.ErrorIs(t, err, ErrSignatureMismatch)
	})

	t.Run("checksum", func(t *testing.T) {
		b := valid()
		PutU64(b, HeaderFreeListHeadOffset, 5)
		_, err := ParseHeader(b)
		require.ErrorIs(t, err, ErrBadChecksum)
	})

	t.Run("version", func(t *testing.T) {
		b := valid()
		PutU32(b, HeaderVersionOffset, 2)
		PutU32(b, HeaderChecksumOffset, HeaderChecksum(b))
		_, err := ParseHeader(b)
		require.ErrorIs(t, err, ErrUnsupported)
	})

	t.Run("page shift", func(t *testing.T) {
		b := valid()
		PutU32(b, HeaderPageShiftOffset, 40)
		PutU32(b, HeaderChecksumOffset, HeaderChecksum(b))
		_, err := ParseHeader(b)
		require.ErrorIs(t, err, ErrUnsupported)
	})
}

func TestAlignHelpers(t *testing.T) {
	require.True(t, IsPageAligned(8192, 12))
	require.False(t, IsPageAligned(8193, 12))
	require.True(t, IsPowerOfTwo(16))
	require.False(t, IsPowerOfTwo(24))
	require.False(t, IsPowerOfTwo(0))
	require.True(t, ValidPageShift(12))
	require.False(t, ValidPageShift(11))
	require.False(t, ValidPageShift(17))
	require.Equal(t, 4096, PageSize(12))
}
