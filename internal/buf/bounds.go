// Package buf contains checked arithmetic for turning on-disk 64-bit values
// into host-sized indexes.
package buf

import (
	"fmt"
	"math"
)

// ToInt narrows v to an int, returning ok = false when v does not fit. On a
// 32-bit host this rejects page ids and sizes written by a 64-bit host.
func ToInt(v uint64) (int, bool) {
	if v > math.MaxInt {
		return 0, false
	}
	return int(v), true
}

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// MulU64 multiplies a and b, returning ok = false on overflow.
func MulU64(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxUint64/b {
		return 0, false
	}
	return a * b, true
}

// FileSize returns pages << shift as an int64 byte count, or an error when
// the size cannot be represented.
func FileSize(pages uint64, shift uint) (int64, error) {
	size, ok := MulU64(pages, uint64(1)<<shift)
	if !ok || size > math.MaxInt64 {
		return 0, fmt.Errorf("overflow: pages=%d << shift=%d", pages, shift)
	}
	return int64(size), nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}
