package format

// Alignment utilities. Page sizes are powers of two, so rounding uses masks.

// PageSize returns the page size for a page shift.
func PageSize(shift uint) int {
	return 1 << shift
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// IsPageAligned reports whether n is a multiple of the page size.
func IsPageAligned(n int64, shift uint) bool {
	return n&(int64(1)<<shift-1) == 0
}

// ValidPageShift reports whether shift is within [MinPageShift, MaxPageShift].
func ValidPageShift(shift uint) bool {
	return shift >= MinPageShift && shift <= MaxPageShift
}
