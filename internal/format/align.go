package format

// Alignment utilities for the block pool. Payloads, headers, and block
// footprints must all land on multiples of the configured alignment.

// AlignUp returns n aligned up to the next multiple of a.
// a must be a power of two.
//
// Example:
//
//	AlignUp(1, 64)   = 64
//	AlignUp(64, 64)  = 64
//	AlignUp(65, 64)  = 128
func AlignUp(n, a int64) int64 {
	return (n + a - 1) &^ (a - 1)
}

// IsPowerOfTwo reports whether a is a positive power of two.
func IsPowerOfTwo(a int64) bool {
	return a > 0 && a&(a-1) == 0
}

// HeaderStride returns the bytes reserved ahead of the payload at alignment
// a: the header words padded to a whole alignment unit so the payload keeps
// the block's alignment.
func HeaderStride(a int64) int64 {
	return AlignUp(HeaderBytes, a)
}
