package index

import "math/bits"

// Size classes are power-of-two bands anchored at the block alignment:
// bin 0 holds regions up to one anchor unit, and each later bin doubles the
// band. A 32-bin table anchored at 64 bytes reaches past 128 GiB, so the top
// bin only ever clamps degenerate configurations.

// sizeClass maps a region or request size to its bin.
func (ix *Index) sizeClass(n int64) int {
	if n <= ix.anchor {
		return 0
	}
	units := (n + ix.anchor - 1) / ix.anchor
	sc := bits.Len64(uint64(units)) - 1
	if sc >= len(ix.bins) {
		sc = len(ix.bins) - 1
	}
	return sc
}

// NumBins returns the number of size-class bins.
func (ix *Index) NumBins() int { return len(ix.bins) }
