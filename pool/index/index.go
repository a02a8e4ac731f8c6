// Package index tracks the arena's free regions by both address and size.
//
// Two cooperating structures back it: an address-ordered map (offset to
// size) used for coalescing, and a size-class bin array used for best-fit
// search. Every region lives in both with identical (offset, size). An
// earlier design kept a size-ordered multimap whose entries cross-referenced
// iterators in the offset map; keeping those iterators valid across
// insert/erase is fragile, so the bins hold plain value pairs instead.
package index

import (
	"github.com/google/btree"
	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"

	"github.com/joshuapare/poolkit/internal/format"
)

// byOffDegree is the branching factor of the offset-ordered btree.
const byOffDegree = 16

// Region is a maximal span of free bytes within the arena.
type Region struct {
	Off  int64
	Size int64
}

// End returns the first offset past the region.
func (r Region) End() int64 { return r.Off + r.Size }

func lessByOff(a, b Region) bool { return a.Off < b.Off }

// Index is the free-region index. Not safe for concurrent use; the engine
// serializes access under its top-level lock.
type Index struct {
	byOff  *btree.BTreeG[Region]
	bins   [][]Region
	anchor int64
}

// New returns an empty index. anchor is the block alignment the size-class
// bands are anchored at; binCount is the number of bands.
func New(anchor int64, binCount int) *Index {
	return &Index{
		byOff:  btree.NewG(byOffDegree, lessByOff),
		bins:   make([][]Region, binCount),
		anchor: anchor,
	}
}

// Insert adds a free region, first absorbing any adjacent predecessor or
// successor so that no two free regions ever touch.
func (ix *Index) Insert(r Region) {
	var pred Region
	havePred := false
	ix.byOff.DescendLessOrEqual(Region{Off: r.Off - 1}, func(item Region) bool {
		pred, havePred = item, true
		return false
	})
	if havePred && pred.End() == r.Off {
		ix.remove(pred)
		r = Region{Off: pred.Off, Size: pred.Size + r.Size}
	}

	var succ Region
	haveSucc := false
	ix.byOff.AscendGreaterOrEqual(Region{Off: r.End()}, func(item Region) bool {
		succ, haveSucc = item, true
		return false
	})
	if haveSucc && succ.Off == r.End() {
		ix.remove(succ)
		r.Size += succ.Size
	}

	ix.byOff.ReplaceOrInsert(r)
	sc := ix.sizeClass(r.Size)
	ix.bins[sc] = append(ix.bins[sc], r)
}

// RemoveFit returns a region of size at least need, removed from both
// structures. Within the bin the request maps to, the smallest sufficient
// region wins; any region in a strictly larger bin fits outright, so the
// first one found there is taken.
func (ix *Index) RemoveFit(need int64) (Region, bool) {
	start := ix.sizeClass(need)

	best := -1
	for i, r := range ix.bins[start] {
		if r.Size < need {
			continue
		}
		if best < 0 || r.Size < ix.bins[start][best].Size {
			best = i
		}
	}
	if best >= 0 {
		r := ix.bins[start][best]
		ix.remove(r)
		return r, true
	}

	for sc := start + 1; sc < len(ix.bins); sc++ {
		if len(ix.bins[sc]) > 0 {
			r := ix.bins[sc][0]
			ix.remove(r)
			return r, true
		}
	}
	return Region{}, false
}

// remove deletes r from both structures. r must be present with exactly this
// (offset, size).
func (ix *Index) remove(r Region) {
	ix.byOff.Delete(Region{Off: r.Off})
	sc := ix.sizeClass(r.Size)
	bin := ix.bins[sc]
	for i := range bin {
		if bin[i].Off == r.Off {
			bin[i] = bin[len(bin)-1]
			ix.bins[sc] = bin[:len(bin)-1]
			return
		}
	}
}

// Len returns the number of free regions.
func (ix *Index) Len() int { return ix.byOff.Len() }

// Largest returns the size of the largest free region, or 0 when empty.
// Bands are disjoint, so the maximum lives in the highest populated bin.
func (ix *Index) Largest() int64 {
	for sc := len(ix.bins) - 1; sc >= 0; sc-- {
		var max int64
		for _, r := range ix.bins[sc] {
			if r.Size > max {
				max = r.Size
			}
		}
		if max > 0 {
			return max
		}
	}
	return 0
}

// Walk visits every free region in ascending offset order until fn returns
// false.
func (ix *Index) Walk(fn func(Region) bool) {
	ix.byOff.Ascend(fn)
}

// Validate checks the structural invariants: regions are disjoint and
// non-adjacent in address order, and the bins mirror the offset map exactly.
func (ix *Index) Validate() error {
	var prev Region
	havePrev := false
	var walkErr error
	binPop := 0
	for _, bin := range ix.bins {
		binPop += len(bin)
	}
	if binPop != ix.byOff.Len() {
		return errors.Errorf("index: %d bin entries for %d regions", binPop, ix.byOff.Len())
	}
	ix.byOff.Ascend(func(r Region) bool {
		if r.Size <= 0 {
			walkErr = errors.Errorf("index: empty region at %d", r.Off)
			return false
		}
		if havePrev && prev.End() >= r.Off {
			walkErr = errors.Errorf("index: regions (%d,%d) and (%d,%d) touch or overlap",
				prev.Off, prev.Size, r.Off, r.Size)
			return false
		}
		if !ix.inBin(r) {
			walkErr = errors.Errorf("index: region (%d,%d) missing from bin %d",
				r.Off, r.Size, ix.sizeClass(r.Size))
			return false
		}
		prev, havePrev = r, true
		return true
	})
	return walkErr
}

func (ix *Index) inBin(r Region) bool {
	for _, b := range ix.bins[ix.sizeClass(r.Size)] {
		if b == r {
			return true
		}
	}
	return false
}

// Fingerprint hashes the ordered region list. Two indexes with the same free
// layout produce the same fingerprint regardless of the history that built
// them, which is what the quiescent-state tests compare.
func (ix *Index) Fingerprint() uint64 {
	h := xxh3.New()
	var word [8]byte
	ix.byOff.Ascend(func(r Region) bool {
		format.PutU64(word[:], 0, uint64(r.Off))
		_, _ = h.Write(word[:])
		format.PutU64(word[:], 0, uint64(r.Size))
		_, _ = h.Write(word[:])
		return true
	})
	return h.Sum64()
}
