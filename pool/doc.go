// Package pool implements a block-pool allocator over a single contiguous
// arena: variable-sized aligned blocks carved out of one byte region, with
// freed blocks returned to a coalesced, size-indexed free list.
//
// # Overview
//
// A Pool owns three things: the arena (one byte region, fixed or growable),
// the free-region index (address-ordered map for coalescing plus size-class
// bins for best-fit search), and the per-block headers written inline ahead
// of every payload. A raw payload slice is all a caller ever holds; the
// header behind it is enough to recover the owning region on release.
//
// # Allocation
//
//   - The request is aligned up and extended by one header stride.
//   - The index returns the smallest sufficient free region in the request's
//     size class, or else the first region of a larger class; when nothing
//     fits the arena grows by the used size plus the request's footprint
//     plus a configured increment and the search runs once more.
//   - Oversized regions are split; a remainder below two alignment units is
//     absorbed into the block.
//
// # Release
//
// The header's token word is checked before anything else is believed. A
// valid block has its token cleared and its full footprint handed back to
// the index, which coalesces it with any adjacent free neighbors. A block
// whose token does not match is reported and leaked rather than risking the
// index; a double free reads the cleared token and lands in the same path.
//
// # Concurrency
//
// One top-level lock serializes every public operation. The lock backs off
// under contention and keeps contention counters. An atomic in-engine flag
// lets the process-wide interceptor (package mem) route its own reentrant
// traffic to the system allocator instead of back into the pool.
//
// # Usage
//
//	p, err := pool.New(pool.WithCapacity(64 << 20))
//	if err != nil {
//		return err
//	}
//	defer p.Close()
//
//	buf, err := p.Alloc(1024)
//	if err != nil {
//		return err
//	}
//	// ... use buf ...
//	if err := p.Free(buf); err != nil {
//		return err
//	}
//
// Pools are safe for concurrent use. For the process-wide installation that
// replaces the standard entry points, see package mem.
package pool
