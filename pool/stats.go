package pool

import (
	"github.com/joshuapare/poolkit/internal/format"
	"github.com/joshuapare/poolkit/internal/spinlock"
	"github.com/pkg/errors"
)

// Stats holds the pool's diagnostic counters. All values are cumulative
// since creation or the last ResetStats.
type Stats struct {
	AllocCalls   int64 // total Alloc/Calloc requests reaching the engine
	FreeCalls    int64 // total Free requests reaching the engine
	ResizeCalls  int64 // total Resize requests
	FailedAllocs int64 // requests that surfaced ErrNoSpace
	FastPath     int64 // allocations served without growing
	SlowPath     int64 // allocations that needed a grow first

	GrowCalls int64 // arena growth operations
	GrowBytes int64 // bytes added by growth

	Splits  int64 // free regions split on allocation
	Shrinks int64 // in-place shrinks that released a tail

	BytesAllocated int64 // footprint bytes handed out (headers included)
	BytesFreed     int64 // footprint bytes returned

	Corrupted int64 // releases rejected on a bad header token
	Foreign   int64 // releases rejected on the range check

	Lock spinlock.Stats // top-level lock contention counters
}

// Stats returns a snapshot of the counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	s.Lock = p.mu.Stats()
	return s
}

// ResetStats zeros the diagnostic counters. Free-size accounting and the
// census are state, not diagnostics, and are untouched.
func (p *Pool) ResetStats() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats = Stats{}
}

// Capacity returns the arena capacity in bytes.
func (p *Pool) Capacity() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ar.Capacity()
}

// FreeSize returns the bytes currently free, headers included.
func (p *Pool) FreeSize() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.freeSize
}

// UsedSize returns Capacity minus FreeSize.
func (p *Pool) UsedSize() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ar.Capacity() - p.freeSize
}

// IsFull reports whether no free byte remains.
func (p *Pool) IsFull() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.freeSize == 0
}

// IsEmpty reports whether every byte is free.
func (p *Pool) IsEmpty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.freeSize == p.ar.Capacity()
}

// NumFreeRegions returns the number of free regions in the index.
func (p *Pool) NumFreeRegions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idx.Len()
}

// MaxFreeRegion returns the size of the largest free region.
func (p *Pool) MaxFreeRegion() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idx.Largest()
}

// LiveBlocks returns the number of outstanding allocations.
func (p *Pool) LiveBlocks() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.liveBlocks()
}

func (p *Pool) liveBlocks() int64 {
	var n int64
	for _, c := range p.census {
		n += c
	}
	return n
}

// BlockCensus returns a copy of the live-block census: recorded payload
// size to number of live blocks of that size.
func (p *Pool) BlockCensus() map[int64]int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[int64]int64, len(p.census))
	for sz, c := range p.census {
		out[sz] = c
	}
	return out
}

// Fingerprint hashes the free-region layout. Equal layouts hash equal
// regardless of the operation history that produced them.
func (p *Pool) Fingerprint() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idx.Fingerprint()
}

// Validate checks the quiescent-state invariants: index structure and the
// conservation equation free + live footprints = capacity.
func (p *Pool) Validate() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.idx.Validate(); err != nil {
		return err
	}
	stride := format.HeaderStride(p.cfg.Alignment)
	live := int64(0)
	for sz, c := range p.census {
		live += (sz + stride) * c
	}
	if p.freeSize+live != p.ar.Capacity() {
		return errors.Errorf("pool: conservation violated: free %d + live %d != capacity %d",
			p.freeSize, live, p.ar.Capacity())
	}
	return nil
}
