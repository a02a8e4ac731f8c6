package pool

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/joshuapare/poolkit/internal/format"
	"github.com/joshuapare/poolkit/internal/spinlock"
	"github.com/joshuapare/poolkit/pool/arena"
	"github.com/joshuapare/poolkit/pool/index"
)

// Pool is the block engine: allocate, release, resize, and size-query over
// one arena and one free-region index. All public operations serialize on a
// single top-level lock.
type Pool struct {
	mu  spinlock.Lock
	ar  arena.Arena
	idx *index.Index
	cfg Config
	log *logrus.Logger

	// inEngine is raised for the duration of every engine operation. The
	// interceptor reads it outside the lock; a stale read in either
	// direction only changes which allocator serves the request, never
	// correctness.
	inEngine atomic.Bool

	freeSize int64
	closed   bool

	// census counts live blocks by recorded payload size. It backs the
	// conservation check and the BlockCensus diagnostic.
	census map[int64]int64

	stats Stats
}

// New creates a pool. The arena starts as a single maximal free region.
func New(opts ...Option) (*Pool, error) {
	cfg := DefaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Capacity = format.AlignUp(cfg.Capacity, cfg.Alignment)

	var ar arena.Arena
	if cfg.Static {
		ar = arena.NewStatic(cfg.Capacity)
	} else {
		var err error
		ar, err = arena.NewReserved(cfg.Capacity, cfg.Reserve)
		if err != nil {
			return nil, err
		}
	}

	p := &Pool{
		ar:     ar,
		idx:    index.New(cfg.Alignment, cfg.BinCount),
		cfg:    cfg,
		log:    cfg.Logger,
		census: make(map[int64]int64),
	}
	p.idx.Insert(index.Region{Off: 0, Size: cfg.Capacity})
	p.freeSize = cfg.Capacity
	return p, nil
}

// Alloc returns a writable slice of n bytes aligned to the pool alignment,
// or ErrNoSpace when the arena is exhausted. Alloc(0) returns nil.
func (p *Pool) Alloc(n int64) ([]byte, error) {
	if n < 0 {
		return nil, ErrBadSize
	}
	if n == 0 {
		return nil, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inEngine.Store(true)
	defer p.inEngine.Store(false)
	if p.closed {
		return nil, ErrClosed
	}
	return p.alloc(n)
}

// alloc is the engine allocation path. Lock held.
func (p *Pool) alloc(n int64) ([]byte, error) {
	p.stats.AllocCalls++

	a := p.cfg.Alignment
	stride := format.HeaderStride(a)
	payload := format.AlignUp(n, a)
	footprint := payload + stride

	r, ok := p.idx.RemoveFit(footprint)
	if !ok {
		if err := p.grow(footprint); err != nil {
			p.stats.FailedAllocs++
			return nil, err
		}
		r, ok = p.idx.RemoveFit(footprint)
		if !ok {
			p.stats.FailedAllocs++
			return nil, ErrNoSpace
		}
		p.stats.SlowPath++
	} else {
		p.stats.FastPath++
	}

	// Split when the remainder is worth indexing; absorb thin slack.
	used := r.Size
	if r.Size-footprint >= 2*a {
		p.idx.Insert(index.Region{Off: r.Off + footprint, Size: r.Size - footprint})
		p.stats.Splits++
		used = footprint
	}
	recorded := used - stride

	payloadOff := r.Off + stride
	format.PutHeader(p.ar.Bytes(), payloadOff, format.Header{
		Offset: r.Off,
		Size:   recorded,
		Token:  format.TokenID,
	})

	p.freeSize -= used
	p.stats.BytesAllocated += used
	p.census[recorded]++

	if logAlloc {
		p.log.WithFields(logrus.Fields{
			"need": n, "offset": r.Off, "footprint": used,
		}).Debug("pool: alloc")
	}

	buf := p.ar.At(payloadOff, recorded)
	return buf[:n], nil
}

// Free returns a block to the pool. A nil slice is a no-op; a pointer
// outside the arena yields ErrForeignPtr (the interceptor forwards those to
// the system allocator); a corrupted header is reported and leaked.
func (p *Pool) Free(b []byte) error {
	if b == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inEngine.Store(true)
	defer p.inEngine.Store(false)
	if p.closed {
		return ErrClosed
	}
	return p.free(b)
}

// free is the engine release path. Lock held.
func (p *Pool) free(b []byte) error {
	p.stats.FreeCalls++

	payloadOff, ok := p.payloadOffset(b)
	if !ok {
		p.stats.Foreign++
		return ErrForeignPtr
	}
	hdr, err := p.readHeader(payloadOff)
	if err != nil {
		return err
	}

	stride := format.HeaderStride(p.cfg.Alignment)
	format.ClearToken(p.ar.Bytes(), payloadOff)

	footprint := hdr.Size + stride
	p.idx.Insert(index.Region{Off: hdr.Offset, Size: footprint})
	p.freeSize += footprint
	p.stats.BytesFreed += footprint
	if p.census[hdr.Size]--; p.census[hdr.Size] == 0 {
		delete(p.census, hdr.Size)
	}

	if logAlloc {
		p.log.WithFields(logrus.Fields{
			"offset": hdr.Offset, "footprint": footprint,
		}).Debug("pool: free")
	}
	return nil
}

// readHeader validates and returns the header behind payloadOff. The range
// check has already passed, so reading the header words cannot fault; the
// token decides whether they are believed. Lock held.
func (p *Pool) readHeader(payloadOff int64) (format.Header, error) {
	data := p.ar.Bytes()
	if format.TokenAt(data, payloadOff) != format.TokenID {
		p.stats.Corrupted++
		p.log.WithField("offset", payloadOff).
			Warn("pool: block header token mismatch, leaking block")
		return format.Header{}, ErrBadHeader
	}
	hdr := format.ReadHeader(data, payloadOff)
	stride := format.HeaderStride(p.cfg.Alignment)
	if hdr.Offset != payloadOff-stride || hdr.Size <= 0 ||
		payloadOff+hdr.Size > p.ar.Capacity() {
		p.stats.Corrupted++
		p.log.WithField("offset", payloadOff).
			Warn("pool: block header fields out of range, leaking block")
		return format.Header{}, ErrBadHeader
	}
	return hdr, nil
}

// SizeOf returns the usable payload extent of a pool block. Foreign
// pointers yield ErrForeignPtr so the interceptor can forward the query.
func (p *Pool) SizeOf(b []byte) (int64, error) {
	if b == nil {
		return 0, ErrForeignPtr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inEngine.Store(true)
	defer p.inEngine.Store(false)
	if p.closed {
		return 0, ErrClosed
	}
	payloadOff, ok := p.payloadOffset(b)
	if !ok {
		return 0, ErrForeignPtr
	}
	hdr, err := p.readHeader(payloadOff)
	if err != nil {
		return 0, err
	}
	return hdr.Size, nil
}

// Calloc allocates count*size bytes of zeroed memory. The multiplication is
// overflow-checked; arena bytes are recycled, so the payload is cleared
// explicitly.
func (p *Pool) Calloc(count, size int64) ([]byte, error) {
	if count < 0 || size < 0 {
		return nil, ErrBadSize
	}
	if count == 0 || size == 0 {
		return nil, nil
	}
	if count > (1<<62)/size {
		return nil, ErrBadSize
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inEngine.Store(true)
	defer p.inEngine.Store(false)
	if p.closed {
		return nil, ErrClosed
	}
	b, err := p.alloc(count * size)
	if err != nil {
		return nil, err
	}
	clear(b[:cap(b)])
	return b, nil
}

// grow asks the arena for the used size plus the shortfall plus the
// configured increment, and indexes whatever was granted. The new region
// coalesces with a trailing free region automatically. Lock held.
func (p *Pool) grow(need int64) error {
	oldCap := p.ar.Capacity()
	used := oldCap - p.freeSize
	// Region sizes must stay alignment multiples: absorbed slack is bounded
	// by one alignment unit only as long as every granted region is aligned.
	extra := format.AlignUp(used+need+p.cfg.GrowIncrement, p.cfg.Alignment)

	newCap, err := p.ar.Grow(extra)
	if err != nil {
		p.log.WithFields(logrus.Fields{
			"need": need, "capacity": oldCap,
		}).Debug("pool: grow refused")
		return ErrNoSpace
	}
	granted := newCap - oldCap

	p.idx.Insert(index.Region{Off: oldCap, Size: granted})
	p.freeSize += granted
	p.stats.GrowCalls++
	p.stats.GrowBytes += granted

	p.log.WithFields(logrus.Fields{
		"granted": granted, "capacity": newCap,
	}).Info("pool: arena grown")
	return nil
}

// Close releases the arena. Outstanding payload slices become invalid.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.ar.Close()
}
