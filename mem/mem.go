// Package mem binds the standard allocation entry points to the process
// pool. Malloc, Free, Calloc, Realloc, and the size queries mirror the
// platform allocator's surface; the scalar and array object hooks (New,
// MakeSlice) route object construction through the same path.
//
// Every incoming pointer is classified: slices whose data pointer lies
// inside the arena and whose header carries the pool token belong to the
// engine; everything else is forwarded to the system allocator fallback.
// The range check always precedes the header read, so foreign pointers are
// never dereferenced at their would-be header. While the engine is inside
// an internal operation, entry points route straight to the fallback; that
// read is deliberately outside the lock, and a stale value in either
// direction only changes which allocator serves the request.
package mem

import (
	"sync"
	"sync/atomic"

	pkgerrors "github.com/pkg/errors"

	"github.com/joshuapare/poolkit/internal/sysalloc"
	"github.com/joshuapare/poolkit/pool"
)

var (
	installOnce sync.Once
	processPool atomic.Pointer[pool.Pool]
)

// Default returns the process pool, creating it with the stock
// configuration on first use. The system-allocator bindings are resolved on
// the same path; resolution failure is fatal, as the process cannot serve
// allocations without a fallback.
func Default() *pool.Pool {
	if p := processPool.Load(); p != nil {
		return p
	}
	installOnce.Do(func() {
		if err := sysalloc.Resolve(); err != nil {
			panic(err)
		}
		p, err := pool.New()
		if err != nil {
			panic(pkgerrors.Wrap(err, "mem: creating process pool"))
		}
		if !processPool.CompareAndSwap(nil, p) {
			// Install won the race; drop the extra pool.
			_ = p.Close()
		}
	})
	return processPool.Load()
}

// Install replaces the process pool, for configurations other than the
// stock one. Call before the first allocation; blocks handed out by the
// previous pool can no longer be reclaimed afterwards.
func Install(p *pool.Pool) {
	if err := sysalloc.Resolve(); err != nil {
		panic(err)
	}
	processPool.Store(p)
}

// Malloc returns n writable bytes, or nil when the pool is exhausted.
func Malloc(n int) []byte {
	if n <= 0 {
		return nil
	}
	noteAlloc(int64(n))
	p := Default()
	if p.Busy() {
		return sysalloc.Malloc(n)
	}
	b, err := p.Alloc(int64(n))
	if err != nil {
		return nil
	}
	return b
}

// Calloc returns count*size zero-filled bytes, or nil on exhaustion or
// overflow.
func Calloc(count, size int) []byte {
	if count <= 0 || size <= 0 {
		return nil
	}
	noteAlloc(int64(count) * int64(size))
	p := Default()
	if p.Busy() {
		// The fallback's fresh memory is already zeroed.
		return sysalloc.Malloc(count * size)
	}
	b, err := p.Calloc(int64(count), int64(size))
	if err != nil {
		return nil
	}
	return b
}

// Free releases b. nil is a no-op; pool blocks are reclaimed; foreign
// slices are forwarded to the system allocator; a pointer inside the arena
// with a corrupted header is diagnosed by the engine and ignored here,
// since its true origin is unknown.
func Free(b []byte) {
	if b == nil {
		return
	}
	noteFree(int64(len(b)))
	p := Default()
	if p.Busy() {
		sysalloc.Free(b)
		return
	}
	switch err := p.Free(b); {
	case err == nil:
	case pkgerrors.Is(err, pool.ErrForeignPtr):
		sysalloc.Free(b)
	default:
		// Corrupted header: not reclaimed, not forwarded.
	}
}

// Realloc resizes b to n bytes, preserving min(old, new) content. nil
// behaves like Malloc; foreign slices are resized by the system allocator.
func Realloc(b []byte, n int) []byte {
	if b == nil {
		return Malloc(n)
	}
	noteAlloc(int64(n))
	p := Default()
	if p.Busy() {
		return sysalloc.Realloc(b, n)
	}
	nb, err := p.Resize(b, int64(n))
	if err != nil {
		if pkgerrors.Is(err, pool.ErrForeignPtr) {
			return sysalloc.Realloc(b, n)
		}
		return nil
	}
	return nb
}

// SizeOf returns the allocated extent behind b: the block's payload extent
// for pool slices, the system allocator's answer for foreign ones.
func SizeOf(b []byte) int {
	if b == nil {
		return 0
	}
	p := Default()
	if p.Busy() {
		return sysalloc.SizeOf(b)
	}
	n, err := p.SizeOf(b)
	if err != nil {
		if pkgerrors.Is(err, pool.ErrForeignPtr) {
			return sysalloc.SizeOf(b)
		}
		return 0
	}
	return int(n)
}

// UsableSize is the malloc_usable_size analog; for this pool it coincides
// with SizeOf.
func UsableSize(b []byte) int { return SizeOf(b) }
