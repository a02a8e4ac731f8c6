// Package arena owns the contiguous byte region the pool carves blocks out
// of. Consumers address bytes by offset only; the base pointer never leaks
// past the block engine.
//
// Two variants exist. Static wraps a fixed-capacity slice and refuses to
// grow. Reserved maps a large virtual range up front and grows by raising
// its logical capacity inside the reservation, so growth never relocates the
// backing storage and outstanding payload slices stay valid.
package arena

// Arena is a contiguous byte region of fixed or growable capacity.
type Arena interface {
	// Capacity returns the current logical size in bytes.
	Capacity() int64

	// Bytes returns the whole region [0, Capacity).
	Bytes() []byte

	// At borrows the slice [off, off+n). The caller must keep off+n within
	// Capacity and must not alias writes to the same bytes.
	At(off, n int64) []byte

	// Grow raises the capacity by at least extra bytes and returns the new
	// capacity. A fixed arena refuses with ErrFixedCapacity and leaves the
	// capacity unchanged.
	Grow(extra int64) (int64, error)

	// Close releases the backing storage. The arena is unusable afterwards.
	Close() error
}

// Static is a fixed-capacity arena backed by an ordinary byte slice. It is
// the no-surprises variant: no mapping, no growth, destruction is a no-op.
type Static struct {
	buf []byte
}

// NewStatic returns a fixed arena of exactly size bytes. The base is
// page-aligned: block alignment inside the arena is offset-relative, so the
// base must carry at least the strictest block alignment itself.
func NewStatic(size int64) *Static {
	return &Static{buf: alignedSlice(size)}
}

func (a *Static) Capacity() int64 { return int64(len(a.buf)) }

func (a *Static) Bytes() []byte { return a.buf }

func (a *Static) At(off, n int64) []byte { return a.buf[off : off+n : off+n] }

// Grow always refuses: the static variant cannot change capacity.
func (a *Static) Grow(extra int64) (int64, error) {
	return int64(len(a.buf)), ErrFixedCapacity
}

func (a *Static) Close() error { return nil }
