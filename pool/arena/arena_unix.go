//go:build linux || darwin

package arena

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Reserved is a growable arena backed by an anonymous private mapping. The
// whole reservation is mapped once with MAP_NORESERVE, so untouched pages
// cost nothing; Grow only moves the logical capacity boundary. Because the
// mapping never moves, growth is safe while payload slices are outstanding.
type Reserved struct {
	mem []byte
	cap int64
}

// NewReserved maps reserve bytes of virtual space and exposes the first
// initial bytes. reserve is raised to initial when smaller.
func NewReserved(initial, reserve int64) (*Reserved, error) {
	if reserve < initial {
		reserve = initial
	}
	mem, err := unix.Mmap(-1, 0, int(reserve),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON|unix.MAP_NORESERVE)
	if err != nil {
		return nil, errors.Wrapf(err, "arena: reserving %d bytes", reserve)
	}
	return &Reserved{mem: mem, cap: initial}, nil
}

func (a *Reserved) Capacity() int64 { return a.cap }

func (a *Reserved) Bytes() []byte { return a.mem[:a.cap] }

func (a *Reserved) At(off, n int64) []byte { return a.mem[off : off+n : off+n] }

// Grow raises the logical capacity inside the reservation. It never
// relocates the mapping; when the reservation cannot hold extra more bytes
// the capacity is left unchanged.
func (a *Reserved) Grow(extra int64) (int64, error) {
	if a.cap+extra > int64(len(a.mem)) {
		return a.cap, ErrReserveExhausted
	}
	a.cap += extra
	return a.cap, nil
}

// Close unmaps the reservation. Payload slices handed out earlier become
// invalid; the pool only closes after its last consumer is done.
func (a *Reserved) Close() error {
	if a.mem == nil {
		return nil
	}
	err := unix.Munmap(a.mem)
	a.mem = nil
	return err
}
