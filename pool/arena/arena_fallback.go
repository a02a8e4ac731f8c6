//go:build !(linux || darwin)

package arena

// Reserved on platforms without mmap commits the whole reservation eagerly.
// The capacity boundary behaves exactly like the unix variant; only the
// memory cost of untouched pages differs.
type Reserved struct {
	mem []byte
	cap int64
}

// NewReserved allocates reserve bytes and exposes the first initial bytes.
// reserve is raised to initial when smaller.
func NewReserved(initial, reserve int64) (*Reserved, error) {
	if reserve < initial {
		reserve = initial
	}
	return &Reserved{mem: alignedSlice(reserve), cap: initial}, nil
}

func (a *Reserved) Capacity() int64 { return a.cap }

func (a *Reserved) Bytes() []byte { return a.mem[:a.cap] }

func (a *Reserved) At(off, n int64) []byte { return a.mem[off : off+n : off+n] }

// Grow raises the logical capacity inside the reservation.
func (a *Reserved) Grow(extra int64) (int64, error) {
	if a.cap+extra > int64(len(a.mem)) {
		return a.cap, ErrReserveExhausted
	}
	a.cap += extra
	return a.cap, nil
}

func (a *Reserved) Close() error {
	a.mem = nil
	return nil
}
