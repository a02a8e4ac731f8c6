package arena

import "errors"

var (
	// ErrFixedCapacity indicates a grow request against a static arena.
	ErrFixedCapacity = errors.New("arena: fixed capacity, cannot grow")

	// ErrReserveExhausted indicates the growable arena ran out of reserved
	// address space.
	ErrReserveExhausted = errors.New("arena: reservation exhausted")
)
