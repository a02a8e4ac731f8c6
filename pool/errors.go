package pool

import "errors"

var (
	// ErrNoSpace indicates the request cannot be satisfied even after a
	// growth attempt, or growth is disabled.
	ErrNoSpace = errors.New("pool: no free region large enough")

	// ErrBadSize indicates a negative size or an overflowing count*size.
	ErrBadSize = errors.New("pool: invalid size")

	// ErrForeignPtr indicates the pointer does not lie within the arena.
	ErrForeignPtr = errors.New("pool: pointer not owned by pool")

	// ErrBadHeader indicates a pointer inside the arena whose header token
	// does not match; the block is reported and leaked, never reclaimed.
	ErrBadHeader = errors.New("pool: corrupted block header")

	// ErrClosed indicates an operation on a closed pool.
	ErrClosed = errors.New("pool: closed")
)
