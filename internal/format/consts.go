// Package format houses the low-level block layout shared by the arena, the
// free-region index, and the block engine: the inline header written ahead of
// every payload, the pool token, and the alignment rules. The goal is to keep
// byte-level layout in one place, allocation-free, and independent from the
// public API so higher-level packages can stay offset-based.
package format

const (
	// HeaderBytes is the size of the three header words (offset, size,
	// token) that precede every payload.
	HeaderBytes = 24

	// Back-offsets of the header words, measured backwards from the payload
	// pointer. The words sit at the tail of the header stride so the token
	// is always the quadword immediately before the payload.
	OffsetWordBack = 24
	SizeWordBack   = 16
	TokenWordBack  = 8

	// TokenID marks a header as pool-owned. The value is arbitrary but must
	// stay fixed for the life of the process; it only needs to be unlikely
	// to occur at aligned positions in foreign memory.
	TokenID uint64 = 0xFEEDB10CF7EEB10C

	// DefaultAlignment is the block alignment: payloads, headers, and block
	// footprints are all multiples of it. Cache-line sized.
	DefaultAlignment int64 = 64

	// DefaultBinCount is the number of size-class bins. Bin bands double at
	// each step, so 32 bins cover regions far beyond any realistic arena.
	DefaultBinCount = 32

	// DefaultCapacity is the initial arena capacity (1 GiB).
	DefaultCapacity int64 = 1 << 30

	// DefaultGrowIncrement is added on top of the shortfall whenever the
	// arena grows (50 MiB).
	DefaultGrowIncrement int64 = 50 << 20
)
