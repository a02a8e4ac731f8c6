package format

import "encoding/binary"

// Binary encoding utilities for little-endian integers.
//
// Header words are stored little-endian. encoding/binary is used directly;
// the compiler inlines and optimizes these calls, so unsafe variants buy
// nothing measurable.

// PutU64 writes a uint64 value to the buffer at the specified offset in
// little-endian format.
func PutU64(b []byte, off int64, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+8], v)
}

// ReadU64 reads a uint64 value from the buffer at the specified offset in
// little-endian format.
func ReadU64(b []byte, off int64) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+8])
}
