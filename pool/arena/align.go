package arena

import "unsafe"

// baseAlign is the alignment of every arena base. One page covers any block
// alignment a pool can be configured with.
const baseAlign = 4096

// alignedSlice returns a zeroed slice of exactly size bytes whose data
// pointer sits on a baseAlign boundary. The runtime only guarantees small
// alignments for byte slices, so the slice is over-allocated and trimmed.
func alignedSlice(size int64) []byte {
	raw := make([]byte, size+baseAlign)
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	pad := int64((baseAlign - addr%baseAlign) % baseAlign)
	return raw[pad : pad+size : pad+size]
}
