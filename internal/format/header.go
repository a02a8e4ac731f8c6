package format

// Header is the per-block metadata written inline ahead of every payload.
// The three words occupy the tail of one header stride, so for a payload at
// offset p the layout is:
//
//	p-24  offset   region start (block footprint begins here)
//	p-16  size     payload extent, always a multiple of the alignment
//	p-8   token    TokenID while the block is live
//	p     payload
//
// The offset word lets a release reconstruct the owning region without any
// address arithmetic relative to the arena base.
type Header struct {
	Offset int64
	Size   int64
	Token  uint64
}

// PutHeader writes h so that its three words end immediately before the
// payload at payloadOff.
func PutHeader(data []byte, payloadOff int64, h Header) {
	PutU64(data, payloadOff-OffsetWordBack, uint64(h.Offset))
	PutU64(data, payloadOff-SizeWordBack, uint64(h.Size))
	PutU64(data, payloadOff-TokenWordBack, h.Token)
}

// ReadHeader reads the header for the payload at payloadOff.
func ReadHeader(data []byte, payloadOff int64) Header {
	return Header{
		Offset: int64(ReadU64(data, payloadOff-OffsetWordBack)),
		Size:   int64(ReadU64(data, payloadOff-SizeWordBack)),
		Token:  ReadU64(data, payloadOff-TokenWordBack),
	}
}

// PutSize rewrites only the size word for the payload at payloadOff.
func PutSize(data []byte, payloadOff, size int64) {
	PutU64(data, payloadOff-SizeWordBack, uint64(size))
}

// TokenAt reads the token word for the payload at payloadOff.
func TokenAt(data []byte, payloadOff int64) uint64 {
	return ReadU64(data, payloadOff-TokenWordBack)
}

// ClearToken zeroes the token word so a released block no longer passes
// classification. A second release of the same payload then reads a dead
// token and is reported instead of corrupting the index.
func ClearToken(data []byte, payloadOff int64) {
	PutU64(data, payloadOff-TokenWordBack, 0)
}
