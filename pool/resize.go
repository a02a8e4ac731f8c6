package pool

import (
	"github.com/joshuapare/poolkit/internal/format"
	"github.com/joshuapare/poolkit/pool/index"
)

// Resize changes the usable size of a block.
//
// A request that fits the block's current payload extent is served in place
// and returns the same pointer; callers may rely on same-pointer shrink. A
// shrink releases the no-longer-needed tail back to the index, so the bytes
// are reusable immediately. A growing request allocates a new block, copies
// the old payload, and releases the old block.
//
// Resize(nil, n) behaves like Alloc(n); Resize(b, 0) behaves like Free(b).
func (p *Pool) Resize(b []byte, n int64) ([]byte, error) {
	if b == nil {
		return p.Alloc(n)
	}
	if n < 0 {
		return nil, ErrBadSize
	}
	if n == 0 {
		return nil, p.Free(b)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inEngine.Store(true)
	defer p.inEngine.Store(false)
	if p.closed {
		return nil, ErrClosed
	}
	p.stats.ResizeCalls++

	payloadOff, ok := p.payloadOffset(b)
	if !ok {
		return nil, ErrForeignPtr
	}
	hdr, err := p.readHeader(payloadOff)
	if err != nil {
		return nil, err
	}

	a := p.cfg.Alignment
	newPayload := format.AlignUp(n, a)
	if newPayload <= hdr.Size {
		// In place. The tail past the new extent is an alignment multiple;
		// hand it back so it can coalesce and be reused.
		if tail := hdr.Size - newPayload; tail > 0 {
			format.PutSize(p.ar.Bytes(), payloadOff, newPayload)
			p.idx.Insert(index.Region{Off: payloadOff + newPayload, Size: tail})
			p.freeSize += tail
			p.stats.BytesFreed += tail
			p.stats.Shrinks++
			if p.census[hdr.Size]--; p.census[hdr.Size] == 0 {
				delete(p.census, hdr.Size)
			}
			p.census[newPayload]++
		}
		return b[:n], nil
	}

	// Grow: new block, copy, release old.
	nb, err := p.alloc(n)
	if err != nil {
		return nil, err
	}
	copy(nb[:n], p.ar.At(payloadOff, hdr.Size))
	if err := p.free(b); err != nil {
		return nil, err
	}
	return nb, nil
}
