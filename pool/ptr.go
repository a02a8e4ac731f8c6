package pool

import (
	"unsafe"

	"github.com/joshuapare/poolkit/internal/format"
)

// payloadOffset recovers the arena offset behind a payload slice, or false
// when the slice does not point into the arena. This is the range half of
// classification and MUST pass before any header word is read: dereferencing
// the would-be header of a foreign pointer could fault, and a foreign buffer
// that happens to carry the token bytes must never be misread. Lock held.
func (p *Pool) payloadOffset(b []byte) (int64, bool) {
	if cap(b) == 0 {
		return 0, false
	}
	data := p.ar.Bytes()
	if len(data) == 0 {
		return 0, false
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(data)))
	ptr := uintptr(unsafe.Pointer(unsafe.SliceData(b)))

	stride := uintptr(format.HeaderStride(p.cfg.Alignment))
	if ptr < base+stride || ptr >= base+uintptr(len(data)) {
		return 0, false
	}
	return int64(ptr - base), true
}

// Owns reports whether b points into the arena. Advisory: the answer is
// already stale once the lock is dropped, so the engine paths classify
// internally instead of calling this.
func (p *Pool) Owns(b []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.payloadOffset(b)
	return ok
}

// Busy reports whether an engine operation is in progress. The interceptor
// reads this outside the lock; staleness in either direction is harmless.
func (p *Pool) Busy() bool {
	return p.inEngine.Load()
}
