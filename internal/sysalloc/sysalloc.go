// Package sysalloc is the system-allocator fallback the interceptor routes
// foreign traffic to. It stands in for the platform malloc family resolved
// through dynamic symbol lookup: the bindings are resolved exactly once on
// first use, and a failed resolution is fatal because the process cannot
// serve allocations without them. On this runtime the bindings land on the
// garbage-collected heap, so Free only keeps the books.
package sysalloc

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrUnresolved indicates the fallback entry points are not bound.
var ErrUnresolved = errors.New("sysalloc: system allocator not resolved")

var (
	mallocFn  func(int) []byte
	reallocFn func([]byte, int) []byte
	freeFn    func([]byte)
	sizeFn    func([]byte) int

	resolveOnce sync.Once
	resolved    atomic.Bool

	mallocs atomic.Uint64
	frees   atomic.Uint64
)

// Resolve binds the fallback entry points. Idempotent; the interceptor
// calls it from its own init path.
func Resolve() error {
	resolveOnce.Do(func() {
		mallocFn = func(n int) []byte { return make([]byte, n) }
		reallocFn = func(p []byte, n int) []byte {
			if n <= cap(p) {
				return p[:n]
			}
			q := make([]byte, n)
			copy(q, p)
			return q
		}
		freeFn = func([]byte) {}
		sizeFn = func(p []byte) int { return cap(p) }
		resolved.Store(true)
	})
	if !resolved.Load() {
		return ErrUnresolved
	}
	return nil
}

// ensure resolves the bindings on first use. Resolution failure leaves no
// allocator to fall back to, so it terminates the process.
func ensure() {
	if resolved.Load() {
		return
	}
	if err := Resolve(); err != nil {
		panic(err)
	}
}

// Malloc allocates n bytes from the system heap.
func Malloc(n int) []byte {
	ensure()
	mallocs.Add(1)
	return mallocFn(n)
}

// Realloc resizes p, reusing its storage when capacity allows.
func Realloc(p []byte, n int) []byte {
	ensure()
	return reallocFn(p, n)
}

// Free releases p back to the system heap.
func Free(p []byte) {
	ensure()
	frees.Add(1)
	freeFn(p)
}

// SizeOf returns the usable size of a system allocation, the analog of the
// platform's malloc size query.
func SizeOf(p []byte) int {
	ensure()
	return sizeFn(p)
}

// Counters returns the number of Malloc and Free calls served.
func Counters() (uint64, uint64) {
	return mallocs.Load(), frees.Load()
}

// ResetCounters zeros the call counters.
func ResetCounters() {
	mallocs.Store(0)
	frees.Store(0)
}
