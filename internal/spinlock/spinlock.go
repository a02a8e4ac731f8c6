// Package spinlock provides the pool's top-level lock: a test-and-set lock
// that keeps contention statistics and backs off in stages when contended.
// An uncontended acquire is a single compare-and-swap; a contended one
// yields the scheduler a few times, then sleeps on a bounded exponential
// back-off capped at a small ceiling. There is no cancellation.
package spinlock

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const spinYields = 8

// Back-off window for the sleeping phase. The ceiling stays small so a
// blocked allocation never sleeps past a fraction of a millisecond.
const (
	waitInitial = 5 * time.Microsecond
	waitCeiling = 200 * time.Microsecond
)

// Stats is a snapshot of the lock's contention counters.
type Stats struct {
	Acquisitions uint64 // total Lock calls
	Contended    uint64 // Lock calls that did not win the fast path
	Yields       uint64 // scheduler yields spent waiting
	Waits        uint64 // timed sleeps spent waiting
}

// Lock is a mutual-exclusion lock. The zero value is unlocked and ready to
// use. It implements sync.Locker.
type Lock struct {
	state atomic.Int32

	acquisitions atomic.Uint64
	contended    atomic.Uint64
	yields       atomic.Uint64
	waits        atomic.Uint64
}

// Lock acquires the lock, blocking until it is available.
func (l *Lock) Lock() {
	l.acquisitions.Add(1)
	if l.state.CompareAndSwap(0, 1) {
		return
	}
	l.contended.Add(1)

	for range spinYields {
		runtime.Gosched()
		l.yields.Add(1)
		if l.state.CompareAndSwap(0, 1) {
			return
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = waitInitial
	bo.MaxInterval = waitCeiling
	bo.MaxElapsedTime = 0 // wait forever
	bo.Reset()
	for {
		time.Sleep(bo.NextBackOff())
		l.waits.Add(1)
		if l.state.CompareAndSwap(0, 1) {
			return
		}
	}
}

// TryLock acquires the lock without blocking, reporting whether it did.
func (l *Lock) TryLock() bool {
	if l.state.CompareAndSwap(0, 1) {
		l.acquisitions.Add(1)
		return true
	}
	return false
}

// Unlock releases the lock. It must only be called by the holder.
func (l *Lock) Unlock() {
	l.state.Store(0)
}

// Stats returns the contention counters.
func (l *Lock) Stats() Stats {
	return Stats{
		Acquisitions: l.acquisitions.Load(),
		Contended:    l.contended.Load(),
		Yields:       l.yields.Load(),
		Waits:        l.waits.Load(),
	}
}
