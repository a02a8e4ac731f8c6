// Package sem provides a counting semaphore built on an atomic counter and a
// condition variable. Acquire has a lock-free fast path while permits are
// available and parks on the condition variable once they run out. There is
// no cancellation.
package sem

import (
	"sync"
	"sync/atomic"
)

// Sem is a counting semaphore. Create with New.
type Sem struct {
	avail atomic.Int64
	mu    sync.Mutex
	cond  *sync.Cond
}

// New returns a semaphore with n permits.
func New(n int64) *Sem {
	s := &Sem{}
	s.avail.Store(n)
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Acquire takes one permit, blocking until one is available.
func (s *Sem) Acquire() {
	for {
		cur := s.avail.Load()
		if cur > 0 {
			if s.avail.CompareAndSwap(cur, cur-1) {
				return
			}
			continue
		}
		s.mu.Lock()
		for s.avail.Load() == 0 {
			s.cond.Wait()
		}
		s.mu.Unlock()
	}
}

// TryAcquire takes one permit without blocking, reporting whether it did.
func (s *Sem) TryAcquire() bool {
	for {
		cur := s.avail.Load()
		if cur == 0 {
			return false
		}
		if s.avail.CompareAndSwap(cur, cur-1) {
			return true
		}
	}
}

// Release returns one permit and wakes a waiter.
func (s *Sem) Release() {
	s.avail.Add(1)
	s.mu.Lock()
	s.cond.Signal()
	s.mu.Unlock()
}
