package sem

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryAcquire(t *testing.T) {
	s := New(2)

	assert.True(t, s.TryAcquire())
	assert.True(t, s.TryAcquire())
	assert.False(t, s.TryAcquire(), "no permits left")

	s.Release()
	assert.True(t, s.TryAcquire())
}

func TestAcquireBlocksUntilRelease(t *testing.T) {
	s := New(1)
	s.Acquire()

	acquired := make(chan struct{})
	go func() {
		s.Acquire()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("acquire succeeded with no permits")
	case <-time.After(20 * time.Millisecond):
	}

	s.Release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("release did not wake the waiter")
	}
}

func TestSemaphoreBoundsConcurrency(t *testing.T) {
	const permits = 4
	s := New(permits)

	var mu sync.Mutex
	inFlight, peak := 0, 0

	var wg sync.WaitGroup
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Acquire()
			defer s.Release()

			mu.Lock()
			inFlight++
			if inFlight > peak {
				peak = inFlight
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inFlight--
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.LessOrEqual(t, peak, permits)
	assert.Zero(t, inFlight)
}
