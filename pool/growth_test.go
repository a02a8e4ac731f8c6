package pool

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/poolkit/internal/format"
)

func TestStaticPoolExhausts(t *testing.T) {
	p, err := New(WithStatic(), WithCapacity(1<<16))
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Alloc(1 << 17)
	assert.ErrorIs(t, err, ErrNoSpace)
	assert.Equal(t, int64(1), p.Stats().FailedAllocs)
	assert.Equal(t, int64(0), p.Stats().GrowCalls)

	// The pool still works after a refused request.
	b, err := p.Alloc(1024)
	require.NoError(t, err)
	require.NoError(t, p.Free(b))
}

func TestGrowablePoolGrows(t *testing.T) {
	p, err := New(
		WithCapacity(1<<16),
		WithReserve(1<<22),
		WithGrowIncrement(1<<16),
	)
	require.NoError(t, err)
	defer p.Close()

	before := p.Capacity()
	b, err := p.Alloc(1 << 17)
	require.NoError(t, err)
	require.Len(t, b, 1<<17)

	stats := p.Stats()
	assert.Equal(t, int64(1), stats.GrowCalls)
	assert.Equal(t, int64(1), stats.SlowPath)
	assert.Greater(t, p.Capacity(), before)
	require.NoError(t, p.Validate())

	// Growth extends the trailing free region; content written before a
	// later grow must survive, since the backing never relocates.
	for i := range b {
		b[i] = byte(i)
	}
	c, err := p.Alloc(1 << 18)
	require.NoError(t, err)
	for i := 0; i < len(b); i += 4097 {
		require.Equal(t, byte(i), b[i])
	}

	require.NoError(t, p.Free(b))
	require.NoError(t, p.Free(c))
	require.NoError(t, p.Validate())
	assert.True(t, p.IsEmpty())
	assert.Equal(t, 1, p.NumFreeRegions(), "grown tail coalesced with the initial region")
}

func TestGrowablePoolExhaustsReserve(t *testing.T) {
	p, err := New(
		WithCapacity(1<<16),
		WithReserve(1<<17),
		WithGrowIncrement(0),
	)
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Alloc(1 << 20)
	assert.ErrorIs(t, err, ErrNoSpace)
	require.NoError(t, p.Validate())
}

// A grow increment that is not an alignment multiple must not leak
// unaligned region sizes into the index: growth is rounded up, so region
// sizes, absorbed slack, and the capacity itself stay alignment multiples.
func TestGrowIncrementUnaligned(t *testing.T) {
	p, err := New(
		WithCapacity(1<<16),
		WithReserve(1<<20),
		WithGrowIncrement(100),
	)
	require.NoError(t, err)
	defer p.Close()

	a := p.cfg.Alignment
	var live [][]byte
	for _, n := range []int64{1 << 16, 100, 1 << 15, 7} {
		b, err := p.Alloc(n)
		require.NoError(t, err)

		addr := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
		assert.Zero(t, addr%uintptr(a), "size %d", n)

		got, err := p.SizeOf(b)
		require.NoError(t, err)
		assert.LessOrEqual(t, got, format.AlignUp(n, a)+a, "size %d", n)

		live = append(live, b)
	}

	assert.NotZero(t, p.Stats().GrowCalls)
	assert.Zero(t, p.Capacity()%a, "granted capacity stays aligned")
	assert.Zero(t, p.MaxFreeRegion()%a)
	require.NoError(t, p.Validate())

	for _, b := range live {
		require.NoError(t, p.Free(b))
	}
	require.NoError(t, p.Validate())
	assert.True(t, p.IsEmpty())
}

func TestGrowAccounting(t *testing.T) {
	p, err := New(
		WithCapacity(1<<16),
		WithReserve(1<<22),
		WithGrowIncrement(1<<16),
	)
	require.NoError(t, err)
	defer p.Close()

	b, err := p.Alloc(1 << 18)
	require.NoError(t, err)

	stats := p.Stats()
	assert.Equal(t, stats.GrowBytes, p.Capacity()-(1<<16))
	require.NoError(t, p.Validate())
	require.NoError(t, p.Free(b))
}
