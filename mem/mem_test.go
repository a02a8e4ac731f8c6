package mem

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/poolkit/internal/sysalloc"
	"github.com/joshuapare/poolkit/pool"
)

func TestMain(m *testing.M) {
	// A small fixed pool keeps the tests fast and makes exhaustion
	// reachable.
	p, err := pool.New(pool.WithCapacity(8<<20), pool.WithStatic())
	if err != nil {
		panic(err)
	}
	Install(p)
	os.Exit(m.Run())
}

func TestMallocFree(t *testing.T) {
	live := Default().LiveBlocks()

	b := Malloc(100)
	require.NotNil(t, b)
	require.Len(t, b, 100)
	assert.True(t, Default().Owns(b))

	for i := range b {
		b[i] = byte(i)
	}
	Free(b)
	assert.Equal(t, live, Default().LiveBlocks())
}

func TestMallocNonPositive(t *testing.T) {
	assert.Nil(t, Malloc(0))
	assert.Nil(t, Malloc(-5))
}

func TestMallocExhaustionReturnsNil(t *testing.T) {
	assert.Nil(t, Malloc(16<<20), "larger than the fixed arena")
}

func TestSizeOfPoolBlock(t *testing.T) {
	b := Malloc(100)
	require.NotNil(t, b)
	defer Free(b)

	got := SizeOf(b)
	assert.GreaterOrEqual(t, got, 100)
	assert.Equal(t, got, UsableSize(b))
}

// Foreign passthrough: pointers from the system allocator behave exactly as
// they would without the interceptor.
func TestForeignPassthrough(t *testing.T) {
	sysalloc.ResetCounters()

	foreign := make([]byte, 50)
	assert.Equal(t, cap(foreign), SizeOf(foreign))

	Free(foreign)
	_, frees := sysalloc.Counters()
	assert.Equal(t, uint64(1), frees, "foreign free forwarded to the system allocator")
	assert.Equal(t, int64(0), Default().Stats().Corrupted)
}

func TestFreeNil(t *testing.T) {
	Free(nil)
}

func TestCalloc(t *testing.T) {
	c := Calloc(16, 32)
	require.NotNil(t, c)
	require.Len(t, c, 512)
	for i, v := range c {
		require.Equal(t, byte(0), v, "byte %d", i)
	}
	Free(c)

	assert.Nil(t, Calloc(0, 32))
	assert.Nil(t, Calloc(-1, 32))
}

func TestReallocPoolToPool(t *testing.T) {
	b := Malloc(100)
	require.NotNil(t, b)
	for i := range b {
		b[i] = byte(i)
	}

	r := Realloc(b, 5000)
	require.NotNil(t, r)
	require.Len(t, r, 5000)
	for i := range 100 {
		assert.Equal(t, byte(i), r[i])
	}
	Free(r)
}

func TestReallocNilIsMalloc(t *testing.T) {
	r := Realloc(nil, 64)
	require.NotNil(t, r)
	require.Len(t, r, 64)
	Free(r)
}

func TestReallocForeignForwards(t *testing.T) {
	foreign := make([]byte, 10)
	foreign[0] = 0x42

	r := Realloc(foreign, 100)
	require.Len(t, r, 100)
	assert.Equal(t, byte(0x42), r[0])
	assert.False(t, Default().Owns(r), "foreign pointers are not promoted into the pool")
}

func TestCounters(t *testing.T) {
	ResetCounters()
	total, maxTotal := Counters()
	assert.Zero(t, total)
	assert.Zero(t, maxTotal)

	b := Malloc(4096)
	require.NotNil(t, b)
	total, maxTotal = Counters()
	assert.GreaterOrEqual(t, total, int64(4096))
	assert.GreaterOrEqual(t, maxTotal, int64(4096))

	Free(b)
	total, _ = Counters()
	assert.Less(t, total, int64(4096))
}
