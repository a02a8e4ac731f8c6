package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/poolkit/internal/format"
)

// A pointer that never came from the pool fails the range check and is
// reported as foreign: no diagnostic, no state change, no header read.
func TestFreeForeignPointer(t *testing.T) {
	p := newTestPool(t)
	fp := p.Fingerprint()

	foreign := make([]byte, 64)
	err := p.Free(foreign)
	assert.ErrorIs(t, err, ErrForeignPtr)

	stats := p.Stats()
	assert.Equal(t, int64(1), stats.Foreign)
	assert.Equal(t, int64(0), stats.Corrupted)
	assert.Equal(t, fp, p.Fingerprint(), "index untouched")
}

func TestSizeOfForeignPointer(t *testing.T) {
	p := newTestPool(t)

	foreign := make([]byte, 64)
	_, err := p.SizeOf(foreign)
	assert.ErrorIs(t, err, ErrForeignPtr)

	_, err = p.SizeOf(nil)
	assert.ErrorIs(t, err, ErrForeignPtr)
}

// A pointer inside the arena whose token word was trashed is diagnosed as
// corrupted and leaked: the index must not change.
func TestFreeCorruptedHeader(t *testing.T) {
	p := newTestPool(t)

	b, err := p.Alloc(100)
	require.NoError(t, err)
	live := p.LiveBlocks()
	fp := p.Fingerprint()

	// Simulate external corruption of the token word.
	off, ok := p.payloadOffset(b)
	require.True(t, ok)
	format.PutU64(p.ar.Bytes(), off-format.TokenWordBack, 0)

	err = p.Free(b)
	assert.ErrorIs(t, err, ErrBadHeader)

	stats := p.Stats()
	assert.Equal(t, int64(1), stats.Corrupted)
	assert.Equal(t, fp, p.Fingerprint(), "corrupted block leaked, not reclaimed")
	assert.Equal(t, live, p.LiveBlocks())
	require.NoError(t, p.Validate(), "conservation holds: the leak is still accounted live")
}

// The second free of the same block reads the cleared token and lands in the
// corrupted-header path.
func TestDoubleFreeDiagnosedAsCorrupted(t *testing.T) {
	p := newTestPool(t)

	b, err := p.Alloc(100)
	require.NoError(t, err)
	require.NoError(t, p.Free(b))

	err = p.Free(b)
	assert.ErrorIs(t, err, ErrBadHeader)
	assert.Equal(t, int64(1), p.Stats().Corrupted)
	require.NoError(t, p.Validate())
}

// A header whose token survives but whose fields are nonsense is rejected
// before the index can be poisoned.
func TestFreeHeaderFieldsOutOfRange(t *testing.T) {
	p := newTestPool(t)

	b, err := p.Alloc(100)
	require.NoError(t, err)
	off, ok := p.payloadOffset(b)
	require.True(t, ok)

	format.PutU64(p.ar.Bytes(), off-format.SizeWordBack, uint64(p.Capacity()*2))

	err = p.Free(b)
	assert.ErrorIs(t, err, ErrBadHeader)
	assert.Equal(t, int64(1), p.Stats().Corrupted)
}

func TestOwns(t *testing.T) {
	p := newTestPool(t)

	b, err := p.Alloc(100)
	require.NoError(t, err)
	assert.True(t, p.Owns(b))
	assert.False(t, p.Owns(make([]byte, 100)))
	assert.False(t, p.Owns(nil))

	require.NoError(t, p.Free(b))
}
