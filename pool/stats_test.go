package pool

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockCensus(t *testing.T) {
	p := newTestPool(t)

	a, err := p.Alloc(100) // extent 128
	require.NoError(t, err)
	b, err := p.Alloc(100)
	require.NoError(t, err)
	c, err := p.Alloc(1000) // extent 1024
	require.NoError(t, err)

	census := p.BlockCensus()
	assert.Equal(t, int64(2), census[128])
	assert.Equal(t, int64(1), census[1024])
	assert.Equal(t, int64(3), p.LiveBlocks())

	require.NoError(t, p.Free(a))
	require.NoError(t, p.Free(b))
	census = p.BlockCensus()
	assert.NotContains(t, census, int64(128))
	assert.Equal(t, int64(1), p.LiveBlocks())

	require.NoError(t, p.Free(c))
	assert.Empty(t, p.BlockCensus())
}

func TestStatsCounters(t *testing.T) {
	p := newTestPool(t)

	b, err := p.Alloc(100)
	require.NoError(t, err)
	require.NoError(t, p.Free(b))

	stats := p.Stats()
	assert.Equal(t, int64(1), stats.AllocCalls)
	assert.Equal(t, int64(1), stats.FreeCalls)
	assert.Equal(t, int64(1), stats.FastPath)
	assert.Equal(t, stats.BytesAllocated, stats.BytesFreed)
	assert.NotZero(t, stats.Lock.Acquisitions)

	p.ResetStats()
	stats = p.Stats()
	assert.Zero(t, stats.AllocCalls)
	assert.Zero(t, stats.FreeCalls)
}

func TestFreeSizeAccounting(t *testing.T) {
	p := newTestPool(t)
	capacity := p.Capacity()
	assert.Equal(t, capacity, p.FreeSize())
	assert.Zero(t, p.UsedSize())

	b, err := p.Alloc(1000)
	require.NoError(t, err)
	// Footprint = extent + header stride.
	assert.Equal(t, int64(1024+64), p.UsedSize())
	assert.Equal(t, capacity-1024-64, p.FreeSize())

	require.NoError(t, p.Free(b))
	assert.Equal(t, capacity, p.FreeSize())
}

func TestCollector(t *testing.T) {
	p := newTestPool(t)
	b, err := p.Alloc(100)
	require.NoError(t, err)
	defer p.Free(b)

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(NewCollector(p)))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 11)

	byName := map[string]float64{}
	for _, mf := range families {
		byName[mf.GetName()] = mf.GetMetric()[0].GetGauge().GetValue() +
			mf.GetMetric()[0].GetCounter().GetValue()
	}
	assert.Equal(t, float64(p.Capacity()), byName["poolkit_arena_capacity_bytes"])
	assert.Equal(t, float64(1), byName["poolkit_live_blocks"])
	assert.Equal(t, float64(1), byName["poolkit_alloc_calls_total"])
}
