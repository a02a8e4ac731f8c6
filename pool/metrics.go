package pool

import "github.com/prometheus/client_golang/prometheus"

// Collector exposes a pool's state and counters as Prometheus metrics.
// Register it with any prometheus.Registerer:
//
//	prometheus.MustRegister(pool.NewCollector(p))
type Collector struct {
	p *Pool

	capacity    *prometheus.Desc
	freeBytes   *prometheus.Desc
	usedBytes   *prometheus.Desc
	liveBlocks  *prometheus.Desc
	freeRegions *prometheus.Desc

	allocCalls   *prometheus.Desc
	freeCalls    *prometheus.Desc
	failedAllocs *prometheus.Desc
	growCalls    *prometheus.Desc
	corrupted    *prometheus.Desc
	lockContend  *prometheus.Desc
}

// NewCollector returns a collector over p.
func NewCollector(p *Pool) *Collector {
	ns := "poolkit"
	return &Collector{
		p: p,
		capacity: prometheus.NewDesc(ns+"_arena_capacity_bytes",
			"Current arena capacity.", nil, nil),
		freeBytes: prometheus.NewDesc(ns+"_free_bytes",
			"Bytes currently free, headers included.", nil, nil),
		usedBytes: prometheus.NewDesc(ns+"_used_bytes",
			"Bytes currently allocated, headers included.", nil, nil),
		liveBlocks: prometheus.NewDesc(ns+"_live_blocks",
			"Outstanding allocations.", nil, nil),
		freeRegions: prometheus.NewDesc(ns+"_free_regions",
			"Entries in the free-region index.", nil, nil),
		allocCalls: prometheus.NewDesc(ns+"_alloc_calls_total",
			"Allocation requests served by the engine.", nil, nil),
		freeCalls: prometheus.NewDesc(ns+"_free_calls_total",
			"Release requests served by the engine.", nil, nil),
		failedAllocs: prometheus.NewDesc(ns+"_failed_allocs_total",
			"Allocation requests that surfaced exhaustion.", nil, nil),
		growCalls: prometheus.NewDesc(ns+"_grow_calls_total",
			"Arena growth operations.", nil, nil),
		corrupted: prometheus.NewDesc(ns+"_corrupted_headers_total",
			"Releases rejected on a bad header token.", nil, nil),
		lockContend: prometheus.NewDesc(ns+"_lock_contended_total",
			"Lock acquisitions that did not win the fast path.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.capacity
	ch <- c.freeBytes
	ch <- c.usedBytes
	ch <- c.liveBlocks
	ch <- c.freeRegions
	ch <- c.allocCalls
	ch <- c.freeCalls
	ch <- c.failedAllocs
	ch <- c.growCalls
	ch <- c.corrupted
	ch <- c.lockContend
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.p.Stats()
	gauge := func(d *prometheus.Desc, v int64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v))
	}
	counter := func(d *prometheus.Desc, v int64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}

	gauge(c.capacity, c.p.Capacity())
	gauge(c.freeBytes, c.p.FreeSize())
	gauge(c.usedBytes, c.p.UsedSize())
	gauge(c.liveBlocks, c.p.LiveBlocks())
	gauge(c.freeRegions, int64(c.p.NumFreeRegions()))

	counter(c.allocCalls, stats.AllocCalls)
	counter(c.freeCalls, stats.FreeCalls)
	counter(c.failedAllocs, stats.FailedAllocs)
	counter(c.growCalls, stats.GrowCalls)
	counter(c.corrupted, stats.Corrupted)
	counter(c.lockContend, int64(stats.Lock.Contended))
}
