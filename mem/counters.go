package mem

import (
	"runtime"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/joshuapare/poolkit/internal/sysalloc"
)

// Threshold instrumentation: a running estimate of outstanding request
// bytes, its high-water mark, and two size thresholds. Requests at or above
// the print threshold are logged; requests at or above the break threshold
// stop the process in the debugger. Both default to off.

var (
	totalAlloc    atomic.Int64
	totalMaxAlloc atomic.Int64
	printAtSize   atomic.Int64
	breakAtSize   atomic.Int64

	diag = logrus.StandardLogger()
)

// SetThresholds configures the diagnostic size thresholds. Zero disables a
// threshold.
func SetThresholds(printAt, breakAt int64) {
	printAtSize.Store(printAt)
	breakAtSize.Store(breakAt)
}

// Counters returns the running request-byte estimate and its high-water
// mark. The estimate tracks request sizes, not footprints, so it is a
// diagnostic, not an accounting of arena bytes.
func Counters() (total, maxTotal int64) {
	return totalAlloc.Load(), totalMaxAlloc.Load()
}

// ResetCounters zeros the instrumentation: the request-byte totals, the
// fallback call counters, and the pool's diagnostic counters.
func ResetCounters() {
	totalAlloc.Store(0)
	totalMaxAlloc.Store(0)
	sysalloc.ResetCounters()
	Default().ResetStats()
}

func noteAlloc(n int64) {
	t := totalAlloc.Add(n)
	for {
		m := totalMaxAlloc.Load()
		if t <= m || totalMaxAlloc.CompareAndSwap(m, t) {
			break
		}
	}
	if pa := printAtSize.Load(); pa > 0 && n >= pa {
		diag.WithFields(logrus.Fields{
			"size": n, "outstanding": t,
		}).Info("mem: large allocation")
	}
	if ba := breakAtSize.Load(); ba > 0 && n >= ba {
		runtime.Breakpoint()
	}
}

func noteFree(n int64) {
	totalAlloc.Add(-n)
}
