package pool

import (
	"io"
	"os"

	"github.com/pbnjay/memory"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/joshuapare/poolkit/internal/format"
)

// Runtime debug flag for allocation logging - controlled by POOL_LOG_ALLOC
// env var.
var logAlloc = os.Getenv("POOL_LOG_ALLOC") != ""

// Config holds the pool's construction-time settings. Use DefaultConfig or
// New with Option funcs rather than filling it by hand.
type Config struct {
	// Capacity is the initial arena capacity in bytes. Rounded up to the
	// alignment.
	Capacity int64

	// Reserve is the virtual address space reserved for growth. Only
	// meaningful for the growable arena; raised to Capacity when smaller.
	Reserve int64

	// GrowIncrement is added on top of the shortfall whenever the arena
	// grows.
	GrowIncrement int64

	// Alignment is the block alignment: payloads, headers, and footprints
	// are multiples of it. Power of two, at least 32; cache-line sized in
	// practice.
	Alignment int64

	// BinCount is the number of size-class bins in the free-region index.
	BinCount int

	// Static selects the fixed-capacity arena: growth is refused and
	// exhaustion surfaces immediately.
	Static bool

	// Logger receives the diagnostic stream (corrupted headers, growth
	// events). Discards by default; POOL_LOG_ALLOC=1 switches the default
	// to verbose stderr logging.
	Logger *logrus.Logger
}

// DefaultConfig returns the stock configuration: a growable 1 GiB arena
// (clamped to an eighth of physical memory on small machines), 50 MiB grow
// increment, 64-byte alignment, 32 bins.
func DefaultConfig() Config {
	capacity := format.DefaultCapacity
	if total := memory.TotalMemory(); total > 0 {
		if clamp := int64(total / 8); clamp < capacity {
			capacity = format.AlignUp(clamp, format.DefaultAlignment)
		}
	}
	return Config{
		Capacity:      capacity,
		Reserve:       4 * capacity,
		GrowIncrement: format.DefaultGrowIncrement,
		Alignment:     format.DefaultAlignment,
		BinCount:      format.DefaultBinCount,
		Logger:        defaultLogger(),
	}
}

func defaultLogger() *logrus.Logger {
	log := logrus.New()
	if logAlloc {
		log.SetOutput(os.Stderr)
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetOutput(io.Discard)
	}
	return log
}

func (c *Config) validate() error {
	if !format.IsPowerOfTwo(c.Alignment) || c.Alignment < 32 {
		return errors.Errorf("pool: alignment %d must be a power of two >= 32", c.Alignment)
	}
	if c.Capacity <= 0 {
		return errors.Errorf("pool: capacity %d must be positive", c.Capacity)
	}
	if c.BinCount < 1 {
		return errors.Errorf("pool: bin count %d must be positive", c.BinCount)
	}
	if c.GrowIncrement < 0 {
		return errors.Errorf("pool: grow increment %d must not be negative", c.GrowIncrement)
	}
	return nil
}

// Option mutates a Config during New.
type Option func(*Config)

// WithCapacity sets the initial arena capacity in bytes.
func WithCapacity(n int64) Option { return func(c *Config) { c.Capacity = n } }

// WithReserve sets the reserved address space for the growable arena.
func WithReserve(n int64) Option { return func(c *Config) { c.Reserve = n } }

// WithGrowIncrement sets the extra bytes added on every arena growth.
func WithGrowIncrement(n int64) Option { return func(c *Config) { c.GrowIncrement = n } }

// WithAlignment sets the block alignment. Power of two, at least 32.
func WithAlignment(a int64) Option { return func(c *Config) { c.Alignment = a } }

// WithBinCount sets the number of size-class bins.
func WithBinCount(k int) Option { return func(c *Config) { c.BinCount = k } }

// WithStatic selects the fixed-capacity arena.
func WithStatic() Option { return func(c *Config) { c.Static = true } }

// WithLogger routes the diagnostic stream to log.
func WithLogger(log *logrus.Logger) Option { return func(c *Config) { c.Logger = log } }
