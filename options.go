package lshdb

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/lshdb/persistence"
	"github.com/hupe1980/lshdb/resource"
)

// DefaultSeed seeds the hyperplane basis unless WithSeed overrides it.
// Two databases with the same shape and seed hash identically.
const DefaultSeed int64 = 42

type options struct {
	seed             int64
	metricsCollector MetricsCollector
	logger           *Logger
	compression      persistence.Compression
	resources        *resource.Controller
	parallelism      int
}

// Option configures New.
type Option func(*options)

// WithSeed sets the seed of the hyperplane basis.
//
// Snapshots do not carry the basis. Loading a snapshot into a database built
// with a different seed or shape keeps every record but indexes it differently.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &lshdb.BasicMetricsCollector{}
//	db, _ := lshdb.New(128, 8, 16, lshdb.WithMetricsCollector(metrics))
//	// ... use db ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg candidates: %d\n", stats.ApproxQueryCount, stats.ApproxAvgCandidates)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := lshdb.NewJSONLogger(slog.LevelInfo)
//	db, _ := lshdb.New(128, 8, 16, lshdb.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithCompression selects the body codec used when writing snapshots.
// Reading accepts every codec regardless of this setting.
func WithCompression(c persistence.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithResourceController bounds memory, concurrency and bandwidth of
// SaveTo and LoadFrom, and paces WriteTo and ReadFrom.
// A nil controller imposes no limits.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithParallelism sets how many goroutines derive bucket keys during
// BatchInsert and snapshot loads. Values below 1 mean GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		seed:             DefaultSeed,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		compression:      persistence.CompressionNone,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.parallelism < 1 {
		o.parallelism = runtime.GOMAXPROCS(0)
	}
	return o
}
