package hfabric

import (
	"log/slog"
	"time"

	"github.com/hupe1980/hfabric/lexical"
)

const (
	// DefaultSearchLimit is the result cap of Search without WithLimit.
	DefaultSearchLimit = 50
	// DefaultTopK is the neighbour count of Similar without WithTopK.
	DefaultTopK = 10
)

type options struct {
	metricsCollector   MetricsCollector
	logger             *Logger
	materializeTimeout time.Duration
	cacheBytes         int64
	cacheBlockSize     int64
	ioBytesPerSec      int64
}

// Option configures Open.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &hfabric.BasicMetricsCollector{}
//	hf, _ := hfabric.Open(ctx, hfabric.Local("./pkg"), hfabric.WithMetricsCollector(metrics))
//	// ... use hf ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, Avg latency: %dns\n", stats.SearchCount, stats.SearchAvgNanos)
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
//	logger := hfabric.NewJSONLogger(slog.LevelInfo)
//	hf, _ := hfabric.Open(ctx, hfabric.Local("./pkg"), hfabric.WithLogger(logger))
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

// WithMaterializeTimeout bounds the construction of each lazily loaded
// structure. A construction that exceeds d fails with ErrBuildTimeout and is
// retried by the next caller. d <= 0 disables the bound.
func WithMaterializeTimeout(d time.Duration) Option {
	return func(o *options) {
		o.materializeTimeout = d
	}
}

// WithBlockCache wraps a Remote source in a block cache of capacityBytes.
// blockSize <= 0 selects the default block size. It has no effect on Local
// sources.
func WithBlockCache(capacityBytes, blockSize int64) Option {
	return func(o *options) {
		o.cacheBytes = capacityBytes
		o.cacheBlockSize = blockSize
	}
}

// WithIORateLimit caps the bytes per second read while materializing
// structures. n <= 0 means unlimited.
func WithIORateLimit(n int64) Option {
	return func(o *options) {
		o.ioBytesPerSec = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// SearchOptions configures Search.
type SearchOptions struct {
	// Limit caps the number of hits. Default DefaultSearchLimit.
	Limit int
	// Mode selects how query terms match the vocabulary. Default exact.
	Mode lexical.MatchMode
}

// WithLimit sets the search result cap.
func WithLimit(limit int) func(o *SearchOptions) {
	return func(o *SearchOptions) {
		o.Limit = limit
	}
}

// WithMatchMode sets the term match mode of a search.
func WithMatchMode(mode lexical.MatchMode) func(o *SearchOptions) {
	return func(o *SearchOptions) {
		o.Mode = mode
	}
}

// SimilarOptions configures Similar.
type SimilarOptions struct {
	// TopK is the number of neighbours. Default DefaultTopK.
	TopK int
}

// WithTopK sets the neighbour count of a similarity query.
func WithTopK(k int) func(o *SimilarOptions) {
	return func(o *SimilarOptions) {
		o.TopK = k
	}
}
