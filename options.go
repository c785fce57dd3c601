package pimsim

import (
	"log/slog"

	"github.com/hupe1980/pimsim/gen"
	"github.com/hupe1980/pimsim/resource"
)

type options struct {
	generator     gen.DataGenerator
	statsObserver StatsObserver
	logger        *Logger
	controller    *resource.Controller
}

// Option configures simulator construction behavior.
type Option func(*options)

// WithGenerator configures the data generator populating record rows.
//
// If nil is passed, the default seeded uniform generator is used.
func WithGenerator(g gen.DataGenerator) Option {
	return func(o *options) {
		if g == nil {
			g = gen.NewUniform(defaultSeed)
		}
		o.generator = g
	}
}

// WithSeed configures a seeded uniform random generator. A fixed seed yields
// a byte-identical bank and dump on every run.
// Convenience wrapper for WithGenerator(gen.NewUniform(seed)).
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.generator = gen.NewUniform(seed)
	}
}

// WithStatsObserver configures an observer for run counters.
// Pass nil to disable observation.
func WithStatsObserver(so StatsObserver) Option {
	return func(o *options) {
		if so == nil {
			so = NoopStatsObserver{}
		}
		o.statsObserver = so
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := pimsim.NewJSONLogger(slog.LevelInfo)
//	sim, _ := pimsim.New(cfg, pimsim.WithLogger(logger))
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

// WithResourceController configures the shared controller metering bank
// concurrency (RunBanks) and archive IO throughput (ArchiveDump).
// Pass nil for unmetered operation.
func WithResourceController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		generator:     gen.NewUniform(defaultSeed),
		statsObserver: NoopStatsObserver{},
		logger:        NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
