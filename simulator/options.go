package simulator

import (
	"github.com/charmbracelet/log"

	"qtermsim/statevector"
)

type options struct {
	engine    statevector.Config
	seed      uint64
	cacheSize int
	logger    *log.Logger
}

func defaultOptions() options {
	return options{
		engine:    statevector.DefaultConfig(),
		cacheSize: 128,
	}
}

// Option configures a Simulator.
type Option func(*options)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithEngineConfig replaces the engine configuration.
func WithEngineConfig(cfg statevector.Config) Option {
	return func(o *options) { o.engine = cfg }
}

// WithMaxQubits sets the largest accepted register.
func WithMaxQubits(n int) Option {
	return func(o *options) { o.engine.MaxQubits = n }
}

// WithWorkers bounds both the per-gate kernel split and the batch pool.
func WithWorkers(n int) Option {
	return func(o *options) { o.engine.Workers = n }
}

// WithSeed fixes the sampling seed. Zero picks a random one.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = seed }
}

// WithCacheSize sets how many parsed circuits are kept. Zero disables the cache.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}
