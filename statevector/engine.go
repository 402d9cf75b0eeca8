// Package statevector evolves an n-qubit register through a validated circuit.
package statevector

import (
	"context"
	"fmt"
	"io"
	"math"
	"runtime"

	"github.com/charmbracelet/log"

	"qtermsim/circuit"
	"qtermsim/gates"
)

const (
	// HardMaxQubits bounds every configured limit; 2^30 amplitudes take 16 GiB.
	HardMaxQubits            = 30
	DefaultMaxQubits         = 24
	DefaultParallelThreshold = 1 << 14
	DefaultNormTolerance     = 1e-9
)

// ResourceLimitError is returned when the requested register is empty or larger
// than the engine accepts.
type ResourceLimitError struct {
	Requested int
	Limit     int
}

func (e *ResourceLimitError) Error() string {
	return fmt.Sprintf("qubit count %d outside supported range [1, %d]", e.Requested, e.Limit)
}

// Config tunes an Engine. Zero fields take their defaults.
type Config struct {
	MaxQubits         int
	Workers           int // goroutines per gate; 1 disables the parallel kernel
	ParallelThreshold int // minimum amplitudes before a gate is split
	NormTolerance     float64
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		MaxQubits:         DefaultMaxQubits,
		Workers:           runtime.GOMAXPROCS(0),
		ParallelThreshold: DefaultParallelThreshold,
		NormTolerance:     DefaultNormTolerance,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxQubits <= 0 {
		c.MaxQubits = d.MaxQubits
	}
	c.MaxQubits = min(c.MaxQubits, HardMaxQubits)
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.ParallelThreshold <= 0 {
		c.ParallelThreshold = d.ParallelThreshold
	}
	if c.NormTolerance <= 0 {
		c.NormTolerance = d.NormTolerance
	}
	return c
}

// Engine runs circuits. It holds no per-run state and is safe for concurrent use.
type Engine struct {
	cfg    Config
	logger *log.Logger
}

// NewEngine returns an engine with cfg. A nil logger discards output.
func NewEngine(cfg Config, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{cfg: cfg.withDefaults(), logger: logger}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// CheckQubitCount reports whether a register of n qubits can be simulated.
func (e *Engine) CheckQubitCount(n int) error {
	if n < 1 || n > e.cfg.MaxQubits {
		return &ResourceLimitError{Requested: n, Limit: e.cfg.MaxQubits}
	}
	return nil
}

// Run applies every step of c to |0...0> and returns the final state.
func (e *Engine) Run(ctx context.Context, c *circuit.Circuit) (*StateVector, error) {
	return e.run(ctx, c, math.MaxInt)
}

// RunThrough applies only the steps of c whose index is at most last.
// A negative last returns the initial state.
func (e *Engine) RunThrough(ctx context.Context, c *circuit.Circuit, last int) (*StateVector, error) {
	return e.run(ctx, c, last)
}

func (e *Engine) run(ctx context.Context, c *circuit.Circuit, last int) (*StateVector, error) {
	if err := e.CheckQubitCount(c.QubitCount); err != nil {
		return nil, err
	}
	sv := newStateVector(c.QubitCount)
	workers := e.workersFor(len(sv.Amplitudes))

	for _, step := range c.Steps {
		if step.Index > last {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, app := range step.Gates {
			if err := applyOp(ctx, sv.Amplitudes, app, workers); err != nil {
				return nil, err
			}
			if _, marker := app.Op.(gates.Marker); marker {
				continue
			}
			if norm := sv.Norm(); normDrift(norm) > e.cfg.NormTolerance {
				e.logger.Warn("norm drift", "step", step.Index, "gate", app.Gate.Name, "norm", norm)
			}
		}
	}
	return sv, nil
}

func (e *Engine) workersFor(amplitudes int) int {
	if e.cfg.Workers <= 1 || amplitudes < e.cfg.ParallelThreshold {
		return 1
	}
	return e.cfg.Workers
}
