// Package simulator is the entry point of the engine: it parses a circuit,
// runs it on a fresh state vector and derives one of the three report shapes.
//
// The package-level functions use a shared Simulator with default settings.
// A Simulator holds only immutable data and a cache of parsed circuits, so it
// is safe for concurrent use.
package simulator

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"qtermsim/circuit"
	"qtermsim/report"
	"qtermsim/statevector"
)

// Request is one simulation call.
type Request struct {
	Circuit    string
	QubitCount int
	Ordering   string  // "", "littleendian" or "bigendian"
	Shots      int     // sampling only
	Cutoff     float64 // drops basis states below this probability; 0 keeps all
}

type cacheKey struct {
	text       string
	qubitCount int
}

// Simulator runs requests.
type Simulator struct {
	engine  *statevector.Engine
	sampler *report.Sampler
	cache   *lru.Cache[cacheKey, *circuit.Circuit]
	logger  *log.Logger
}

// New returns a Simulator configured by opts.
func New(opts ...Option) (*Simulator, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}

	s := &Simulator{
		engine:  statevector.NewEngine(o.engine, o.logger.WithPrefix("engine")),
		sampler: report.NewSampler(o.seed),
		logger:  o.logger,
	}
	if o.cacheSize > 0 {
		cache, err := lru.New[cacheKey, *circuit.Circuit](o.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("circuit cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Engine returns the underlying engine.
func (s *Simulator) Engine() *statevector.Engine { return s.engine }

// Compile checks the register size and parses text, reusing a cached circuit
// when the same text was compiled for the same size before.
func (s *Simulator) Compile(text string, qubitCount int) (*circuit.Circuit, error) {
	if err := s.engine.CheckQubitCount(qubitCount); err != nil {
		return nil, err
	}
	key := cacheKey{text: text, qubitCount: qubitCount}
	if s.cache != nil {
		if c, ok := s.cache.Get(key); ok {
			return c, nil
		}
	}
	c, err := circuit.Parse([]byte(text), qubitCount)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Add(key, c)
	}
	return c, nil
}

// run validates everything the request needs, then simulates through step last.
func (s *Simulator) run(ctx context.Context, kind Kind, req Request, last int) (*statevector.StateVector, report.Ordering, error) {
	id := uuid.NewString()
	start := time.Now()

	ord, err := report.ParseOrdering(req.Ordering)
	if err != nil {
		return nil, 0, err
	}
	if kind == KindSample && req.Shots < 1 {
		return nil, 0, &report.InvalidShotCountError{Shots: req.Shots}
	}
	c, err := s.Compile(req.Circuit, req.QubitCount)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", kind, err)
	}
	parsed := time.Now()

	sv, err := s.engine.RunThrough(ctx, c, last)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", kind, err)
	}

	s.logger.Debug("simulated",
		"id", id,
		"kind", kind,
		"qubits", req.QubitCount,
		"amplitudes", len(sv.Amplitudes),
		"gates", c.GateCount(),
		"parse", parsed.Sub(start),
		"simulate", time.Since(parsed),
	)
	return sv, ord, nil
}

// Simulate samples req.Shots measurements of the final state.
func (s *Simulator) Simulate(ctx context.Context, req Request) (*report.ShotCounts, error) {
	sv, ord, err := s.run(ctx, KindSample, req, maxStep)
	if err != nil {
		return nil, err
	}
	return s.sampler.Sample(sv, req.Shots, ord)
}

// Statevector lists the final amplitudes.
func (s *Simulator) Statevector(ctx context.Context, req Request) (report.AmplitudeList, error) {
	sv, ord, err := s.run(ctx, KindStatevector, req, maxStep)
	if err != nil {
		return nil, err
	}
	return report.Amplitudes(sv, ord, report.WithCutoff(req.Cutoff)), nil
}

// Probabilities lists the final measurement probabilities.
func (s *Simulator) Probabilities(ctx context.Context, req Request) (report.ProbabilityList, error) {
	sv, ord, err := s.run(ctx, KindProbabilities, req, maxStep)
	if err != nil {
		return nil, err
	}
	return report.Probabilities(sv, ord, report.WithCutoff(req.Cutoff)), nil
}

// State returns the raw state after the steps whose index is at most last.
// A negative last yields the initial state.
func (s *Simulator) State(ctx context.Context, req Request, last int) (*statevector.StateVector, error) {
	sv, _, err := s.run(ctx, KindStatevector, req, last)
	return sv, err
}

// Sample draws shots from an already computed state.
func (s *Simulator) Sample(sv *statevector.StateVector, shots int, ord report.Ordering) (*report.ShotCounts, error) {
	return s.sampler.Sample(sv, shots, ord)
}

const maxStep = math.MaxInt

var defaultSimulator = sync.OnceValue(func() *Simulator {
	s, err := New()
	if err != nil {
		panic(err)
	}
	return s
})

// Default returns the shared Simulator used by the package-level functions.
func Default() *Simulator { return defaultSimulator() }

// Simulate samples shots measurements of circuit text on qubitCount qubits.
func Simulate(text string, shots, qubitCount int) (*report.ShotCounts, error) {
	return Default().Simulate(context.Background(), Request{Circuit: text, QubitCount: qubitCount, Shots: shots})
}

// GetStatevector lists the final amplitudes in the given ordering.
func GetStatevector(text, ordering string, qubitCount int) (report.AmplitudeList, error) {
	return Default().Statevector(context.Background(), Request{Circuit: text, QubitCount: qubitCount, Ordering: ordering})
}

// GetProbabilities lists the final probabilities in the given ordering.
func GetProbabilities(text, ordering string, qubitCount int) (report.ProbabilityList, error) {
	return Default().Probabilities(context.Background(), Request{Circuit: text, QubitCount: qubitCount, Ordering: ordering})
}
