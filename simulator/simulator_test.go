package simulator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"qtermsim/circuit"
	"qtermsim/gates"
	"qtermsim/report"
	"qtermsim/statevector"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const hadamard = `{"steps":[{"index":0,"gates":[{"name":"hadamard","target":0}]}]}`

const bell = `{"steps":[
	{"index":0,"gates":[{"name":"hadamard","target":0}]},
	{"index":1,"gates":[{"name":"ctrl-pauli-x","target":1,"control":0}]}
]}`

func newSimulator(t *testing.T, opts ...Option) *Simulator {
	t.Helper()
	s, err := New(append([]Option{WithSeed(1)}, opts...)...)
	require.NoError(t, err)
	return s
}

func TestHadamardScenario(t *testing.T) {
	amps, err := GetStatevector(hadamard, "", 1)
	require.NoError(t, err)
	require.Len(t, amps, 2)
	assert.InDelta(t, 1/math.Sqrt2, real(amps[0].Value), 1e-12)
	assert.InDelta(t, 1/math.Sqrt2, real(amps[1].Value), 1e-12)

	probs, err := GetProbabilities(hadamard, "bigendian", 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, probs[0].Value, 1e-12)
	assert.InDelta(t, 0.5, probs[1].Value, 1e-12)
}

func TestBellScenario(t *testing.T) {
	amps, err := GetStatevector(bell, "littleendian", 2)
	require.NoError(t, err)
	for _, a := range amps {
		switch a.Label {
		case "00", "11":
			assert.InDelta(t, 1/math.Sqrt2, real(a.Value), 1e-12, a.Label)
		default:
			assert.Zero(t, a.Value, a.Label)
		}
	}

	counts, err := Simulate(bell, 1024, 2)
	require.NoError(t, err)
	assert.Subset(t, []string{"00", "11"}, counts.Labels())
	assert.Equal(t, 1024, counts.Counts["00"]+counts.Counts["11"])
	assert.InDelta(t, 512, counts.Counts["11"], 100)
}

func TestSimulateHonoursOrdering(t *testing.T) {
	s := newSimulator(t)
	src := `{"steps":[{"index":0,"gates":[{"name":"pauli-x","target":0}]}]}`
	counts, err := s.Simulate(context.Background(), Request{Circuit: src, QubitCount: 3, Shots: 10, Ordering: "bigendian"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"100": 10}, counts.Counts)

	counts, err = s.Simulate(context.Background(), Request{Circuit: src, QubitCount: 3, Shots: 10})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"001": 10}, counts.Counts)
}

func TestIdempotence(t *testing.T) {
	s := newSimulator(t)
	req := Request{Circuit: bell, QubitCount: 3, Ordering: "bigendian"}

	first, err := s.Statevector(context.Background(), req)
	require.NoError(t, err)
	second, err := s.Statevector(context.Background(), req)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}

	uncached := newSimulator(t, WithCacheSize(0))
	third, err := uncached.Statevector(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(first, third))
}

func TestCacheReusesParsedCircuit(t *testing.T) {
	s := newSimulator(t, WithCacheSize(2))
	a, err := s.Compile(bell, 2)
	require.NoError(t, err)
	b, err := s.Compile(bell, 2)
	require.NoError(t, err)
	assert.Same(t, a, b)

	c, err := s.Compile(bell, 3)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
}

func TestOversizedLimitRejectsInsteadOfAllocating(t *testing.T) {
	s := newSimulator(t, WithMaxQubits(64))
	_, err := s.Statevector(context.Background(), Request{Circuit: `{"steps":[]}`, QubitCount: 64})
	var limit *statevector.ResourceLimitError
	require.True(t, errors.As(err, &limit), "err: %v", err)
	assert.Equal(t, 64, limit.Requested)
	assert.Equal(t, statevector.HardMaxQubits, limit.Limit)
}

func TestErrorClassification(t *testing.T) {
	s := newSimulator(t, WithMaxQubits(8))
	ctx := context.Background()

	_, err := s.Statevector(ctx, Request{Circuit: `{"steps":[{"index":0,"gates":[{"name":"nope","target":0}]}]}`, QubitCount: 1})
	var unknownGate *gates.UnknownGateError
	assert.True(t, errors.As(err, &unknownGate), "unknown gate: %v", err)

	_, err = s.Statevector(ctx, Request{Circuit: hadamard, QubitCount: 1, Ordering: "reverse"})
	var unknownOrdering *report.UnknownOrderingError
	assert.True(t, errors.As(err, &unknownOrdering), "unknown ordering: %v", err)

	_, err = s.Probabilities(ctx, Request{Circuit: `{"steps":[{"index":0,"gates":[{"name":"hadamard","target":1}]}]}`, QubitCount: 1})
	var invalidQubit *circuit.InvalidQubitIndexError
	assert.True(t, errors.As(err, &invalidQubit), "invalid qubit: %v", err)

	_, err = s.Probabilities(ctx, Request{Circuit: `{"steps":`, QubitCount: 1})
	var malformed *circuit.MalformedCircuitError
	assert.True(t, errors.As(err, &malformed), "malformed: %v", err)

	_, err = s.Probabilities(ctx, Request{Circuit: hadamard, QubitCount: 9})
	var limit *statevector.ResourceLimitError
	assert.True(t, errors.As(err, &limit), "resource limit: %v", err)

	_, err = s.Simulate(ctx, Request{Circuit: hadamard, QubitCount: 1, Shots: 0})
	var shots *report.InvalidShotCountError
	assert.True(t, errors.As(err, &shots), "shots: %v", err)
}

func TestStateThroughStep(t *testing.T) {
	s := newSimulator(t)
	req := Request{Circuit: bell, QubitCount: 2}

	sv, err := s.State(context.Background(), req, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, sv.Probabilities()[0b01], 1e-12)

	sv, err = s.State(context.Background(), req, -1)
	require.NoError(t, err)
	assert.Equal(t, complex(1, 0), sv.Amplitudes[0])
}

func TestDebugLogCarriesRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)
	s := newSimulator(t, WithLogger(logger))

	_, err := s.Probabilities(context.Background(), Request{Circuit: bell, QubitCount: 2})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "simulated")
	assert.Contains(t, buf.String(), "id=")
	assert.Contains(t, buf.String(), "kind=probabilities")
}

func TestBatch(t *testing.T) {
	s := newSimulator(t, WithWorkers(3))
	reqs := make([]Request, 8)
	for i := range reqs {
		reqs[i] = Request{
			Circuit:    fmt.Sprintf(`{"steps":[{"index":0,"gates":[{"name":"pauli-x","target":%d}]}]}`, i%3),
			QubitCount: 3,
		}
	}

	results, err := s.Batch(context.Background(), KindProbabilities, reqs)
	require.NoError(t, err)
	require.Len(t, results, len(reqs))
	for i, r := range results {
		want := report.LittleEndian.Label(1<<(i%3), 3)
		for _, p := range r.Probabilities {
			if p.Label == want {
				assert.InDelta(t, 1, p.Value, 1e-12, "request %d", i)
			}
		}
	}

	for i := range reqs {
		reqs[i].Shots = 16
	}
	results, err = s.Batch(context.Background(), KindSample, reqs)
	require.NoError(t, err)
	assert.Equal(t, 16, results[5].Counts.Counts[report.LittleEndian.Label(1<<2, 3)])
}

func TestBatchStopsOnFirstError(t *testing.T) {
	s := newSimulator(t, WithWorkers(2))
	reqs := []Request{
		{Circuit: bell, QubitCount: 2},
		{Circuit: `{"steps":[{"index":0,"gates":[{"name":"bogus","target":0}]}]}`, QubitCount: 2},
		{Circuit: bell, QubitCount: 2},
	}
	_, err := s.Batch(context.Background(), KindStatevector, reqs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request 1")

	var unknown *gates.UnknownGateError
	assert.True(t, errors.As(err, &unknown))
}

func TestBatchCancelled(t *testing.T) {
	s := newSimulator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Batch(ctx, KindStatevector, []Request{{Circuit: bell, QubitCount: 2}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindSample, KindStatevector, KindProbabilities} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("histogram")
	assert.Error(t, err)
}
