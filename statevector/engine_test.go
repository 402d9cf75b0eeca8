package statevector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qtermsim/circuit"
	"qtermsim/gates"
)

func mustParse(t *testing.T, src string, n int) *circuit.Circuit {
	t.Helper()
	c, err := circuit.Parse([]byte(src), n)
	require.NoError(t, err)
	return c
}

func sequential() *Engine {
	return NewEngine(Config{Workers: 1}, nil)
}

func TestHadamardSingleQubit(t *testing.T) {
	c := mustParse(t, `{"steps":[{"index":0,"gates":[{"name":"hadamard","target":0}]}]}`, 1)
	sv, err := sequential().Run(context.Background(), c)
	require.NoError(t, err)

	s := 1 / math.Sqrt2
	assert.InDelta(t, s, real(sv.Amplitudes[0]), 1e-12)
	assert.InDelta(t, s, real(sv.Amplitudes[1]), 1e-12)
	assert.InDelta(t, 1, sv.Norm(), 1e-12)
}

func TestBellState(t *testing.T) {
	c := mustParse(t, `{"steps":[
		{"index":0,"gates":[{"name":"hadamard","target":0}]},
		{"index":1,"gates":[{"name":"ctrl-pauli-x","target":1,"control":0}]}
	]}`, 2)
	sv, err := sequential().Run(context.Background(), c)
	require.NoError(t, err)

	probs := sv.Probabilities()
	assert.InDelta(t, 0.5, probs[0b00], 1e-12)
	assert.InDelta(t, 0, probs[0b01], 1e-12)
	assert.InDelta(t, 0, probs[0b10], 1e-12)
	assert.InDelta(t, 0.5, probs[0b11], 1e-12)

	marg := sv.QubitProbabilities()
	require.Len(t, marg, 2)
	assert.InDelta(t, 0.5, marg[1].Prob1, 1e-12)
}

func TestControlledGateNeedsControlSet(t *testing.T) {
	c := mustParse(t, `{"steps":[{"index":0,"gates":[{"name":"ctrl-pauli-x","target":0,"control":1}]}]}`, 2)
	sv, err := sequential().Run(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, complex(1, 0), sv.Amplitudes[0])
}

func TestSwapMovesExcitation(t *testing.T) {
	c := mustParse(t, `{"steps":[
		{"index":0,"gates":[{"name":"pauli-x","target":0}]},
		{"index":1,"gates":[{"name":"swap","target":0,"target2":2}]}
	]}`, 3)
	sv, err := sequential().Run(context.Background(), c)
	require.NoError(t, err)
	assert.InDelta(t, 1, real(sv.Amplitudes[0b100]), 1e-12)
}

func TestControlledSwap(t *testing.T) {
	// Fredkin: qubit 0 controls a swap of qubits 1 and 2.
	c := mustParse(t, `{"steps":[
		{"index":0,"gates":[{"name":"pauli-x","target":0},{"name":"pauli-x","target":1}]},
		{"index":1,"gates":[{"name":"ctrl-swap","target":1,"target2":2,"control":0}]}
	]}`, 3)
	sv, err := sequential().Run(context.Background(), c)
	require.NoError(t, err)
	assert.InDelta(t, 1, real(sv.Amplitudes[0b101]), 1e-12)
}

func TestMeasureIsNoOp(t *testing.T) {
	c := mustParse(t, `{"steps":[
		{"index":0,"gates":[{"name":"hadamard","target":0}]},
		{"index":1,"gates":[{"name":"measure-z","target":0}]}
	]}`, 1)
	sv, err := sequential().Run(context.Background(), c)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, sv.Probabilities()[1], 1e-12)
}

func randomCircuit(n, depth int) string {
	names := []string{"hadamard", "rx-theta", "ry-theta", "t", "sqrt-not"}
	var sb strings.Builder
	sb.WriteString(`{"steps":[`)
	for d := range depth {
		if d > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"index":%d,"gates":[`, d)
		switch d % 3 {
		case 0:
			for q := range n {
				if q > 0 {
					sb.WriteString(",")
				}
				fmt.Fprintf(&sb, `{"name":%q,"target":%d,"theta":%g}`, names[(q+d)%len(names)], q, 0.3*float64(q+d+1))
			}
		case 1:
			fmt.Fprintf(&sb, `{"name":"ctrl-pauli-x","target":%d,"control":%d}`, (d+1)%n, d%n)
		default:
			fmt.Fprintf(&sb, `{"name":"xx","target":%d,"target2":%d,"theta":0.7},{"name":"ctrl-u3","target":%d,"control":%d,"theta":1,"phi":0.5,"lambda":-0.25}`,
				d%n, (d+2)%n, (d+4)%n, (d+5)%n)
		}
		sb.WriteString("]}")
	}
	sb.WriteString("]}")
	return sb.String()
}

func TestParallelMatchesSequential(t *testing.T) {
	const n = 8
	c := mustParse(t, randomCircuit(n, 12), n)

	seq, err := sequential().Run(context.Background(), c)
	require.NoError(t, err)

	par, err := NewEngine(Config{Workers: 4, ParallelThreshold: 1}, nil).Run(context.Background(), c)
	require.NoError(t, err)

	approx := cmp.Comparer(func(a, b complex128) bool { return cmplx.Abs(a-b) < 1e-12 })
	if diff := cmp.Diff(seq.Amplitudes, par.Amplitudes, approx); diff != "" {
		t.Errorf("parallel state differs (-seq +par):\n%s", diff)
	}
	if diff := cmp.Diff(seq.Probabilities(), par.Probabilities(), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("parallel probabilities differ:\n%s", diff)
	}
	assert.InDelta(t, 1, par.Norm(), 1e-9)
}

func TestResourceLimit(t *testing.T) {
	e := NewEngine(Config{MaxQubits: 4}, nil)
	for _, n := range []int{0, -1, 5} {
		err := e.CheckQubitCount(n)
		var limit *ResourceLimitError
		require.True(t, errors.As(err, &limit), "n=%d", n)
		assert.Equal(t, n, limit.Requested)
		assert.Equal(t, 4, limit.Limit)
	}
	assert.NoError(t, e.CheckQubitCount(4))

	c := &circuit.Circuit{QubitCount: 5}
	_, err := e.Run(context.Background(), c)
	var limit *ResourceLimitError
	assert.True(t, errors.As(err, &limit))
}

func TestMaxQubitsCappedAtHardLimit(t *testing.T) {
	for _, n := range []int{HardMaxQubits + 1, 40, 63, 64, 1000} {
		e := NewEngine(Config{MaxQubits: n}, nil)
		assert.Equal(t, HardMaxQubits, e.Config().MaxQubits, "n=%d", n)

		err := e.CheckQubitCount(n)
		var limit *ResourceLimitError
		require.True(t, errors.As(err, &limit), "n=%d", n)
		assert.Equal(t, HardMaxQubits, limit.Limit)
	}

	_, err := NewEngine(Config{MaxQubits: 64}, nil).Run(context.Background(), &circuit.Circuit{QubitCount: 64})
	var limit *ResourceLimitError
	assert.True(t, errors.As(err, &limit))
}

func TestRunHonoursCancellation(t *testing.T) {
	c := mustParse(t, `{"steps":[{"index":0,"gates":[{"name":"hadamard","target":0}]}]}`, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sequential().Run(ctx, c)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunThrough(t *testing.T) {
	c := mustParse(t, `{"steps":[
		{"index":0,"gates":[{"name":"pauli-x","target":0}]},
		{"index":3,"gates":[{"name":"pauli-x","target":1}]}
	]}`, 2)
	e := sequential()

	sv, err := e.RunThrough(context.Background(), c, -1)
	require.NoError(t, err)
	assert.Equal(t, complex(1, 0), sv.Amplitudes[0])

	sv, err = e.RunThrough(context.Background(), c, 2)
	require.NoError(t, err)
	assert.Equal(t, complex(1, 0), sv.Amplitudes[0b01])

	sv, err = e.Run(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, complex(1, 0), sv.Amplitudes[0b11])
}

func TestNormDriftIsLoggedNotCorrected(t *testing.T) {
	def, err := gates.Lookup("identity")
	require.NoError(t, err)
	shrink := gates.Single{Matrix: gates.Matrix2{{0.5, 0}, {0, 0.5}}, Shape: gates.Diagonal}
	c := &circuit.Circuit{
		QubitCount: 1,
		Steps: []circuit.Step{{Index: 0, Gates: []circuit.Application{
			{Gate: def, Op: shrink, Target: 0, Target2: -1, Control: -1},
		}}},
	}

	var buf bytes.Buffer
	logger := log.New(&buf)
	sv, err := NewEngine(Config{Workers: 1}, logger).Run(context.Background(), c)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, sv.Norm(), 1e-12)
	assert.Contains(t, buf.String(), "norm drift")
}

func TestComponents(t *testing.T) {
	c := mustParse(t, `{"steps":[
		{"index":0,"gates":[{"name":"hadamard","target":0}]},
		{"index":1,"gates":[{"name":"ctrl-pauli-x","target":1,"control":0}]}
	]}`, 2)
	sv, err := sequential().Run(context.Background(), c)
	require.NoError(t, err)

	comps := sv.Components(1e-10)
	require.Len(t, comps, 2)
	assert.Equal(t, 0, comps[0].Index)
	assert.Equal(t, 3, comps[1].Index)
	assert.Equal(t, 2, comps[1].Hamming)

	clone := sv.Clone()
	clone.Amplitudes[0] = 0
	assert.NotEqual(t, clone.Amplitudes[0], sv.Amplitudes[0])
}
