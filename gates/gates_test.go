package gates

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestLookupUnknownGate(t *testing.T) {
	_, err := Lookup("toffoli")
	var unknown *UnknownGateError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "toffoli", unknown.Name)
}

func TestCatalogueShapes(t *testing.T) {
	tests := []struct {
		name       string
		targets    int
		controlled bool
	}{
		{"hadamard", 1, false},
		{"pauli-x", 1, false},
		{"ctrl-pauli-x", 1, true},
		{"swap", 2, false},
		{"ctrl-swap", 2, true},
		{"ctrl-u3", 1, true},
		{"measure-z", 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := Lookup(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.targets, def.Targets)
			assert.Equal(t, tt.controlled, def.Controlled)
		})
	}

	_, err := Lookup("ctrl-measure-z")
	assert.Error(t, err, "measurement has no controlled form")
}

func TestEveryGateIsUnitary(t *testing.T) {
	params := Params{Phi: ptr(0.3), Theta: ptr(1.1), Lambda: ptr(-0.7), Root: ptr("1/2^2")}
	for _, def := range Definitions() {
		op, err := def.Resolve(params)
		require.NoError(t, err, def.Name)
		switch op := op.(type) {
		case Single:
			assert.True(t, op.Matrix.IsUnitary(1e-12), def.Name)
		case Double:
			assert.True(t, op.Matrix.IsUnitary(1e-12), def.Name)
		case Marker:
			assert.Equal(t, Measure, def.Name)
		default:
			t.Fatalf("%s: unexpected op %T", def.Name, op)
		}
	}
}

func TestHadamardMapsBasisStates(t *testing.T) {
	def, err := Lookup("hadamard")
	require.NoError(t, err)
	op, err := def.Resolve(Params{})
	require.NoError(t, err)
	m := op.(Single).Matrix

	s := 1 / math.Sqrt2
	assert.InDelta(t, s, real(m[0][0]), 1e-15)
	assert.InDelta(t, s, real(m[1][0]), 1e-15)
	assert.InDelta(t, s, real(m[0][1]), 1e-15)
	assert.InDelta(t, -s, real(m[1][1]), 1e-15)
	assert.Equal(t, Dense, op.(Single).Shape)
}

func TestShapeClassification(t *testing.T) {
	for name, want := range map[string]Shape{
		"pauli-x":  AntiDiagonal,
		"pauli-y":  AntiDiagonal,
		"pauli-z":  Diagonal,
		"t":        Diagonal,
		"identity": Diagonal,
		"sqrt-not": Dense,
	} {
		def, err := Lookup(name)
		require.NoError(t, err)
		op, err := def.Resolve(Params{})
		require.NoError(t, err)
		assert.Equal(t, want, op.(Single).Shape, name)
	}
}

func TestMissingParameter(t *testing.T) {
	def, err := Lookup("u3")
	require.NoError(t, err)
	_, err = def.Resolve(Params{Theta: ptr(1.0), Phi: ptr(0.0)})

	var perr *ParamError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, Lambda, perr.Param)
}

func TestU3MatchesReference(t *testing.T) {
	m := u3(pi/2, -pi/2, pi/2)
	s := 1 / math.Sqrt2
	assert.InDelta(t, s, real(m[0][0]), 1e-12)
	assert.InDelta(t, -s, imag(m[0][1]), 1e-12)
	assert.InDelta(t, -s, imag(m[1][0]), 1e-12)
	assert.InDelta(t, s, real(m[1][1]), 1e-12)
}

func TestParseRoot(t *testing.T) {
	for in, want := range map[string]float64{
		"1":     2,
		"2^3":   8,
		"1/2^2": 4,
		"0":     1,
	} {
		got, err := ParseRoot(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseRoot("1/x")
	assert.Error(t, err)

	def, _ := Lookup("pauli-x-root")
	_, err = def.Resolve(Params{Root: ptr("abc")})
	var perr *ParamError
	assert.True(t, errors.As(err, &perr))
}

func TestDaggerGatesInvert(t *testing.T) {
	for _, pair := range [][2]string{{"t", "t-dagger"}, {"s", "s-dagger"}} {
		a, _ := Lookup(pair[0])
		b, _ := Lookup(pair[1])
		opA, _ := a.Resolve(Params{})
		opB, _ := b.Resolve(Params{})
		p := opA.(Single).Matrix.Mul(opB.(Single).Matrix)
		assert.True(t, p.IsUnitary(1e-12))
		assert.InDelta(t, 1, real(p[1][1]), 1e-12, pair[0])
		assert.InDelta(t, 0, imag(p[1][1]), 1e-12, pair[0])
	}
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	require.NotEmpty(t, names)
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "ctrl-pauli-x")
}
