package report

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qtermsim/circuit"
	"qtermsim/statevector"
)

func run(t *testing.T, src string, n int) *statevector.StateVector {
	t.Helper()
	c, err := circuit.Parse([]byte(src), n)
	require.NoError(t, err)
	sv, err := statevector.NewEngine(statevector.Config{Workers: 1}, nil).Run(context.Background(), c)
	require.NoError(t, err)
	return sv
}

const bell = `{"steps":[
	{"index":0,"gates":[{"name":"hadamard","target":0}]},
	{"index":1,"gates":[{"name":"ctrl-pauli-x","target":1,"control":0}]}
]}`

// Qubits 0 and 1 set, qubit 2 rotated by ry.
const skewed = `{"steps":[
	{"index":0,"gates":[{"name":"pauli-x","target":0},{"name":"pauli-x","target":1},{"name":"ry-theta","target":2,"theta":1.2}]}
]}`

func TestParseOrdering(t *testing.T) {
	for token, want := range map[string]Ordering{"": LittleEndian, "littleendian": LittleEndian, "bigendian": BigEndian} {
		got, err := ParseOrdering(token)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseOrdering("middle")
	var unknown *UnknownOrderingError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "middle", unknown.Token)
}

func TestLabels(t *testing.T) {
	// Index 0b001 sets qubit 0 only.
	assert.Equal(t, "001", LittleEndian.Label(0b001, 3))
	assert.Equal(t, "100", BigEndian.Label(0b001, 3))
	assert.Equal(t, "110", LittleEndian.Label(0b110, 3))
	assert.Equal(t, "011", BigEndian.Label(0b110, 3))

	for _, ord := range []Ordering{LittleEndian, BigEndian} {
		for i := range 8 {
			back, err := ord.Index(ord.Label(i, 3))
			require.NoError(t, err)
			assert.Equal(t, i, back)
		}
	}
	_, err := LittleEndian.Index("01x")
	assert.Error(t, err)
}

func TestListsAreInLabelOrder(t *testing.T) {
	sv := run(t, skewed, 3)
	for _, ord := range []Ordering{LittleEndian, BigEndian} {
		list := Probabilities(sv, ord)
		require.Len(t, list, 8)
		for pos, p := range list {
			assert.Equal(t, LittleEndian.Label(pos, 3), p.Label, "%s position %d", ord, pos)
		}
	}
}

func TestOrderingRoundTrip(t *testing.T) {
	sv := run(t, skewed, 3)
	little := Amplitudes(sv, LittleEndian)
	big := Amplitudes(sv, BigEndian)

	relabelled := make(map[string]complex128, len(big))
	for _, a := range big {
		index, err := BigEndian.Index(a.Label)
		require.NoError(t, err)
		relabelled[LittleEndian.Label(index, 3)] = a.Value
	}
	for _, a := range little {
		assert.Equal(t, a.Value, relabelled[a.Label], a.Label)
	}

	// Only q0 and q1 are set, with q2 in superposition.
	assert.InDelta(t, 0, Probabilities(sv, BigEndian)[0b011].Value, 1e-12)
	assert.Greater(t, Probabilities(sv, BigEndian)[0b110].Value, 0.5)
	assert.Greater(t, Probabilities(sv, LittleEndian)[0b011].Value, 0.5)
}

func TestProbabilitiesSumToOne(t *testing.T) {
	for _, src := range []string{bell, skewed} {
		sv := run(t, src, 3)
		list := Probabilities(sv, LittleEndian)
		assert.InDelta(t, 1, list.Sum(), 1e-9)

		amps := Amplitudes(sv, LittleEndian)
		for i, a := range amps {
			p := real(a.Value)*real(a.Value) + imag(a.Value)*imag(a.Value)
			assert.InDelta(t, list[i].Value, p, 1e-12)
		}
	}
}

func TestCutoff(t *testing.T) {
	sv := run(t, bell, 2)
	amps := Amplitudes(sv, LittleEndian, WithCutoff(1e-10))
	require.Len(t, amps, 2)
	assert.Equal(t, "00", amps[0].Label)
	assert.Equal(t, "11", amps[1].Label)
	assert.InDelta(t, 1/math.Sqrt2, real(amps[1].Value), 1e-12)

	assert.Len(t, Probabilities(sv, BigEndian, WithCutoff(1e-10)), 2)
}

func TestSampleBell(t *testing.T) {
	sv := run(t, bell, 2)
	counts, err := NewSampler(42).Sample(sv, 1024, LittleEndian)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"00", "11"}, counts.Labels())
	assert.Equal(t, 1024, counts.Counts["00"]+counts.Counts["11"])
	assert.InDelta(t, 512, counts.Counts["00"], 100)
}

func TestSampleConverges(t *testing.T) {
	sv := run(t, skewed, 3)
	const shots = 100000
	counts, err := NewSampler(7).Sample(sv, shots, BigEndian)
	require.NoError(t, err)

	total := 0
	for _, p := range Probabilities(sv, BigEndian) {
		n := counts.Counts[p.Label]
		total += n
		// Five standard deviations of a binomial draw.
		sigma := math.Sqrt(shots * p.Value * (1 - p.Value))
		assert.InDelta(t, shots*p.Value, float64(n), 5*sigma+1, p.Label)
	}
	assert.Equal(t, shots, total)
}

func TestSampleIsReproducibleWithSeed(t *testing.T) {
	sv := run(t, skewed, 3)
	a, err := NewSampler(99).Sample(sv, 500, LittleEndian)
	require.NoError(t, err)
	b, err := NewSampler(99).Sample(sv, 500, LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, a.Counts, b.Counts)
}

func TestOutcomeAtTotalSkipsTrailingZeros(t *testing.T) {
	cdf := []float64{0.5, 1, 1, 1}
	assert.Equal(t, 0, outcome(cdf, 1, 0))
	assert.Equal(t, 1, outcome(cdf, 1, 0.5))
	assert.Equal(t, 1, outcome(cdf, 1, 0.999999))
	assert.Equal(t, 1, outcome(cdf, 1, 1))

	sv := run(t, `{"steps":[{"index":0,"gates":[{"name":"hadamard","target":0}]}]}`, 2)
	counts, err := NewSampler(5).Sample(sv, 2000, LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, 2000, counts.Counts["00"]+counts.Counts["01"])
	assert.Zero(t, counts.Counts["11"])
}

func TestInvalidShots(t *testing.T) {
	sv := run(t, bell, 2)
	for _, shots := range []int{0, -3} {
		_, err := NewSampler(1).Sample(sv, shots, LittleEndian)
		var invalid *InvalidShotCountError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, shots, invalid.Shots)
	}
}

func TestJSONShapes(t *testing.T) {
	sv := run(t, bell, 2)

	data, err := json.Marshal(Amplitudes(sv, LittleEndian, WithCutoff(1e-10)))
	require.NoError(t, err)
	var amps []map[string]any
	require.NoError(t, json.Unmarshal(data, &amps))
	require.Len(t, amps, 2)
	assert.Equal(t, "00", amps[0]["label"])
	assert.InDelta(t, 1/math.Sqrt2, amps[0]["re"], 1e-12)
	assert.Contains(t, amps[0], "im")

	var back AmplitudeList
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "11", back[1].Label)

	flipped := run(t, `{"steps":[{"index":0,"gates":[{"name":"pauli-x","target":1}]}]}`, 2)
	data, err = json.Marshal(Probabilities(flipped, BigEndian))
	require.NoError(t, err)
	assert.Contains(t, string(data), `{"label":"01","probability":1}`)

	counts := &ShotCounts{Shots: 3, Counts: map[string]int{"00": 2, "11": 1}}
	data, err = json.Marshal(counts)
	require.NoError(t, err)
	assert.JSONEq(t, `{"00":2,"11":1}`, string(data))
}

func TestTextFormats(t *testing.T) {
	sv := run(t, `{"steps":[{"index":0,"gates":[{"name":"pauli-x","target":0}]}]}`, 1)
	assert.Equal(t, "[0+0i, 1+0i]", Amplitudes(sv, LittleEndian).Text())
	assert.Equal(t, "[0, 1]", Probabilities(sv, LittleEndian).Text())

	sv = run(t, `{"steps":[{"index":0,"gates":[{"name":"ry-theta","target":0,"theta":1}]}]}`, 1)
	assert.Regexp(t, `^\[\d\.\d+e-01, \d\.\d+e-01\]$`, Probabilities(sv, LittleEndian).Text())

	counts := &ShotCounts{Shots: 3, Counts: map[string]int{"11": 1, "00": 2}}
	assert.Equal(t, `{"00": 2, "11": 1}`, counts.Text())
}

func TestTables(t *testing.T) {
	sv := run(t, bell, 2)
	out := Probabilities(sv, LittleEndian).Table()
	assert.Contains(t, out, "|00⟩")
	assert.Contains(t, out, "0.500000")

	out = Amplitudes(sv, LittleEndian, WithCutoff(1e-10)).Table()
	assert.Contains(t, out, "|11⟩")
	assert.NotContains(t, out, "|01⟩")

	counts := &ShotCounts{Shots: 4, Counts: map[string]int{"00": 3, "11": 1}}
	assert.Contains(t, counts.Table(), "0.7500")
}
