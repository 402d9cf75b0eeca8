package statevector

import (
	"math"
	"math/bits"
	"math/cmplx"
)

// StateVector holds the 2^n amplitudes of an n-qubit register. Bit q of an
// amplitude's index is the value of qubit q.
type StateVector struct {
	Amplitudes []complex128
	NumQubits  int
}

func newStateVector(numQubits int) *StateVector {
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}
}

// Clone returns an independent copy.
func (s *StateVector) Clone() *StateVector {
	amps := make([]complex128, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return &StateVector{Amplitudes: amps, NumQubits: s.NumQubits}
}

// Norm returns the total probability, sum of |a|^2.
func (s *StateVector) Norm() float64 {
	total := 0.0
	for _, a := range s.Amplitudes {
		total += prob(a)
	}
	return total
}

// Probabilities returns |a|^2 for every basis state in index order.
func (s *StateVector) Probabilities() []float64 {
	probs := make([]float64, len(s.Amplitudes))
	for i, a := range s.Amplitudes {
		probs[i] = prob(a)
	}
	return probs
}

func prob(a complex128) float64 {
	return real(a)*real(a) + imag(a)*imag(a)
}

// QubitProbability is the marginal distribution of one qubit.
type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

// QubitProbabilities returns the per-qubit marginals, indexed by qubit.
func (s *StateVector) QubitProbabilities() []QubitProbability {
	probs := make([]QubitProbability, s.NumQubits)
	for i, a := range s.Amplitudes {
		p := prob(a)
		for q := range s.NumQubits {
			if i&(1<<q) != 0 {
				probs[q].Prob1 += p
			} else {
				probs[q].Prob0 += p
			}
		}
	}
	return probs
}

// Component describes one basis state with non-negligible weight.
type Component struct {
	Index     int
	Amplitude complex128
	Prob      float64
	Phase     float64 // radians, in (-pi, pi]
	Hamming   int     // number of qubits in |1>
}

// Components lists the basis states whose probability exceeds eps, in index order.
func (s *StateVector) Components(eps float64) []Component {
	out := make([]Component, 0)
	for i, a := range s.Amplitudes {
		p := prob(a)
		if p <= eps {
			continue
		}
		out = append(out, Component{
			Index:     i,
			Amplitude: a,
			Prob:      p,
			Phase:     cmplx.Phase(a),
			Hamming:   bits.OnesCount(uint(i)),
		})
	}
	return out
}

// normDrift is the relative distance of the norm from 1.
func normDrift(norm float64) float64 {
	return math.Abs(norm - 1)
}
