// Package report derives the observable views of a finished state vector:
// sampled shot counts, labelled amplitudes and labelled probabilities.
package report

import (
	"qtermsim/statevector"
)

// Amplitude is one basis state and its complex amplitude.
type Amplitude struct {
	Label string
	Index int
	Value complex128
}

// AmplitudeList is a state vector listed in ordering order.
type AmplitudeList []Amplitude

// Probability is one basis state and its measurement probability.
type Probability struct {
	Label string
	Index int
	Value float64
}

// ProbabilityList is a probability distribution listed in ordering order.
type ProbabilityList []Probability

// Sum returns the total probability.
func (l ProbabilityList) Sum() float64 {
	total := 0.0
	for _, p := range l {
		total += p.Value
	}
	return total
}

type listOptions struct {
	cutoff float64
}

// ListOption tunes Amplitudes and Probabilities.
type ListOption func(*listOptions)

// WithCutoff drops basis states whose probability is below eps.
func WithCutoff(eps float64) ListOption {
	return func(o *listOptions) { o.cutoff = eps }
}

func applyOptions(opts []ListOption) listOptions {
	var o listOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Amplitudes lists every basis state of sv with its amplitude.
func Amplitudes(sv *statevector.StateVector, ord Ordering, opts ...ListOption) AmplitudeList {
	o := applyOptions(opts)
	n := sv.NumQubits
	out := make(AmplitudeList, 0, len(sv.Amplitudes))
	for pos := range sv.Amplitudes {
		index := ord.IndexAt(pos, n)
		a := sv.Amplitudes[index]
		if o.cutoff > 0 && real(a)*real(a)+imag(a)*imag(a) < o.cutoff {
			continue
		}
		out = append(out, Amplitude{Label: ord.Label(index, n), Index: index, Value: a})
	}
	return out
}

// Probabilities lists every basis state of sv with |amplitude|^2.
func Probabilities(sv *statevector.StateVector, ord Ordering, opts ...ListOption) ProbabilityList {
	o := applyOptions(opts)
	n := sv.NumQubits
	probs := sv.Probabilities()
	out := make(ProbabilityList, 0, len(probs))
	for pos := range probs {
		index := ord.IndexAt(pos, n)
		if o.cutoff > 0 && probs[index] < o.cutoff {
			continue
		}
		out = append(out, Probability{Label: ord.Label(index, n), Index: index, Value: probs[index]})
	}
	return out
}
