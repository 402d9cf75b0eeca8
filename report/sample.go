package report

import (
	"math/rand/v2"
	"slices"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"qtermsim/statevector"
)

// ShotCounts maps observed labels to how often they were drawn. Labels that
// were never drawn are absent.
type ShotCounts struct {
	Shots    int
	Ordering Ordering
	Counts   map[string]int
}

// Labels returns the observed labels in lexical order.
func (s *ShotCounts) Labels() []string {
	labels := make([]string, 0, len(s.Counts))
	for l := range s.Counts {
		labels = append(labels, l)
	}
	slices.Sort(labels)
	return labels
}

// MarshalJSON encodes the counts as a flat label to count object.
func (s *ShotCounts) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Counts)
}

// Sampler draws measurement outcomes from a state vector. It is safe for
// concurrent use; draws are serialised on one generator.
type Sampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSampler returns a sampler seeded with seed. A zero seed picks a random one.
func NewSampler(seed uint64) *Sampler {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Sampler{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Sample draws shots independent outcomes over the full register. Each outcome
// is found by binary search of u*total in the cumulative distribution.
func (s *Sampler) Sample(sv *statevector.StateVector, shots int, ord Ordering) (*ShotCounts, error) {
	if shots < 1 {
		return nil, &InvalidShotCountError{Shots: shots}
	}

	cdf := make([]float64, len(sv.Amplitudes))
	total := 0.0
	last := 0 // highest index with non-zero probability
	for i, p := range sv.Probabilities() {
		total += p
		cdf[i] = total
		if p > 0 {
			last = i
		}
	}

	hits := make(map[int]int)
	s.mu.Lock()
	for range shots {
		hits[outcome(cdf, last, s.rng.Float64()*total)]++
	}
	s.mu.Unlock()

	counts := make(map[string]int, len(hits))
	for index, n := range hits {
		counts[ord.Label(index, sv.NumQubits)] = n
	}
	return &ShotCounts{Shots: shots, Ordering: ord, Counts: counts}, nil
}

// outcome returns the basis index whose cumulative interval holds x. A draw
// rounded up to the total lands on last, never past it.
func outcome(cdf []float64, last int, x float64) int {
	return min(sort.Search(len(cdf), func(k int) bool { return cdf[k] > x }), last)
}
