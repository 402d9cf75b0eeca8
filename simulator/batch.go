package simulator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"qtermsim/report"
)

// Kind selects which report a request produces.
type Kind int

const (
	KindSample Kind = iota
	KindStatevector
	KindProbabilities
)

func (k Kind) String() string {
	switch k {
	case KindSample:
		return "sample"
	case KindStatevector:
		return "statevector"
	case KindProbabilities:
		return "probabilities"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a command name onto a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{KindSample, KindStatevector, KindProbabilities} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown result kind %q", s)
}

// Result holds the outcome of one batch request. Only the field matching the
// batch kind is set.
type Result struct {
	Counts        *report.ShotCounts
	Amplitudes    report.AmplitudeList
	Probabilities report.ProbabilityList
}

// Batch runs independent requests on a pool bounded by the worker count.
// Every request owns its state vector. The first failure cancels the requests
// still running and is returned with its position.
func (s *Simulator) Batch(ctx context.Context, kind Kind, reqs []Request) ([]Result, error) {
	results := make([]Result, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.engine.Config().Workers, 1))

	for i, req := range reqs {
		g.Go(func() error {
			var err error
			switch kind {
			case KindSample:
				results[i].Counts, err = s.Simulate(gctx, req)
			case KindStatevector:
				results[i].Amplitudes, err = s.Statevector(gctx, req)
			case KindProbabilities:
				results[i].Probabilities, err = s.Probabilities(gctx, req)
			default:
				err = fmt.Errorf("unknown result kind %d", int(kind))
			}
			if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
