// Package search draws candidate Rossler-Lorenz parameterizations from
// fixed or uncertain sources, probes each with a short trajectory, and
// returns the first numerically well-behaved model. Exhausting the retry
// bound is a normal outcome, not an error.
package search

import (
	"context"
	"math/rand/v2"

	"github.com/san-kum/causegen/internal/dynamo"
	"github.com/san-kum/causegen/internal/physics"
	"github.com/san-kum/causegen/internal/quality"
	"github.com/san-kum/causegen/internal/sample"
)

// Probe geometry for candidate screening.
const (
	probePoints = 1000
	probeStride = 1
)

// DefaultTransient is the burn-in, in integration steps, discarded
// before the probe trajectory is judged.
const DefaultTransient = 1000

// Searcher runs the bounded accept/reject loop. MaxTries is the number
// of retries after the first attempt, so MaxTries=0 still performs
// exactly one attempt.
type Searcher struct {
	MaxTries   int
	Transient  int
	Check      quality.Check
	Integrator dynamo.Integrator
}

func NewSearcher(maxTries int) *Searcher {
	return &Searcher{
		MaxTries:  maxTries,
		Transient: DefaultTransient,
		Check:     quality.DefaultCheck(),
	}
}

// Result is the outcome of a search. Found=false means no attempt
// produced a healthy trajectory; Model is nil in that case.
type Result struct {
	Found    bool
	Model    *physics.RosslerLorenz
	Attempts int
}

// Search repeatedly draws parameters, simulates a noise-free probe
// trajectory, and screens it. The first accepted candidate is rebuilt
// with the originally requested noise level and returned. Errors are
// reserved for malformed specs and context cancellation; a rejected
// draw just consumes an attempt.
func (s *Searcher) Search(ctx context.Context, spec Spec, rng *rand.Rand) (Result, error) {
	sampler := sample.New(probePoints, probeStride, s.Transient)
	if s.Integrator != nil {
		sampler.Integrator = s.Integrator
	}

	attempts := 0
	for attempt := 0; attempt <= s.MaxTries; attempt++ {
		select {
		case <-ctx.Done():
			return Result{Attempts: attempts}, ctx.Err()
		default:
		}

		p, err := spec.draw(rng)
		if err != nil {
			return Result{Attempts: attempts}, err
		}
		attempts++

		noise := p.NoiseLevel
		p.NoiseLevel = 0
		candidate, err := physics.NewRosslerLorenz(p)
		if err != nil {
			return Result{Attempts: attempts}, err
		}

		traj, err := sampler.Sample(candidate, rng)
		if err != nil {
			// Divergence mid-integration; count it as a rejection.
			continue
		}
		if !s.Check.Accept(traj) {
			continue
		}

		return Result{
			Found:    true,
			Model:    candidate.WithNoiseLevel(noise),
			Attempts: attempts,
		}, nil
	}

	return Result{Attempts: attempts}, nil
}
