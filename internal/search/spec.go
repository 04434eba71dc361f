package search

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/causegen/internal/dynamo"
	"github.com/san-kum/causegen/internal/physics"
)

// ParamSpec is one source of a scalar model parameter: a fixed value, a
// probability distribution, or a weighted mixture of distributions. A
// spec is sampled independently on every search attempt.
type ParamSpec interface {
	Sample(rng *rand.Rand) float64
}

// Fixed is a constant parameter.
type Fixed float64

func (f Fixed) Sample(*rand.Rand) float64 { return float64(f) }

// Dist draws from a single distribution. Reproducibility comes from
// constructing the distuv value with NewSource(rng) as its Src.
type Dist struct {
	Rander distuv.Rander
}

func (d Dist) Sample(*rand.Rand) float64 { return d.Rander.Rand() }

// Component pairs a distribution with a sampling weight.
type Component struct {
	Rander distuv.Rander
	Weight float64
}

// Mixture draws a component by weight, then draws from it. Weights need
// not be normalized. An empty mixture has nothing to draw; it yields
// NaN, which no candidate trajectory survives.
type Mixture []Component

func (m Mixture) Sample(rng *rand.Rand) float64 {
	if len(m) == 0 {
		return math.NaN()
	}
	total := 0.0
	for _, c := range m {
		total += c.Weight
	}
	u := rng.Float64() * total
	for _, c := range m {
		u -= c.Weight
		if u <= 0 {
			return c.Rander.Rand()
		}
	}
	return m[len(m)-1].Rander.Rand()
}

// InitSpec is a source of the 6-component initial condition.
type InitSpec interface {
	SampleVector(rng *rand.Rand) ([]float64, error)
}

// Vector passes a fixed initial condition through unchanged. Anything
// but 6 components is a validation error.
type Vector []float64

func (v Vector) SampleVector(*rand.Rand) ([]float64, error) {
	if len(v) != physics.StateDim {
		return nil, &dynamo.ValidationError{
			Field:   "initial condition",
			Message: fmt.Sprintf("need %d components, got %d", physics.StateDim, len(v)),
		}
	}
	return append([]float64(nil), v...), nil
}

// Broadcast repeats one scalar across all 6 components.
type Broadcast float64

func (b Broadcast) SampleVector(*rand.Rand) ([]float64, error) {
	u0 := make([]float64, physics.StateDim)
	for i := range u0 {
		u0[i] = float64(b)
	}
	return u0, nil
}

// FromDist samples each component independently from one distribution.
type FromDist struct {
	Rander distuv.Rander
}

func (d FromDist) SampleVector(*rand.Rand) ([]float64, error) {
	u0 := make([]float64, physics.StateDim)
	for i := range u0 {
		u0[i] = d.Rander.Rand()
	}
	return u0, nil
}

// PerComponent gives each of the 6 components its own ParamSpec.
type PerComponent []ParamSpec

func (p PerComponent) SampleVector(rng *rand.Rand) ([]float64, error) {
	if len(p) != physics.StateDim {
		return nil, &dynamo.ValidationError{
			Field:   "initial condition",
			Message: fmt.Sprintf("need %d component specs, got %d", physics.StateDim, len(p)),
		}
	}
	u0 := make([]float64, physics.StateDim)
	for i, spec := range p {
		u0[i] = spec.Sample(rng)
	}
	return u0, nil
}

// Spec collects one source per model parameter. Zero-value fields are
// not allowed; use DefaultSpec and override.
type Spec struct {
	Init       InitSpec
	Dt         ParamSpec
	Cxy        ParamSpec
	A1, A2, A3 ParamSpec
	B1, B2, B3 ParamSpec
	NoiseLevel ParamSpec
}

// DefaultSpec fixes every parameter at the canonical coupled
// Rossler-Lorenz values.
func DefaultSpec() Spec {
	p := physics.DefaultParams()
	return Spec{
		Init:       Broadcast(p.U0[0]),
		Dt:         Fixed(p.Dt),
		Cxy:        Fixed(p.Cxy),
		A1:         Fixed(p.A1),
		A2:         Fixed(p.A2),
		A3:         Fixed(p.A3),
		B1:         Fixed(p.B1),
		B2:         Fixed(p.B2),
		B3:         Fixed(p.B3),
		NoiseLevel: Fixed(p.NoiseLevel),
	}
}

// draw materializes one concrete parameter record from the spec.
func (s Spec) draw(rng *rand.Rand) (physics.Params, error) {
	u0, err := s.Init.SampleVector(rng)
	if err != nil {
		return physics.Params{}, err
	}
	return physics.Params{
		U0:         u0,
		Dt:         s.Dt.Sample(rng),
		Cxy:        s.Cxy.Sample(rng),
		A1:         s.A1.Sample(rng),
		A2:         s.A2.Sample(rng),
		A3:         s.A3.Sample(rng),
		B1:         s.B1.Sample(rng),
		B2:         s.B2.Sample(rng),
		B3:         s.B3.Sample(rng),
		NoiseLevel: s.NoiseLevel.Sample(rng),
	}, nil
}
