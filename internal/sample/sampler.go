// Package sample turns a dynamical system into a fixed-size trajectory
// matrix: integrate, discard the transient, subsample, and optionally add
// observational noise.
package sample

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/causegen/internal/dynamo"
	"github.com/san-kum/causegen/internal/integrators"
	"github.com/san-kum/causegen/internal/physics"
)

// DefaultMaxStep bounds the internal integration step. The coupled
// system runs on a fast time scale (a1 multiplies the whole Rossler
// subsystem), so a single RK4 step at the sampling dt can go unstable
// even when the sampled orbit is perfectly healthy.
const DefaultMaxStep = 0.01

// Sampler holds the sampling geometry. Npts is the number of retained
// rows, Stride the subsampling interval in units of dt, and Transient
// the number of initial dt steps discarded before any row is kept.
// Each dt step is internally subdivided so no integration step exceeds
// MaxStep; MaxStep <= 0 disables subdivision.
type Sampler struct {
	Integrator dynamo.Integrator
	Npts       int
	Stride     int
	Transient  int
	MaxStep    float64
}

// New returns a sampler with the default RK4 integrator and step bound.
func New(npts, stride, transient int) *Sampler {
	return &Sampler{
		Integrator: integrators.NewRK4(),
		Npts:       npts,
		Stride:     stride,
		Transient:  transient,
		MaxStep:    DefaultMaxStep,
	}
}

func (s *Sampler) validate(dt float64) error {
	if s.Npts <= 0 {
		return &dynamo.ValidationError{Field: "npts", Message: fmt.Sprintf("must be positive, got %d", s.Npts)}
	}
	if s.Stride <= 0 {
		return &dynamo.ValidationError{Field: "stride", Message: fmt.Sprintf("must be positive, got %d", s.Stride)}
	}
	if s.Transient < 0 {
		return &dynamo.ValidationError{Field: "transient", Message: fmt.Sprintf("must be non-negative, got %d", s.Transient)}
	}
	if dt <= 0 {
		return &dynamo.ValidationError{Field: "dt", Message: fmt.Sprintf("must be positive, got %g", dt)}
	}
	return nil
}

// Sample integrates the model over Transient + Npts*Stride steps of the
// model's dt, keeps every Stride-th state after the transient, and
// returns an Npts x 6 matrix. If the model carries a nonzero noise
// level, independent Gaussian noise is added to each column, scaled to
// NoiseLevel/100 of that column's clean standard deviation. rng may be
// nil when no noise is requested; with noise, a nil rng falls back to a
// freshly seeded generator.
func (s *Sampler) Sample(m *physics.RosslerLorenz, rng *rand.Rand) (*mat.Dense, error) {
	p := m.Params()
	traj, err := s.Trajectory(m, m.InitialState(), p.Dt)
	if err != nil {
		return nil, err
	}
	if p.NoiseLevel > 0 {
		if rng == nil {
			rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
		addNoise(traj, p.NoiseLevel, rng)
	}
	return traj, nil
}

// Trajectory runs the clean integration for an arbitrary system. Row i
// holds the state after Transient + (i+1)*Stride steps of dt, so the
// retained rows span Npts*dt*Stride time units beyond the discarded
// transient.
func (s *Sampler) Trajectory(sys dynamo.System, x0 dynamo.State, dt float64) (*mat.Dense, error) {
	if err := s.validate(dt); err != nil {
		return nil, err
	}
	integ := s.Integrator
	if integ == nil {
		integ = integrators.NewRK4()
	}

	nsub := 1
	if s.MaxStep > 0 && dt > s.MaxStep {
		nsub = int(math.Ceil(dt / s.MaxStep))
	}
	h := dt / float64(nsub)

	x := x0.Clone()
	t := 0.0
	step := func() {
		for k := 0; k < nsub; k++ {
			x = integ.Step(sys, x, t, h)
			t += h
		}
	}

	for i := 0; i < s.Transient; i++ {
		step()
		if !x.IsValid() {
			return nil, fmt.Errorf("sample: transient step %d: %w", i, dynamo.ErrInvalidState)
		}
	}

	traj := mat.NewDense(s.Npts, sys.Dim(), nil)
	for i := 0; i < s.Npts; i++ {
		for j := 0; j < s.Stride; j++ {
			step()
		}
		if !x.IsValid() {
			return nil, fmt.Errorf("sample: row %d (t=%.4f): %w", i, t, dynamo.ErrInvalidState)
		}
		traj.SetRow(i, x)
	}

	return traj, nil
}

// addNoise perturbs each column in place. Sigma comes from the clean
// column, computed before any noise is applied.
func addNoise(traj *mat.Dense, level float64, rng *rand.Rand) {
	rows, cols := traj.Dims()
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, traj)
		sigma := (level / 100.0) * stat.StdDev(col, nil)
		if sigma == 0 {
			continue
		}
		for i := range col {
			col[i] += rng.NormFloat64() * sigma
		}
		traj.SetCol(j, col)
	}
}
