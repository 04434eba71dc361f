package physics

import (
	"fmt"

	"github.com/san-kum/causegen/internal/dynamo"
)

// StateDim is the dimension of the coupled Rossler-Lorenz state
// (x1, x2, x3, y1, y2, y3).
const StateDim = 6

// Params holds the full parameterization of a coupled Rossler-Lorenz
// model. A1-A3 are the Rossler constants (A1 doubles as the subsystem
// time-scale factor), B1-B3 the Lorenz constants, Cxy the strength of the
// one-way x2^2 coupling into dy2, and NoiseLevel the observational noise
// as a percentage of each variable's empirical standard deviation.
//
// Params is treated as immutable once a model is built from it; build a
// new model to change anything.
type Params struct {
	U0         []float64
	Dt         float64
	Cxy        float64
	A1, A2, A3 float64
	B1, B2, B3 float64
	NoiseLevel float64
}

func DefaultParams() Params {
	return Params{
		U0:  []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1},
		Dt:  0.05,
		Cxy: 1.0,
		A1:  6.0,
		A2:  0.2,
		A3:  5.7,
		B1:  10.0,
		B2:  28.0,
		B3:  8.0 / 3.0,
	}
}

// RosslerLorenz is the unidirectionally coupled system
//
//	dx1 = -a1*(x2 + x3)
//	dx2 =  a1*(x1 + a2*x2)
//	dx3 =  a1*(a2 + x3*(x1 - a3))
//	dy1 =  b1*(y2 - y1)
//	dy2 =  b2*y1 - y2 - y1*y3 + c_xy*x2^2
//	dy3 =  y1*y2 - b3*y3
//
// The Rossler subsystem drives the Lorenz subsystem; nothing flows back.
type RosslerLorenz struct {
	params Params
}

// NewRosslerLorenz validates p and builds a model. The initial condition
// must have exactly StateDim components.
func NewRosslerLorenz(p Params) (*RosslerLorenz, error) {
	if len(p.U0) != StateDim {
		return nil, &dynamo.ValidationError{
			Field:   "initial condition",
			Message: fmt.Sprintf("need %d components, got %d", StateDim, len(p.U0)),
		}
	}
	// Detach from the caller's slice so the record stays immutable.
	p.U0 = append([]float64(nil), p.U0...)
	return &RosslerLorenz{params: p}, nil
}

func (m *RosslerLorenz) Dim() int { return StateDim }

// Derive computes the coupled vector field. Autonomous and pure.
func (m *RosslerLorenz) Derive(s dynamo.State, _ float64) dynamo.State {
	p := &m.params
	return dynamo.State{
		-p.A1 * (s[1] + s[2]),
		p.A1 * (s[0] + p.A2*s[1]),
		p.A1 * (p.A2 + s[2]*(s[0]-p.A3)),
		p.B1 * (s[4] - s[3]),
		p.B2*s[3] - s[4] - s[3]*s[5] + p.Cxy*s[1]*s[1],
		s[3]*s[4] - p.B3*s[5],
	}
}

// Params returns a copy of the model's parameter record.
func (m *RosslerLorenz) Params() Params {
	p := m.params
	p.U0 = append([]float64(nil), p.U0...)
	return p
}

func (m *RosslerLorenz) InitialState() dynamo.State {
	return dynamo.State(m.params.U0).Clone()
}

// WithNoiseLevel returns a new model identical to m except for the
// observational noise level.
func (m *RosslerLorenz) WithNoiseLevel(level float64) *RosslerLorenz {
	p := m.Params()
	p.NoiseLevel = level
	return &RosslerLorenz{params: p}
}

func (m *RosslerLorenz) GetParams() map[string]float64 {
	p := &m.params
	return map[string]float64{
		"c_xy": p.Cxy,
		"a1":   p.A1, "a2": p.A2, "a3": p.A3,
		"b1": p.B1, "b2": p.B2, "b3": p.B3,
		"dt": p.Dt, "noise": p.NoiseLevel,
	}
}
