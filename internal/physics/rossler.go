package physics

import "github.com/san-kum/causegen/internal/dynamo"

// Rossler is the standalone 3-D Rossler attractor, used as an uncoupled
// baseline for the driving subsystem.
type Rossler struct{ a, b, c float64 }

func NewRossler() *Rossler { return &Rossler{0.2, 0.2, 5.7} }
func (r *Rossler) Dim() int { return 3 }

func (r *Rossler) Derive(s dynamo.State, _ float64) dynamo.State {
	return dynamo.State{-s[1] - s[2], s[0] + r.a*s[1], r.b + s[2]*(s[0]-r.c)}
}

func (r *Rossler) InitialState() dynamo.State { return dynamo.State{1.0, 1.0, 1.0} }
func (r *Rossler) GetParams() map[string]float64 {
	return map[string]float64{"a": r.a, "b": r.b, "c": r.c}
}
