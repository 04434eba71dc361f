package integrators

import (
	"testing"

	"github.com/san-kum/causegen/internal/dynamo"
	"github.com/san-kum/causegen/internal/physics"
)

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler()
	dyn := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	dyn := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkRK45(b *testing.B) {
	integrator := NewRK45()
	dyn := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkRK4_CoupledSystem(b *testing.B) {
	integrator := NewRK4()
	model, err := physics.NewRosslerLorenz(physics.DefaultParams())
	if err != nil {
		b.Fatal(err)
	}
	x := model.InitialState()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(model, x, 0, 0.005)
	}
}
