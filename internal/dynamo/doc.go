// Package dynamo provides core simulation primitives for continuous-time
// dynamical systems.
//
// The package defines the fundamental interfaces and types shared by the
// rest of the module:
//
//   - [State]: vector representing system state
//   - [System]: interface for autonomous ODE systems (dX/dt = f(X, t))
//   - [Integrator]: numerical stepper interface
//   - [ValidationError]: malformed model or sampling input
//
// # Example
//
//	model, _ := physics.NewRosslerLorenz(physics.DefaultParams())
//	integ := integrators.NewRK4()
//	x := model.InitialState()
//	x = integ.Step(model, x, 0, 0.05)
//
// # Thread Safety
//
// Systems are immutable and safe to share. Integrators keep scratch
// buffers and are NOT safe for concurrent use; give each goroutine its
// own.
package dynamo
