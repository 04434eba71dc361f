// Package physics defines the synthetic dynamical systems used as
// benchmark generators for causal-inference estimators.
//
// The central system is [RosslerLorenz], a 6-dimensional unidirectionally
// coupled pair: a Rossler subsystem driving a Lorenz subsystem through a
// single quadratic coupling term. Because the coupling only runs one way,
// trajectories of the pair carry a known ground-truth causal direction,
// which is what makes them useful for testing transfer-entropy
// estimators.
//
// The standalone [Rossler] and [Lorenz] systems are the uncoupled
// subsystems, handy as negative controls.
package physics
