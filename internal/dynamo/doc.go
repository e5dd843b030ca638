// Package dynamo provides the numerical primitives the world simulator is
// built from.
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: numerical stepper interface
//
// # Example
//
//	dyn := physics.NewLongitudinal()
//	integ := integrators.NewRK4()
//	x = integ.Step(dyn, x, u, t, dt)
package dynamo
