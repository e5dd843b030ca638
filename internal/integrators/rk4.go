package integrators

import "github.com/san-kum/cruisectl/internal/dynamo"

// RK4 is the classic fourth-order stepper. It is exact for the piecewise
// constant accelerations a world applies within one tick. Stage buffers are
// reused, so an RK4 belongs to one world.
type RK4 struct {
	k   [4]dynamo.State
	tmp dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) grow(n int) {
	if len(r.tmp) == n {
		return
	}
	for i := range r.k {
		r.k[i] = make(dynamo.State, n)
	}
	r.tmp = make(dynamo.State, n)
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64, dt float64) dynamo.State {
	r.grow(len(x))
	half := dt / 2

	copy(r.k[0], dyn.Derive(x, u, t))
	copy(r.k[1], dyn.Derive(axpy(r.tmp, x, half, r.k[0]), u, t+half))
	copy(r.k[2], dyn.Derive(axpy(r.tmp, x, half, r.k[1]), u, t+half))
	copy(r.k[3], dyn.Derive(axpy(r.tmp, x, dt, r.k[2]), u, t+dt))

	next := make(dynamo.State, len(x))
	for i := range next {
		next[i] = x[i] + dt/6*(r.k[0][i]+2*r.k[1][i]+2*r.k[2][i]+r.k[3][i])
	}
	return next
}
