package integrators

import "github.com/san-kum/cruisectl/internal/dynamo"

// Euler is the explicit first-order stepper. Position lags velocity by one
// step, which is how fixed-tick vehicle simulators usually advance.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (*Euler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64, dt float64) dynamo.State {
	return axpy(make(dynamo.State, len(x)), x, dt, dyn.Derive(x, u, t))
}

// axpy sets dst = x + h*k and returns dst.
func axpy(dst, x dynamo.State, h float64, k dynamo.State) dynamo.State {
	for i := range dst {
		dst[i] = x[i] + h*k[i]
	}
	return dst
}
