package dynamo

import (
	"fmt"
	"math"
)

// State is the integrated vector. Its layout is defined by the System.
type State []float64

func (s State) Clone() State {
	return append(State(nil), s...)
}

// Finite reports whether every component is a real number.
func (s State) Finite() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Control is held constant across one integration step.
type Control []float64

type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

// Check verifies x and u against the system before integrating.
func Check(sys System, x State, u Control) error {
	if len(x) != sys.StateDim() {
		return fmt.Errorf("%w: state has %d components, want %d", ErrDimensionMismatch, len(x), sys.StateDim())
	}
	if len(u) != sys.ControlDim() {
		return fmt.Errorf("%w: control has %d components, want %d", ErrDimensionMismatch, len(u), sys.ControlDim())
	}
	if !x.Finite() {
		return ErrInvalidState
	}
	return nil
}
