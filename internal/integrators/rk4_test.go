package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/cruisectl/internal/dynamo"
)

// constantAccel is a single vehicle: x = [position, velocity], u = [acceleration].
type constantAccel struct{}

func (c *constantAccel) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], u[0]}
}

func (c *constantAccel) StateDim() int   { return 2 }
func (c *constantAccel) ControlDim() int { return 1 }

type oscillator struct{}

func (o *oscillator) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (o *oscillator) StateDim() int   { return 2 }
func (o *oscillator) ControlDim() int { return 0 }

func TestRK4Accuracy(t *testing.T) {
	dyn := &oscillator{}
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, dynamo.Control{}, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestRK4ExactForConstantAcceleration(t *testing.T) {
	integ := NewRK4()
	x := integ.Step(&constantAccel{}, dynamo.State{0, 10}, dynamo.Control{2}, 0, 0.5)

	// s = v*t + a*t^2/2
	if math.Abs(x[0]-5.25) > 1e-12 {
		t.Errorf("expected position 5.25, got %f", x[0])
	}
	if math.Abs(x[1]-11) > 1e-12 {
		t.Errorf("expected velocity 11, got %f", x[1])
	}
}

func TestEulerConstantAcceleration(t *testing.T) {
	integ := NewEuler()
	x := integ.Step(&constantAccel{}, dynamo.State{0, 10}, dynamo.Control{2}, 0, 0.5)

	if math.Abs(x[0]-5.0) > 1e-12 {
		t.Errorf("expected position 5.0, got %f", x[0])
	}
	if math.Abs(x[1]-11) > 1e-12 {
		t.Errorf("expected velocity 11, got %f", x[1])
	}
}
