package physics

import (
	"fmt"

	"github.com/san-kum/cruisectl/internal/dynamo"
)

// State layout for the two-vehicle lane.
const (
	EgoPosition = iota
	EgoVelocity
	LeadPosition
	LeadVelocity
)

// Longitudinal models two point-mass vehicles driven by commanded
// accelerations u = [ego, lead]. Drag is a linear velocity damping term, 1/s.
type Longitudinal struct {
	Drag float64
}

func NewLongitudinal() *Longitudinal {
	return &Longitudinal{}
}

func (l *Longitudinal) StateDim() int   { return 4 }
func (l *Longitudinal) ControlDim() int { return 2 }

func (l *Longitudinal) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	var egoA, leadA float64
	if len(u) > 0 {
		egoA = u[0]
	}
	if len(u) > 1 {
		leadA = u[1]
	}

	return dynamo.State{
		x[EgoVelocity],
		egoA - l.Drag*x[EgoVelocity],
		x[LeadVelocity],
		leadA - l.Drag*x[LeadVelocity],
	}
}

func (l *Longitudinal) SetParam(name string, value float64) error {
	switch name {
	case "drag":
		if value < 0 {
			return fmt.Errorf("drag must be non-negative, got %f", value)
		}
		l.Drag = value
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return nil
}
