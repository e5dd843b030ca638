package acc

import "strconv"

// Gap is the longitudinal distance to the lead vehicle, or the absence of one.
type Gap struct {
	distance float64
	present  bool
}

// LeadAt reports a lead vehicle d metres ahead.
func LeadAt(d float64) Gap {
	return Gap{distance: d, present: true}
}

// NoLead reports that no lead vehicle is detected.
func NoLead() Gap {
	return Gap{}
}

// Distance returns the gap and whether a lead vehicle is present.
func (g Gap) Distance() (float64, bool) {
	return g.distance, g.present
}

// Present reports whether a lead vehicle was detected.
func (g Gap) Present() bool { return g.present }

// Usable reports whether the gap is a positive distance the controller can act on.
func (g Gap) Usable() bool {
	return g.present && g.distance > 0
}

// String formats the gap for traces; an absent lead formats as "".
func (g Gap) String() string {
	if !g.present {
		return ""
	}
	return strconv.FormatFloat(g.distance, 'f', -1, 64)
}

// Observation is what the controller sees each tick.
type Observation struct {
	EgoVelocity  float64
	Lead         Gap
	DesiredSpeed float64
}
