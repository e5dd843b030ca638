package acc

import "github.com/samber/lo"

// Decision is one tick of controller output together with how it was reached.
type Decision struct {
	Acceleration     float64
	Zone             Zone
	CriticalDistance float64
	SafeDistance     float64
	SpeedError       float64
	ClosingRate      float64

	Boosted   bool // catch-up boost applied
	Capped    bool // limited to reach target speed in one tick
	Overshoot bool // over target by more than the tolerance
	Stalled   bool // braking suppressed near standstill
}

type Controller struct {
	targetSpeed       float64
	distanceThreshold float64
	tuning            Tuning

	prevSpeedError float64
	prevGap        Gap
}

// New returns a controller with the default tuning.
func New(targetSpeed, distanceThreshold float64) *Controller {
	return &Controller{
		targetSpeed:       targetSpeed,
		distanceThreshold: distanceThreshold,
		tuning:            DefaultTuning(),
	}
}

// NewWithTuning returns a controller with an injected tuning.
func NewWithTuning(targetSpeed, distanceThreshold float64, t Tuning) (*Controller, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Controller{
		targetSpeed:       targetSpeed,
		distanceThreshold: distanceThreshold,
		tuning:            t,
	}, nil
}

func (c *Controller) TargetSpeed() float64       { return c.targetSpeed }
func (c *Controller) DistanceThreshold() float64 { return c.distanceThreshold }
func (c *Controller) Tuning() Tuning             { return c.tuning }

// Step returns the acceleration command for one tick.
func (c *Controller) Step(obs Observation) float64 {
	return c.Decide(obs).Acceleration
}

// Decide runs the decision function and reports the branch taken. It must be
// called once per tick in tick order.
func (c *Controller) Decide(obs Observation) Decision {
	t := c.tuning
	ego := obs.EgoVelocity

	if !obs.Lead.Usable() {
		return Decision{Acceleration: t.MaxDeceleration, Zone: ZoneNoLead}
	}
	gap, _ := obs.Lead.Distance()

	critical, safe := Boundaries(ego, t)
	d := Decision{
		Zone:             Classify(obs.Lead, critical, safe),
		CriticalDistance: critical,
		SafeDistance:     safe,
	}

	speedError := c.targetSpeed - ego
	speedErrorDerivative := speedError - c.prevSpeedError
	c.prevSpeedError = speedError
	d.SpeedError = speedError

	if prev, ok := c.prevGap.Distance(); ok {
		d.ClosingRate = prev - gap
	}
	c.prevGap = obs.Lead

	var a float64
	switch d.Zone {
	case ZoneCritical:
		a = t.MaxDeceleration
	case ZoneCaution:
		factor := 1.0
		if span := safe - critical; span > 0 {
			factor = (gap - critical) / span
		}
		a = t.MaxDeceleration*(1-factor) + t.ClosingRateGain*d.ClosingRate
	case ZoneClear:
		a = c.track(ego, gap, safe, speedError, speedErrorDerivative, &d)
	}

	a = lo.Clamp(a, t.MaxDeceleration, t.MaxAcceleration)

	if ego < t.MinVelocity && a < 0 {
		a = 0
		d.Stalled = true
	}

	d.Acceleration = a
	return d
}

// track is the clear-zone speed regulator: PD, then catch-up boost, then the
// one-tick overshoot cap. The hard limits are applied by the caller.
func (c *Controller) track(ego, gap, safe, speedError, speedErrorDerivative float64, d *Decision) float64 {
	t := c.tuning

	if ego >= c.targetSpeed {
		if ego > c.targetSpeed+t.OvershootTolerance {
			d.Overshoot = true
			return t.MaxDeceleration
		}
		return 0
	}

	a := t.Kp*speedError + t.Kd*speedErrorDerivative

	if gap > safe*t.CatchUpRatio && ego+a < c.targetSpeed {
		a += t.CatchUpBoost
		d.Boosted = true
	}

	if ego+a > c.targetSpeed {
		a = c.targetSpeed - ego
		d.Capped = true
	}
	return a
}
