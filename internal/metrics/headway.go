package metrics

import (
	"math"

	"github.com/san-kum/cruisectl/internal/episode"
)

// MinGap is the smallest observed distance to the lead. It reads 0 when no
// lead was ever observed.
type MinGap struct {
	name string
	min  float64
	seen bool
}

func NewMinGap() *MinGap {
	return &MinGap{name: "min_gap"}
}

func (m *MinGap) Name() string { return m.name }

func (m *MinGap) Observe(t episode.Tick) {
	d, ok := t.Row.DistanceToLead.Distance()
	if !ok {
		return
	}
	if !m.seen || d < m.min {
		m.min = d
	}
	m.seen = true
}

func (m *MinGap) Value() float64 {
	if !m.seen {
		return 0
	}
	return m.min
}

func (m *MinGap) Reset() {
	m.min, m.seen = 0, false
}

// ThresholdViolations counts rows whose gap is below the distance threshold.
type ThresholdViolations struct {
	name       string
	threshold  float64
	violations int
}

func NewThresholdViolations(threshold float64) *ThresholdViolations {
	return &ThresholdViolations{
		name:      "threshold_violations",
		threshold: threshold,
	}
}

func (v *ThresholdViolations) Name() string { return v.name }

func (v *ThresholdViolations) Observe(t episode.Tick) {
	if d, ok := t.Row.DistanceToLead.Distance(); ok && d < v.threshold {
		v.violations++
	}
}

func (v *ThresholdViolations) Value() float64 { return float64(v.violations) }

func (v *ThresholdViolations) Reset() { v.violations = 0 }

// Collision is 1 once any row shows the vehicles touching.
type Collision struct {
	name string
	hit  bool
}

func NewCollision() *Collision {
	return &Collision{name: "collision"}
}

func (c *Collision) Name() string { return c.name }

func (c *Collision) Observe(t episode.Tick) {
	if d, ok := t.Row.DistanceToLead.Distance(); ok && d <= 0 {
		c.hit = true
	}
}

func (c *Collision) Value() float64 {
	if c.hit {
		return 1
	}
	return 0
}

func (c *Collision) Reset() { c.hit = false }

// SpeedRMSE is the root mean square of ego speed minus desired speed.
type SpeedRMSE struct {
	name    string
	sumSq   float64
	samples int
}

func NewSpeedRMSE() *SpeedRMSE {
	return &SpeedRMSE{name: "speed_rmse"}
}

func (s *SpeedRMSE) Name() string { return s.name }

func (s *SpeedRMSE) Observe(t episode.Tick) {
	e := t.Row.EgoVelocity - t.Row.TargetSpeed
	s.sumSq += e * e
	s.samples++
}

func (s *SpeedRMSE) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return math.Sqrt(s.sumSq / float64(s.samples))
}

func (s *SpeedRMSE) Reset() {
	s.sumSq = 0
	s.samples = 0
}
