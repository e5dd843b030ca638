package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/cruisectl/internal/acc"
	"github.com/san-kum/cruisectl/internal/dynamo"
	"github.com/san-kum/cruisectl/internal/physics"
)

var ErrInvalidConfig = errors.New("sim: invalid config")

// Vehicle is a spawn point: position along the lane in metres and speed in m/s.
type Vehicle struct {
	Position float64 `json:"position" yaml:"position"`
	Velocity float64 `json:"velocity" yaml:"velocity"`
}

type Config struct {
	Dt            float64 // control period, seconds
	MaxDuration   float64 // 0 disables the time limit
	VehicleLength float64 // subtracted from the centre distance
	SensorRange   float64 // gaps beyond this are reported as no lead; 0 is unlimited
	Drag          float64 // linear velocity damping of both vehicles, 1/s
	DesiredSpeed  float64
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.1,
		MaxDuration:   300,
		VehicleLength: 4,
		DesiredSpeed:  25,
	}
}

func (c Config) validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, c.Dt)
	}
	if c.MaxDuration < 0 {
		return fmt.Errorf("%w: max duration must be non-negative, got %f", ErrInvalidConfig, c.MaxDuration)
	}
	if c.VehicleLength < 0 {
		return fmt.Errorf("%w: vehicle length must be non-negative, got %f", ErrInvalidConfig, c.VehicleLength)
	}
	if c.SensorRange < 0 {
		return fmt.Errorf("%w: sensor range must be non-negative, got %f", ErrInvalidConfig, c.SensorRange)
	}
	return nil
}

type World struct {
	cfg   Config
	dyn   *physics.Longitudinal
	integ dynamo.Integrator

	ego, lead Vehicle
	actions   []float64

	x        dynamo.State
	tick     int
	collided bool
	err      error
}

func New(cfg Config, integ dynamo.Integrator) (*World, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if integ == nil {
		return nil, fmt.Errorf("%w: nil integrator", ErrInvalidConfig)
	}
	dyn := physics.NewLongitudinal()
	if err := dyn.SetParam("drag", cfg.Drag); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &World{
		cfg:   cfg,
		dyn:   dyn,
		integ: integ,
	}, nil
}

func (w *World) SetSpawnPoints(ego, lead Vehicle) {
	w.ego = ego
	w.lead = lead
}

// SetLeadActions installs the lead's per-tick accelerations. The slice is copied.
func (w *World) SetLeadActions(actions []float64) {
	w.actions = append([]float64(nil), actions...)
}

func (w *World) Reset() acc.Observation {
	w.x = dynamo.State{w.ego.Position, w.ego.Velocity, w.lead.Position, w.lead.Velocity}
	w.tick = 0
	w.collided = false
	w.err = nil
	if err := dynamo.Check(w.dyn, w.x, dynamo.Control{0, 0}); err != nil {
		w.err = &dynamo.StepError{State: w.x.Clone(), Err: err}
	}
	w.checkCollision()
	return w.observe()
}

// Step applies the ego acceleration for one tick. Past the end of the script
// the lead holds its speed.
func (w *World) Step(accel float64) acc.Observation {
	if w.x == nil {
		w.Reset()
	}

	var leadAccel float64
	if w.tick < len(w.actions) {
		leadAccel = w.actions[w.tick]
	}

	t := w.Time()
	next := w.integ.Step(w.dyn, w.x, dynamo.Control{accel, leadAccel}, t, w.cfg.Dt)
	next[physics.EgoVelocity] = max(0, next[physics.EgoVelocity])
	next[physics.LeadVelocity] = max(0, next[physics.LeadVelocity])

	if !next.Finite() && w.err == nil {
		w.err = &dynamo.StepError{Tick: w.tick, Time: t, State: next.Clone(), Err: dynamo.ErrInvalidState}
	}

	w.x = next
	w.tick++
	w.checkCollision()
	return w.observe()
}

func (w *World) Completed() bool {
	if w.collided || w.tick >= len(w.actions) {
		return true
	}
	return w.cfg.MaxDuration > 0 && w.Time() >= w.cfg.MaxDuration
}

// Err reports a non-finite spawn state or one produced by the integrator.
func (w *World) Err() error { return w.err }

func (w *World) Collided() bool        { return w.collided }
func (w *World) Dt() float64           { return w.cfg.Dt }
func (w *World) Time() float64         { return float64(w.tick) * w.cfg.Dt }
func (w *World) EgoVelocity() float64  { return w.at(physics.EgoVelocity) }
func (w *World) LeadVelocity() float64 { return w.at(physics.LeadVelocity) }

// Gap is the bumper-to-bumper distance, ignoring the sensor range.
func (w *World) Gap() float64 {
	return w.at(physics.LeadPosition) - w.at(physics.EgoPosition) - w.cfg.VehicleLength
}

func (w *World) at(i int) float64 {
	if w.x == nil {
		return 0
	}
	return w.x[i]
}

func (w *World) checkCollision() {
	if w.Gap() <= 0 {
		w.collided = true
	}
}

func (w *World) observe() acc.Observation {
	lead := acc.LeadAt(w.Gap())
	if w.cfg.SensorRange > 0 && w.Gap() > w.cfg.SensorRange {
		lead = acc.NoLead()
	}
	return acc.Observation{
		EgoVelocity:  w.EgoVelocity(),
		Lead:         lead,
		DesiredSpeed: w.cfg.DesiredSpeed,
	}
}
