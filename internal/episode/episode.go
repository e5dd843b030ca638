package episode

import (
	"context"
	"math"

	"github.com/san-kum/cruisectl/internal/acc"
)

var nan = math.NaN()

type World interface {
	Reset() acc.Observation
	Step(acceleration float64) acc.Observation
	Completed() bool
	LeadVelocity() float64
	Dt() float64
}

type Controller interface {
	Step(obs acc.Observation) float64
}

// Decider is implemented by controllers that can report how a command was
// reached. The driver prefers it over Step when available.
type Decider interface {
	Decide(obs acc.Observation) acc.Decision
}

// Tick is delivered to observers once per trace row.
type Tick struct {
	Index       int
	Time        float64
	Observation acc.Observation
	Row         TraceRow

	// Command is the acceleration issued in response to Observation. The
	// final row of an episode has no command and Applied is false.
	Command  float64
	Decision *acc.Decision
	Applied  bool
}

type Observer interface {
	OnTick(t Tick) error
}

// Finisher is implemented by observers that want the completed trace.
type Finisher interface {
	Finish(tr *Trace) error
}

type ObserverFunc func(Tick) error

func (f ObserverFunc) OnTick(t Tick) error { return f(t) }

type Driver struct {
	Name      string
	Observers []Observer
	// MaxTicks bounds worlds that never complete. 0 disables the bound.
	MaxTicks int
}

// Run executes one episode with a default driver.
func Run(ctx context.Context, w World, c Controller, observers ...Observer) (*Trace, error) {
	d := Driver{Observers: observers}
	return d.Run(ctx, w, c)
}

func (d *Driver) Run(ctx context.Context, w World, c Controller) (*Trace, error) {
	if w == nil {
		return nil, ErrNilWorld
	}
	if c == nil {
		return nil, ErrNilController
	}

	tr := &Trace{Name: d.Name, Dt: w.Dt()}
	obs := w.Reset()
	row := d.record(tr, w, obs)

	for i := 0; ; i++ {
		t := tr.Time(i)
		if err := ctx.Err(); err != nil {
			return nil, &TickError{Index: i, Time: t, Err: err}
		}
		if d.MaxTicks > 0 && i >= d.MaxTicks {
			return nil, &TickError{Index: i, Time: t, Err: ErrTickLimit}
		}

		tick := Tick{Index: i, Time: t, Observation: obs, Row: row, Applied: true}
		if dc, ok := c.(Decider); ok {
			dec := dc.Decide(obs)
			tick.Command = dec.Acceleration
			tick.Decision = &dec
		} else {
			tick.Command = c.Step(obs)
		}
		tr.Commands = append(tr.Commands, tick.Command)

		if err := d.notify(tick); err != nil {
			return nil, err
		}

		obs = w.Step(tick.Command)
		if f, ok := w.(interface{ Err() error }); ok {
			if err := f.Err(); err != nil {
				return nil, &TickError{Index: i, Time: t, Err: err}
			}
		}
		row = d.record(tr, w, obs)

		if w.Completed() {
			break
		}
	}

	last := len(tr.Rows) - 1
	if err := d.notify(Tick{
		Index:       last,
		Time:        tr.Time(last),
		Observation: obs,
		Row:         row,
	}); err != nil {
		return nil, err
	}

	for _, o := range d.Observers {
		if f, ok := o.(Finisher); ok {
			if err := f.Finish(tr); err != nil {
				return nil, &TickError{Index: last, Time: tr.Time(last), Err: err}
			}
		}
	}
	return tr, nil
}

func (d *Driver) record(tr *Trace, w World, obs acc.Observation) TraceRow {
	row := TraceRow{
		EgoVelocity:    obs.EgoVelocity,
		TargetSpeed:    obs.DesiredSpeed,
		DistanceToLead: obs.Lead,
		LeadVelocity:   w.LeadVelocity(),
	}
	tr.Rows = append(tr.Rows, row)
	return row
}

func (d *Driver) notify(t Tick) error {
	for _, o := range d.Observers {
		if err := o.OnTick(t); err != nil {
			return &TickError{Index: t.Index, Time: t.Time, Err: err}
		}
	}
	return nil
}
