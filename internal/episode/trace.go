package episode

import "github.com/san-kum/cruisectl/internal/acc"

// TraceRow is what one observation leaves in the log.
type TraceRow struct {
	EgoVelocity    float64
	TargetSpeed    float64
	DistanceToLead acc.Gap
	LeadVelocity   float64
}

// Trace holds rows in tick order. Commands[i] is the command issued after
// Rows[i]; the final row has none.
type Trace struct {
	Name     string
	Dt       float64
	Rows     []TraceRow
	Commands []float64
}

func (t *Trace) Len() int { return len(t.Rows) }

func (t *Trace) Time(i int) float64 { return t.Dt * float64(i) }

func (t *Trace) Duration() float64 {
	if len(t.Rows) == 0 {
		return 0
	}
	return t.Time(len(t.Rows) - 1)
}

// Series extracts one column. Absent gaps read as NaN.
func (t *Trace) Series(col func(TraceRow) float64) []float64 {
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = col(r)
	}
	return out
}

func EgoVelocity(r TraceRow) float64  { return r.EgoVelocity }
func TargetSpeed(r TraceRow) float64  { return r.TargetSpeed }
func LeadVelocity(r TraceRow) float64 { return r.LeadVelocity }

func DistanceToLead(r TraceRow) float64 {
	if d, ok := r.DistanceToLead.Distance(); ok {
		return d
	}
	return nan
}
