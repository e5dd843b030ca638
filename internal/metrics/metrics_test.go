package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/cruisectl/internal/acc"
	"github.com/san-kum/cruisectl/internal/episode"
)

func sampleTrace() *episode.Trace {
	return &episode.Trace{
		Dt: 0.1,
		Rows: []episode.TraceRow{
			{EgoVelocity: 22, TargetSpeed: 25, DistanceToLead: acc.LeadAt(40), LeadVelocity: 20},
			{EgoVelocity: 24, TargetSpeed: 25, DistanceToLead: acc.LeadAt(25), LeadVelocity: 20},
			{EgoVelocity: 25, TargetSpeed: 25, DistanceToLead: acc.NoLead(), LeadVelocity: 20},
			{EgoVelocity: 29, TargetSpeed: 25, DistanceToLead: acc.LeadAt(28), LeadVelocity: 20},
		},
		Commands: []float64{2, -1, 1},
	}
}

func TestStandardSet(t *testing.T) {
	got := Standard(30).Evaluate(sampleTrace())

	want := map[string]float64{
		"min_gap":              25,
		"threshold_violations": 2,
		"speed_rmse":           math.Sqrt((9.0 + 1 + 0 + 16) / 4),
		"control_effort":       4.0 / 3,
		"max_jerk":             30,
		"collision":            0,
	}
	for name, v := range want {
		if math.Abs(got[name]-v) > 1e-9 {
			t.Errorf("%s = %f, want %f", name, got[name], v)
		}
	}
}

func TestEvaluateResets(t *testing.T) {
	s := Standard(30)
	first := s.Evaluate(sampleTrace())
	second := s.Evaluate(sampleTrace())

	for name, v := range first {
		if second[name] != v {
			t.Errorf("%s changed on second evaluation: %f vs %f", name, v, second[name])
		}
	}
}

func TestCollision(t *testing.T) {
	c := NewCollision()
	c.Observe(episode.Tick{Row: episode.TraceRow{DistanceToLead: acc.LeadAt(3)}})
	if c.Value() != 0 {
		t.Fatal("no contact yet")
	}
	c.Observe(episode.Tick{Row: episode.TraceRow{DistanceToLead: acc.LeadAt(0)}})
	if c.Value() != 1 {
		t.Error("expected collision")
	}
	c.Reset()
	if c.Value() != 0 {
		t.Error("expected reset")
	}
}

func TestEmptyMetrics(t *testing.T) {
	values := Standard(30).Values()
	for name, v := range values {
		if v != 0 {
			t.Errorf("%s = %f before any tick, want 0", name, v)
		}
	}
	if len(values) != 6 {
		t.Errorf("expected 6 metrics, got %d", len(values))
	}
}

func TestNames(t *testing.T) {
	names := Standard(30).Names()
	if names[0] != "collision" || names[len(names)-1] != "threshold_violations" {
		t.Errorf("expected sorted names, got %v", names)
	}
}
