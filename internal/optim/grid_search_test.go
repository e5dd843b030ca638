package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/cruisectl/internal/config"
	"github.com/san-kum/cruisectl/internal/experiment"
	"github.com/san-kum/cruisectl/internal/scenario"
	"github.com/san-kum/cruisectl/internal/sim"
)

func TestGridSearchFindsMinimum(t *testing.T) {
	g, err := NewGridSearch([]string{"x", "y"}, [][]float64{{-1, 0, 1, 2}, {0, 3, 5}})
	if err != nil {
		t.Fatal(err)
	}

	res, err := g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		return (p["x"]-1)*(p["x"]-1) + (p["y"]-3)*(p["y"]-3), nil
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if res.Params["x"] != 1 || res.Params["y"] != 3 || res.Value != 0 {
		t.Errorf("unexpected optimum %+v", res)
	}
	if res.Evaluated != 12 {
		t.Errorf("expected 12 evaluations, got %d", res.Evaluated)
	}
}

func TestGridSearchSkipsFailures(t *testing.T) {
	g, _ := NewGridSearch([]string{"x"}, [][]float64{{1, 2, 3}})

	res, err := g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		if p["x"] == 1 {
			return 0, errors.New("unstable")
		}
		return p["x"], nil
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if res.Params["x"] != 2 || res.Skipped != 1 {
		t.Errorf("unexpected result %+v", res)
	}

	_, err = g.Search(context.Background(), func(context.Context, map[string]float64) (float64, error) {
		return 0, errors.New("always")
	})
	if !errors.Is(err, ErrNoCandidate) {
		t.Errorf("expected ErrNoCandidate, got %v", err)
	}
}

func TestGridSearchCancelled(t *testing.T) {
	g, _ := NewGridSearch([]string{"x"}, [][]float64{{1, 2}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Search(ctx, func(context.Context, map[string]float64) (float64, error) { return 0, nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewGridSearchMismatch(t *testing.T) {
	if _, err := NewGridSearch([]string{"kp"}, nil); err == nil {
		t.Error("expected error for mismatched ranges")
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(0.5, 2.5, 5)
	want := []float64{0.5, 1.0, 1.5, 2.0, 2.5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("Linspace[%d] = %f, want %f", i, got[i], want[i])
		}
	}
	if len(Linspace(1, 2, 1)) != 1 {
		t.Error("expected single value")
	}
}

func TestScenarioObjective(t *testing.T) {
	sc := &scenario.Scenario{
		Name:    "open-road",
		Ego:     sim.Vehicle{Position: 0, Velocity: 15},
		Lead:    sim.Vehicle{Position: 400, Velocity: 25},
		Actions: []scenario.Action{{Acceleration: 0, Duration: 5}},
	}
	obj := ScenarioObjective(experiment.NewRegistry(), config.DefaultConfig(), []*scenario.Scenario{sc}, "speed_rmse")

	slow, err := obj(context.Background(), map[string]float64{"kp": 0.1, "catch_up_boost": 0})
	if err != nil {
		t.Fatalf("objective failed: %v", err)
	}
	fast, err := obj(context.Background(), map[string]float64{"kp": 1.5, "catch_up_boost": 0})
	if err != nil {
		t.Fatalf("objective failed: %v", err)
	}
	if fast >= slow {
		t.Errorf("expected higher gain to track better: kp=1.5 -> %f, kp=0.1 -> %f", fast, slow)
	}

	if _, err := obj(context.Background(), map[string]float64{"kp": 1.5, "drag": 0.02}); err != nil {
		t.Errorf("drag should be searchable: %v", err)
	}
	if _, err := obj(context.Background(), map[string]float64{"drag": -1}); err == nil {
		t.Error("expected error for negative drag")
	}

	if _, err := obj(context.Background(), map[string]float64{"ki": 1}); err == nil {
		t.Error("expected error for unknown parameter")
	}

	bad := ScenarioObjective(experiment.NewRegistry(), config.DefaultConfig(), []*scenario.Scenario{sc}, "lap_time")
	if _, err := bad(context.Background(), nil); err == nil {
		t.Error("expected error for unknown metric")
	}
}
