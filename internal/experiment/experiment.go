// Package experiment runs scenarios end to end: it builds the world and a
// fresh controller for each scenario, drives the episode and scores it.
package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/cruisectl/internal/acc"
	"github.com/san-kum/cruisectl/internal/config"
	"github.com/san-kum/cruisectl/internal/episode"
	"github.com/san-kum/cruisectl/internal/metrics"
	"github.com/san-kum/cruisectl/internal/scenario"
	"github.com/san-kum/cruisectl/internal/sim"
)

type Result struct {
	Scenario string
	Trace    *episode.Trace
	Metrics  map[string]float64
	Collided bool
	// Path is the saved trace, empty when nothing was written.
	Path string
}

type Experiment struct {
	cfg       *config.Config
	scenario  *scenario.Scenario
	observers []episode.Observer
}

func New(cfg *config.Config, sc *scenario.Scenario) *Experiment {
	return &Experiment{cfg: cfg, scenario: sc}
}

func (e *Experiment) AddObserver(o episode.Observer) {
	e.observers = append(e.observers, o)
}

// Run plays the scenario once with a controller that is never reused.
func (e *Experiment) Run(ctx context.Context, reg *Registry) (*Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	integ, err := reg.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return nil, err
	}

	wcfg := e.cfg.World(e.scenario.DesiredSpeed)
	world, err := sim.New(wcfg, integ)
	if err != nil {
		return nil, err
	}
	world.SetSpawnPoints(e.scenario.Ego, e.scenario.Lead)
	world.SetLeadActions(e.scenario.LeadAccelerations(wcfg.Dt))

	ctrl, err := acc.NewWithTuning(wcfg.DesiredSpeed, e.cfg.DistanceThreshold, e.cfg.Tuning)
	if err != nil {
		return nil, err
	}

	scores := metrics.Standard(e.cfg.DistanceThreshold)
	driver := episode.Driver{
		Name:      e.scenario.Basename(),
		Observers: append([]episode.Observer{scores}, e.observers...),
	}

	tr, err := driver.Run(ctx, world, ctrl)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", driver.Name, err)
	}

	return &Result{
		Scenario: driver.Name,
		Trace:    tr,
		Metrics:  scores.Values(),
		Collided: world.Collided(),
	}, nil
}
