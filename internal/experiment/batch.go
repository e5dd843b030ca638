package experiment

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/cruisectl/internal/config"
	"github.com/san-kum/cruisectl/internal/episode"
	"github.com/san-kum/cruisectl/internal/scenario"
	"github.com/san-kum/cruisectl/internal/storage"
)

// SinkFactory builds per-scenario observers, such as bus or broker sinks.
// The returned close function runs after the episode.
type SinkFactory func(sc *scenario.Scenario) ([]episode.Observer, func() error, error)

// Batch runs scenario files one after another. A failing scenario is logged
// and recorded; the remaining scenarios still run.
type Batch struct {
	Registry *Registry
	Config   *config.Config
	Store    *storage.Store
	Logger   log.FieldLogger
	Sinks    SinkFactory
	Preset   string

	// OnResult is called after each successful scenario, e.g. to render it.
	OnResult func(*Result) error
}

func (b *Batch) Run(ctx context.Context, paths []string) ([]*Result, error) {
	if b.Logger == nil {
		b.Logger = log.StandardLogger()
	}
	if b.Registry == nil {
		b.Registry = NewRegistry()
	}
	if b.Config == nil {
		b.Config = config.DefaultConfig()
	}

	if b.Store != nil {
		existed, err := b.Store.Init()
		if err != nil {
			return nil, err
		}
		if existed {
			b.Logger.WithField("dir", b.Store.Dir()).Warn("Looks like the log directory already exists. Existing logs may be overwritten.")
		}
	}

	var (
		results []*Result
		errs    []error
	)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		res, err := b.runOne(ctx, path)
		if err != nil {
			b.Logger.WithError(err).WithField("file", path).Error("Scenario failed")
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

func (b *Batch) runOne(ctx context.Context, path string) (*Result, error) {
	sc, err := scenario.Load(path)
	if err != nil {
		return nil, err
	}
	b.Logger.WithFields(log.Fields{"file": path, "scripted_s": sc.Duration(b.Config.Dt)}).Info("Running test data")

	exp := New(b.Config, sc)

	var closeSinks func() error
	if b.Sinks != nil {
		observers, closer, err := b.Sinks(sc)
		if err != nil {
			return nil, err
		}
		for _, o := range observers {
			exp.AddObserver(o)
		}
		closeSinks = closer
	}

	res, err := exp.Run(ctx, b.Registry)
	if closeSinks != nil {
		if cerr := closeSinks(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		return nil, err
	}

	if res.Collided {
		b.Logger.WithFields(log.Fields{"scenario": res.Scenario, "t": res.Trace.Duration()}).Warn("Collision")
	}

	if b.Store != nil {
		res.Path, err = b.Store.Save(res.Scenario, res.Trace, storage.RunMetadata{
			Source:     path,
			Integrator: b.Config.Integrator,
			Preset:     b.Preset,
			Metrics:    res.Metrics,
		})
		if err != nil {
			return nil, err
		}
		b.Logger.WithField("path", res.Path).Info("Episode saved")
	}

	b.Logger.WithFields(log.Fields{
		"scenario":   res.Scenario,
		"min_gap":    res.Metrics["min_gap"],
		"speed_rmse": res.Metrics["speed_rmse"],
		"violations": res.Metrics["threshold_violations"],
	}).Debug("Metrics")

	if b.OnResult != nil {
		if err := b.OnResult(res); err != nil {
			return nil, err
		}
	}
	return res, nil
}
