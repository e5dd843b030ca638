package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/cruisectl/internal/canbus"
	"github.com/san-kum/cruisectl/internal/config"
	"github.com/san-kum/cruisectl/internal/episode"
	"github.com/san-kum/cruisectl/internal/experiment"
	"github.com/san-kum/cruisectl/internal/scenario"
	"github.com/san-kum/cruisectl/internal/storage"
	"github.com/san-kum/cruisectl/internal/telemetry"
	"github.com/san-kum/cruisectl/internal/viz"
)

func runScenarios(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sinks, closeSinks, err := openSinks(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSinks()

	batch := &experiment.Batch{
		Registry: reg,
		Config:   cfg,
		Store:    storage.New(v.GetString("log-dir")),
		Logger:   logger,
		Sinks:    sinks,
		Preset:   v.GetString("preset"),
	}
	if v.GetBool("render") {
		batch.OnResult = func(r *experiment.Result) error {
			return viz.Run(r.Trace, cfg.Tuning, v.GetString("theme"), false)
		}
	}

	results, runErr := batch.Run(ctx, args)
	printResults(os.Stdout, results)
	if runErr != nil {
		logger.WithFields(log.Fields{"failed": len(args) - len(results), "total": len(args)}).Error("Batch finished with failures")
	}
	return runErr
}

func printResults(out io.Writer, results []*experiment.Result) {
	if len(results) == 0 {
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tTICKS\tMIN GAP\tSPEED RMSE\tVIOLATIONS\tCOLLISION\tTRACE")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.3f\t%.0f\t%v\t%s\n",
			r.Scenario, r.Trace.Len()-1, r.Metrics["min_gap"], r.Metrics["speed_rmse"],
			r.Metrics["threshold_violations"], r.Collided, r.Path)
	}
	w.Flush()
}

// openSinks builds the per-scenario sink factory from the bus and broker
// flags. The returned close function releases the shared resources.
func openSinks(ctx context.Context, cfg *config.Config) (experiment.SinkFactory, func(), error) {
	var (
		canLog *os.File
		client mqtt.Client
	)
	closeAll := func() {
		if canLog != nil {
			canLog.Close()
		}
		if client != nil {
			client.Disconnect(250)
		}
	}

	canLogPath := v.GetString("can-log")
	canIface := v.GetString("can-iface")
	broker := v.GetString("mqtt-broker")
	if canLogPath == "" && canIface == "" && broker == "" {
		return nil, closeAll, nil
	}

	if canLogPath != "" {
		f, err := os.OpenFile(canLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, closeAll, fmt.Errorf("open can log: %w", err)
		}
		canLog = f
	}

	if broker != "" {
		c, err := telemetry.Connect(telemetry.Options{
			Broker:   broker,
			Username: os.Getenv("MQTT_USERNAME"),
			Password: os.Getenv("MQTT_PASSWORD"),
		}, logger)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		client = c
	}

	logIface := canIface
	if logIface == "" {
		logIface = "vcan0"
	}
	prefix := v.GetString("mqtt-prefix")

	factory := func(sc *scenario.Scenario) ([]episode.Observer, func() error, error) {
		var (
			observers []episode.Observer
			writers   []canbus.Writer
		)
		if canLog != nil {
			// The file outlives the scenario, so the writer must not close it.
			writers = append(writers, canbus.NewLogWriter(struct{ io.Writer }{canLog}, logIface))
		}
		if canIface != "" {
			sw, err := canbus.DialSocket(ctx, canIface)
			if err != nil {
				return nil, nil, err
			}
			writers = append(writers, sw)
		}

		var closers []func() error
		if len(writers) > 0 {
			bus := canbus.NewSink(ctx, cfg.Tuning, writers...)
			observers = append(observers, bus)
			closers = append(closers, bus.Close)
		}
		if client != nil {
			observers = append(observers, telemetry.NewSink(client, prefix, sc.Basename(), cfg.DistanceThreshold))
		}

		closeFn := func() error {
			var errs []error
			for _, c := range closers {
				errs = append(errs, c())
			}
			return errors.Join(errs...)
		}
		return observers, closeFn, nil
	}
	return factory, closeAll, nil
}
