package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/cruisectl/internal/config"
	"github.com/san-kum/cruisectl/internal/optim"
	"github.com/san-kum/cruisectl/internal/scenario"
)

func newTuneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tune SCENARIO...",
		Short: "grid search controller gains over scenarios",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runTune,
	}
	f := cmd.Flags()
	f.StringSlice("param", []string{"kp=0.5:3:6", "kd=0:1:5"}, "parameter grid as name=lo:hi:n")
	f.String("metric", "speed_rmse", "metric to minimise")
	f.String("save", "", "write the tuned config to a yaml file")
	f.String("integrator", config.DefaultIntegrator, "integration method ("+strings.Join(reg.ListIntegrators(), ", ")+")")
	return cmd
}

// parseGrid reads "name=lo:hi:n".
func parseGrid(grid string) (string, []float64, error) {
	name, rng, ok := strings.Cut(grid, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("bad grid %q, want name=lo:hi:n", grid)
	}
	parts := strings.Split(rng, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("bad grid %q, want name=lo:hi:n", grid)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("bad grid %q: %w", grid, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("bad grid %q: %w", grid, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("bad grid %q: count must be a positive integer", grid)
	}
	return name, optim.Linspace(lo, hi, n), nil
}

func runTune(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var (
		names  []string
		ranges [][]float64
	)
	for _, grid := range v.GetStringSlice("param") {
		name, values, err := parseGrid(grid)
		if err != nil {
			return err
		}
		if _, err := cfg.WithParam(name, values[0]); err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	scenarios := make([]*scenario.Scenario, 0, len(args))
	for _, path := range args {
		sc, err := scenario.Load(path)
		if err != nil {
			return err
		}
		scenarios = append(scenarios, sc)
	}

	gs, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}
	metric := v.GetString("metric")
	logger.WithFields(log.Fields{"params": names, "metric": metric, "scenarios": len(scenarios)}).Info("Tuning")

	best, err := gs.Search(ctx, optim.ScenarioObjective(reg, cfg, scenarios, metric))
	if err != nil {
		return err
	}

	fmt.Printf("evaluated %d candidates (%d skipped)\n", best.Evaluated, best.Skipped)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%.4f\n", name, best.Params[name])
	}
	fmt.Fprintf(w, "  %s\t%.4f\n", metric, best.Value)
	w.Flush()

	if path := v.GetString("save"); path != "" {
		tuned := cfg
		for name, val := range best.Params {
			if tuned, err = tuned.WithParam(name, val); err != nil {
				return err
			}
		}
		if err := config.Save(path, tuned); err != nil {
			return err
		}
		logger.WithField("path", path).Info("Tuned config saved")
	}
	return nil
}
