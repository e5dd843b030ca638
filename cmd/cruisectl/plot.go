package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/cruisectl/internal/episode"
	"github.com/san-kum/cruisectl/internal/export"
	"github.com/san-kum/cruisectl/internal/metrics"
	"github.com/san-kum/cruisectl/internal/storage"
	"github.com/san-kum/cruisectl/internal/viz"
)

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot TRACE.csv",
		Short: "plot a saved trace in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotTrace,
	}
	cmd.Flags().Int("width", 80, "chart width")
	cmd.Flags().Int("height", 12, "chart height")
	return cmd
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export TRACE.csv OUT.{png,svg,pdf}",
		Short: "render a saved trace to an image",
		Args:  cobra.ExactArgs(2),
		RunE:  exportTrace,
	}
}

func newExportJSONCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-json TRACE.csv",
		Short: "print a saved trace and its metrics as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := storage.ReadTraceFile(args[0])
			if err != nil {
				return err
			}
			return storage.ExportJSON(os.Stdout, tr, evaluate(tr))
		},
	}
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay TRACE.csv",
		Short: "replay a saved trace in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := storage.ReadTraceFile(args[0])
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return viz.Run(tr, cfg.Tuning, v.GetString("theme"), false)
		},
	}
	cmd.Flags().String("theme", "dashboard", "replay theme (dashboard, night, mono)")
	return cmd
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list saved episodes",
		Args:  cobra.NoArgs,
		RunE:  listEpisodes,
	}
	cmd.Flags().String("log-dir", "./logs", "directory for episode traces")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list tuning presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tKP\tKD\tMAX ACCEL\tREACTION\tCRITICAL\tBOOST")
			for _, name := range reg.ListPresets() {
				p, err := reg.GetPreset(name)
				if err != nil {
					return err
				}
				t := p.Tuning
				fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.1f\t%.1f\t%.1f\t%.1f\n",
					name, t.Kp, t.Kd, t.MaxAcceleration, t.ReactionTime, t.CriticalMargin, t.CatchUpBoost)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\nintegrators: %s\n", strings.Join(reg.ListIntegrators(), ", "))
			return nil
		},
	}
}

func evaluate(tr *episode.Trace) map[string]float64 {
	return metrics.Standard(v.GetFloat64("distance-threshold")).Evaluate(tr)
}

func plotTrace(cmd *cobra.Command, args []string) error {
	tr, err := storage.ReadTraceFile(args[0])
	if err != nil {
		return err
	}
	width, height := v.GetInt("width"), v.GetInt("height")

	fmt.Printf("episode: %s\n", tr.Name)
	fmt.Printf("ticks: %d (%.1fs)\n\n", tr.Len()-1, tr.Duration())

	fmt.Println(viz.SpeedChart(tr, width, height))
	if gap := viz.GapChart(tr, width, height); gap != "" {
		fmt.Println()
		fmt.Println(gap)
	}

	m := evaluate(tr)
	fmt.Println("\nmetrics:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range metrics.Standard(0).Names() {
		fmt.Fprintf(w, "  %s\t%.4f\n", name, m[name])
	}
	return w.Flush()
}

func exportTrace(cmd *cobra.Command, args []string) error {
	tr, err := storage.ReadTraceFile(args[0])
	if err != nil {
		return err
	}
	opts := export.DefaultOptions()
	opts.DistanceThreshold = v.GetFloat64("distance-threshold")
	if err := export.Save(args[1], tr, opts); err != nil {
		return err
	}
	logger.WithFields(log.Fields{"trace": args[0], "out": args[1]}).Info("Exported trace")
	return nil
}

func listEpisodes(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(v.GetString("log-dir")).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no episodes found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tTICKS\tDURATION\tINTEGRATOR\tPRESET\tMIN GAP\tSAVED")
	for _, r := range runs {
		preset := r.Preset
		if preset == "" {
			preset = "-"
		}
		fmt.Fprintf(w, "%s\t%d\t%.1fs\t%s\t%s\t%.2f\t%s\n",
			r.Scenario, r.Ticks, r.Duration, r.Integrator, preset,
			r.Metrics["min_gap"], r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}
