package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/cruisectl/internal/config"
	"github.com/san-kum/cruisectl/internal/experiment"
)

var (
	v      = viper.New()
	logger log.FieldLogger = log.StandardLogger()
	reg    = experiment.NewRegistry()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cruisectl [SCENARIO...]",
		Args:  cobra.ArbitraryArgs,
		Short: "adaptive cruise control decision loop",
		Long: "Runs the adaptive cruise controller against scripted lead-vehicle scenarios\n" +
			"and writes one trace per scenario.",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runScenarios(cmd, args)
		},
	}
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("config", "", "config file (yaml)")
	rootCmd.PersistentFlags().String("preset", "", "tuning preset")
	rootCmd.PersistentFlags().Float64("distance-threshold", config.DefaultDistanceThreshold, "gap below which a tick counts as a violation")
	addRunFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run SCENARIO...",
		Short: "run scenarios and save their traces",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runScenarios,
	}
	addRunFlags(runCmd)

	rootCmd.AddCommand(runCmd, newPlotCmd(), newExportCmd(), newExportJSONCmd(),
		newReplayCmd(), newListCmd(), newPresetsCmd(), newProbeCmd(), newTuneCmd())
	return rootCmd
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("log-dir", "./logs", "directory for episode traces")
	f.Bool("render", false, "replay each episode in the terminal")
	f.String("theme", "dashboard", "replay theme (dashboard, night, mono)")
	f.String("integrator", config.DefaultIntegrator, "integration method ("+strings.Join(reg.ListIntegrators(), ", ")+")")
	f.Float64("desired-speed", config.DefaultDesiredSpeed, "target cruise speed (m/s)")
	f.Float64("dt", config.DefaultDt, "control period (s)")
	f.Float64("drag", 0, "linear velocity damping of both vehicles (1/s)")
	f.String("can-log", "", "append ACC_CMD frames to a candump log file")
	f.String("can-iface", "", "transmit ACC_CMD frames on a SocketCAN interface")
	f.String("mqtt-broker", "", "publish telemetry to an MQTT broker (host:port)")
	f.String("mqtt-prefix", "cruisectl", "MQTT topic prefix")
}

// setup binds the executing command's flags and the CRUISECTL_* environment,
// then builds the root logger.
func setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	v.SetEnvPrefix("CRUISECTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	level, err := log.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return err
	}
	l := log.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(level)
	l.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	logger = l.WithField("component", "simulation")
	return nil
}

// loadConfig applies preset, then config file, then flags and environment.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if name := v.GetString("preset"); name != "" {
		p, err := reg.GetPreset(name)
		if err != nil {
			return nil, err
		}
		cfg = p
	}

	if path := v.GetString("config"); path != "" {
		loaded, err := config.LoadOnto(path, cfg)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if v.IsSet("integrator") {
		cfg.Integrator = v.GetString("integrator")
	}
	if v.IsSet("desired-speed") {
		cfg.DesiredSpeed = v.GetFloat64("desired-speed")
	}
	if v.IsSet("distance-threshold") {
		cfg.DistanceThreshold = v.GetFloat64("distance-threshold")
	}
	if v.IsSet("dt") {
		cfg.Dt = v.GetFloat64("dt")
	}
	if v.IsSet("drag") {
		cfg.Drag = v.GetFloat64("drag")
	}
	if _, err := reg.GetIntegrator(cfg.Integrator); err != nil {
		return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(reg.ListIntegrators(), ", "))
	}
	return cfg, cfg.Validate()
}
