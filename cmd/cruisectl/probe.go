package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/san-kum/cruisectl/internal/acc"
	"github.com/san-kum/cruisectl/internal/config"
)

const probeHelp = `commands:
  <ego> <gap|-> [desired]   feed one observation, "-" means no lead
  set <param> <value>       change a tuning parameter and reset
  tuning                    show the current tuning
  reset                     start a fresh controller
  help                      show this help
  quit                      leave`

var errQuit = errors.New("quit")

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "feed observations to a controller interactively",
		Args:  cobra.NoArgs,
		RunE:  runProbe,
	}
}

// probe holds one controller across REPL lines, the same way one episode
// would.
type probe struct {
	cfg  *config.Config
	ctrl *acc.Controller
	tick int
}

func newProbe(cfg *config.Config) (*probe, error) {
	p := &probe{cfg: cfg}
	return p, p.reset()
}

func (p *probe) reset() error {
	c, err := acc.NewWithTuning(p.cfg.DesiredSpeed, p.cfg.DistanceThreshold, p.cfg.Tuning)
	if err != nil {
		return err
	}
	p.ctrl = c
	p.tick = 0
	return nil
}

func (p *probe) banner() string {
	return fmt.Sprintf("target %.1f m/s, threshold %.1f m. Type help for commands.",
		p.ctrl.TargetSpeed(), p.ctrl.DistanceThreshold())
}

// handle executes one line and returns what to print.
func (p *probe) handle(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}

	switch fields[0] {
	case "quit", "exit":
		return "", errQuit
	case "help", "?":
		return probeHelp, nil
	case "reset":
		return "controller reset", p.reset()
	case "tuning":
		var b strings.Builder
		params := p.ctrl.Tuning().Params()
		names := lo.Keys(params)
		slices.Sort(names)
		for _, name := range names {
			fmt.Fprintf(&b, "%s = %g\n", name, params[name])
		}
		return strings.TrimRight(b.String(), "\n"), nil
	case "set":
		if len(fields) != 3 {
			return "", fmt.Errorf("usage: set <param> <value>")
		}
		val, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return "", fmt.Errorf("bad value %q", fields[2])
		}
		t, err := p.cfg.Tuning.WithParam(fields[1], val)
		if err != nil {
			return "", err
		}
		if err := t.Validate(); err != nil {
			return "", err
		}
		p.cfg.Tuning = t
		return fmt.Sprintf("%s = %g, controller reset", fields[1], val), p.reset()
	}

	obs, err := parseObservation(fields, p.cfg.DesiredSpeed)
	if err != nil {
		return "", err
	}
	d := p.ctrl.Decide(obs)
	p.tick++
	return formatDecision(p.tick, d), nil
}

func parseObservation(fields []string, desired float64) (acc.Observation, error) {
	if len(fields) < 2 || len(fields) > 3 {
		return acc.Observation{}, fmt.Errorf("expected <ego> <gap|-> [desired], try help")
	}
	ego, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return acc.Observation{}, fmt.Errorf("bad ego speed %q", fields[0])
	}

	obs := acc.Observation{EgoVelocity: ego, Lead: acc.NoLead(), DesiredSpeed: desired}
	if fields[1] != "-" {
		gap, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return acc.Observation{}, fmt.Errorf("bad gap %q", fields[1])
		}
		obs.Lead = acc.LeadAt(gap)
	}
	if len(fields) == 3 {
		if obs.DesiredSpeed, err = strconv.ParseFloat(fields[2], 64); err != nil {
			return acc.Observation{}, fmt.Errorf("bad desired speed %q", fields[2])
		}
	}
	return obs, nil
}

func formatDecision(tick int, d acc.Decision) string {
	s := fmt.Sprintf("#%d accel=%+.3f zone=%s", tick, d.Acceleration, d.Zone)
	if d.Zone != acc.ZoneNoLead {
		s += fmt.Sprintf(" critical=%.1f safe=%.1f closing=%+.2f", d.CriticalDistance, d.SafeDistance, d.ClosingRate)
	}
	var flags []string
	for _, f := range []struct {
		on   bool
		name string
	}{
		{d.Boosted, "boost"},
		{d.Capped, "capped"},
		{d.Overshoot, "overshoot"},
		{d.Stalled, "stalled"},
	} {
		if f.on {
			flags = append(flags, f.name)
		}
	}
	if len(flags) > 0 {
		s += " [" + strings.Join(flags, ",") + "]"
	}
	return s
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := newProbe(cfg)
	if err != nil {
		return err
	}

	home, _ := os.UserHomeDir()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "acc> ",
		HistoryFile:     filepath.Join(home, ".cruisectl_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Fprintln(rl.Stdout(), p.banner())
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		out, err := p.handle(line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(rl.Stderr(), "error: %v\n", err)
			continue
		}
		if out != "" {
			fmt.Fprintln(rl.Stdout(), out)
		}
	}
}
