// Package scenario loads the JSON test scenarios: spawn points for both
// vehicles and the lead vehicle's scripted accelerations.
package scenario

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/san-kum/cruisectl/internal/sim"
)

var ErrMalformed = errors.New("scenario: malformed")

// Action is one entry of the lead script. A bare number holds for one tick;
// an object holds its acceleration for Duration seconds.
type Action struct {
	Acceleration float64 `json:"acceleration"`
	Duration     float64 `json:"duration,omitempty"`
}

func (a *Action) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*a = Action{Acceleration: v}
		return nil
	}

	var raw struct {
		Acceleration *float64 `json:"acceleration"`
		Duration     float64  `json:"duration"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Acceleration == nil {
		return errors.New("action object needs an acceleration")
	}
	if raw.Duration < 0 {
		return fmt.Errorf("negative action duration %f", raw.Duration)
	}
	*a = Action{Acceleration: *raw.Acceleration, Duration: raw.Duration}
	return nil
}

func (a Action) MarshalJSON() ([]byte, error) {
	if a.Duration == 0 {
		return json.Marshal(a.Acceleration)
	}
	type plain Action
	return json.Marshal(plain(a))
}

// Ticks is how many control ticks the action spans at the given period.
func (a Action) Ticks(dt float64) int {
	if a.Duration == 0 {
		return 1
	}
	return max(1, int(math.Round(a.Duration/dt)))
}

type Scenario struct {
	Name         string      `json:"name,omitempty"`
	Ego          sim.Vehicle `json:"ego"`
	Lead         sim.Vehicle `json:"lead"`
	Actions      []Action    `json:"ado_actions"`
	DesiredSpeed *float64    `json:"desired_speed,omitempty"`

	// Path is the file the scenario was read from, if any.
	Path string `json:"-"`
}

// LeadAccelerations expands the script into one acceleration per tick.
func (s *Scenario) LeadAccelerations(dt float64) []float64 {
	out := make([]float64, 0, len(s.Actions))
	for _, a := range s.Actions {
		out = append(out, lo.Times(a.Ticks(dt), func(int) float64 { return a.Acceleration })...)
	}
	return out
}

// Duration is the scripted length in seconds at the given period.
func (s *Scenario) Duration(dt float64) float64 {
	return float64(len(s.LeadAccelerations(dt))) * dt
}

// Basename is the file name without directory or extension, falling back to
// the scenario name.
func (s *Scenario) Basename() string {
	if s.Path != "" {
		base := filepath.Base(s.Path)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	if s.Name != "" {
		return s.Name
	}
	return "scenario"
}

var requiredKeys = []string{"ego", "lead", "ado_actions"}

func Parse(data []byte) (*Scenario, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for _, k := range requiredKeys {
		if _, ok := keys[k]; !ok {
			return nil, fmt.Errorf("%w: missing key %q", ErrMalformed, k)
		}
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &s, nil
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Path = path
	if s.Name == "" {
		s.Name = s.Basename()
	}
	return s, nil
}

func Save(path string, s *Scenario) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
