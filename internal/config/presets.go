package config

import (
	"sort"

	"github.com/san-kum/cruisectl/internal/acc"
)

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"comfort": withTuning(func(t *acc.Tuning) {
		t.Kp = 0.8
		t.Kd = 0.2
		t.MaxAcceleration = 2.5
		t.ReactionTime = 2.0
		t.CatchUpBoost = 1.5
	}),
	"sport": withTuning(func(t *acc.Tuning) {
		t.Kp = 2.0
		t.Kd = 0.4
		t.ReactionTime = 1.0
		t.CriticalMargin = 12
		t.CatchUpBoost = 6
	}),
}

func withTuning(mutate func(*acc.Tuning)) *Config {
	cfg := DefaultConfig()
	mutate(&cfg.Tuning)
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
