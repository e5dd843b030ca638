package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/cruisectl/internal/acc"
	"github.com/san-kum/cruisectl/internal/sim"
)

const (
	DefaultDesiredSpeed      = 25.0
	DefaultDistanceThreshold = 30.0
	DefaultDt                = 0.1
	DefaultMaxDuration       = 300.0
	DefaultVehicleLength     = 4.0
	DefaultIntegrator        = "euler"
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	DesiredSpeed      float64    `yaml:"desired_speed"`
	DistanceThreshold float64    `yaml:"distance_threshold"`
	Dt                float64    `yaml:"dt"`
	MaxDuration       float64    `yaml:"max_duration"`
	VehicleLength     float64    `yaml:"vehicle_length"`
	SensorRange       float64    `yaml:"sensor_range"`
	Drag              float64    `yaml:"drag"`
	Integrator        string     `yaml:"integrator"`
	Tuning            acc.Tuning `yaml:"tuning"`
}

func DefaultConfig() *Config {
	return &Config{
		DesiredSpeed:      DefaultDesiredSpeed,
		DistanceThreshold: DefaultDistanceThreshold,
		Dt:                DefaultDt,
		MaxDuration:       DefaultMaxDuration,
		VehicleLength:     DefaultVehicleLength,
		Integrator:        DefaultIntegrator,
		Tuning:            acc.DefaultTuning(),
	}
}

// Load overlays the file onto the defaults, so a file only needs the keys it
// changes.
func Load(path string) (*Config, error) {
	return LoadOnto(path, DefaultConfig())
}

// LoadOnto overlays the file onto a copy of base, e.g. a preset.
func LoadOnto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.DesiredSpeed < 0 {
		return fmt.Errorf("%w: desired_speed must be non-negative, got %f", ErrInvalidConfig, c.DesiredSpeed)
	}
	if c.DistanceThreshold < 0 {
		return fmt.Errorf("%w: distance_threshold must be non-negative, got %f", ErrInvalidConfig, c.DistanceThreshold)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, c.Dt)
	}
	if c.MaxDuration < 0 {
		return fmt.Errorf("%w: max_duration must be non-negative, got %f", ErrInvalidConfig, c.MaxDuration)
	}
	if c.Drag < 0 {
		return fmt.Errorf("%w: drag must be non-negative, got %f", ErrInvalidConfig, c.Drag)
	}
	if c.Integrator == "" {
		return fmt.Errorf("%w: integrator is required", ErrInvalidConfig)
	}
	return c.Tuning.Validate()
}

// World returns the simulator settings for a scenario. A non-nil
// desiredSpeed overrides the configured one.
func (c *Config) World(desiredSpeed *float64) sim.Config {
	speed := c.DesiredSpeed
	if desiredSpeed != nil {
		speed = *desiredSpeed
	}
	return sim.Config{
		Dt:            c.Dt,
		MaxDuration:   c.MaxDuration,
		VehicleLength: c.VehicleLength,
		SensorRange:   c.SensorRange,
		Drag:          c.Drag,
		DesiredSpeed:  speed,
	}
}

// WithParam returns a copy with one named parameter changed. "drag" sets the
// vehicle model; every other name is a controller tuning parameter.
func (c *Config) WithParam(name string, value float64) (*Config, error) {
	cp := c.Clone()
	if name == "drag" {
		if value < 0 {
			return nil, fmt.Errorf("%w: drag must be non-negative, got %f", ErrInvalidConfig, value)
		}
		cp.Drag = value
		return cp, nil
	}
	t, err := c.Tuning.WithParam(name, value)
	if err != nil {
		return nil, err
	}
	cp.Tuning = t
	return cp, nil
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
