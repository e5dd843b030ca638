package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/cruisectl/internal/config"
	"github.com/san-kum/cruisectl/internal/dynamo"
	"github.com/san-kum/cruisectl/internal/integrators"
)

type Registry struct {
	integrators map[string]func() dynamo.Integrator
	presets     map[string]*config.Config
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
		presets:     make(map[string]*config.Config),
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }

	for _, name := range config.ListPresets() {
		r.presets[name] = config.GetPreset(name)
	}

	return r
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

// GetPreset returns a copy of the named configuration.
func (r *Registry) GetPreset(name string) (*config.Config, error) {
	cfg, ok := r.presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}
	return cfg.Clone(), nil
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func (r *Registry) ListPresets() []string {
	return sortedKeys(r.presets)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
