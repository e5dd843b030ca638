// Package optim searches controller tunings against a set of scenarios.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/cruisectl/internal/config"
	"github.com/san-kum/cruisectl/internal/experiment"
	"github.com/san-kum/cruisectl/internal/scenario"
)

var ErrNoCandidate = errors.New("optim: no candidate could be evaluated")

// Objective scores one parameter assignment. Lower is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type Result struct {
	Params    map[string]float64
	Value     float64
	Evaluated int
	Skipped   int
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(params), len(ranges))
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Search evaluates every point of the grid sequentially. Points whose
// objective fails are skipped.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (*Result, error) {
	res := &Result{Value: math.Inf(1)}

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), objective, res); err != nil {
		return nil, err
	}
	if res.Params == nil {
		return nil, ErrNoCandidate
	}
	return res, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	objective Objective,
	res *Result,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		val, err := objective(ctx, current)
		if err != nil || math.IsNaN(val) {
			res.Skipped++
			return nil
		}
		res.Evaluated++

		if val < res.Value {
			res.Value = val
			res.Params = make(map[string]float64, len(current))
			for k, v := range current {
				res.Params[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, objective, res); err != nil {
			return err
		}
	}
	return nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	out[n-1] = hi
	return out
}

// CollisionPenalty is added to the objective for every scenario that ends in
// contact.
const CollisionPenalty = 1e6

// ScenarioObjective sums a metric over the scenarios, each run with a fresh
// controller built from base plus the candidate parameters.
func ScenarioObjective(reg *experiment.Registry, base *config.Config, scenarios []*scenario.Scenario, metric string) Objective {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		cfg := base
		for name, v := range params {
			next, err := cfg.WithParam(name, v)
			if err != nil {
				return 0, err
			}
			cfg = next
		}

		total := 0.0
		for _, sc := range scenarios {
			res, err := experiment.New(cfg, sc).Run(ctx, reg)
			if err != nil {
				return 0, err
			}
			val, ok := res.Metrics[metric]
			if !ok {
				return 0, fmt.Errorf("optim: unknown metric %q", metric)
			}
			total += val
			if res.Collided {
				total += CollisionPenalty
			}
		}
		return total, nil
	}
}
