package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/softsim/internal/config"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/experiment"
	"github.com/san-kum/softsim/internal/metrics"
	"github.com/san-kum/softsim/internal/sim"
	"github.com/san-kum/softsim/internal/softbody"
)

// Candidate is one point of the grid with the metric it scored.
type Candidate struct {
	Params   map[string]float64
	Value    float64
	Diverged bool
}

// GridSearch runs every combination of physics values and ranks them by a
// metric, lowest first.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("got %d parameters but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("parameter %s has no values", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Search evaluates all combinations concurrently against base and returns
// the candidates sorted by metricName. Diverged runs score +Inf.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) ([]Candidate, error) {
	points := make([]map[string]float64, 0)
	g.expand(0, make(map[string]float64), &points)

	factories := make([]sim.Factory, len(points))
	for i, point := range points {
		cfg := *base
		for name, v := range point {
			if err := cfg.Set(name, v); err != nil {
				return nil, err
			}
		}
		factories[i] = func() (*softbody.Body, error) {
			exp, err := experiment.New(&cfg)
			if err != nil {
				return nil, fmt.Errorf("%v: %w", point, err)
			}
			return exp.Body(), nil
		}
	}

	gravity := base.Params().Gravity
	ens := sim.NewEnsemble(factories, func() []dynamo.Metric {
		return metrics.Defaults(gravity)
	})
	results, err := ens.Run(ctx, base.SimConfig())
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, len(points))
	for i, r := range results {
		value, ok := r.Metrics[metricName]
		if !ok {
			return nil, fmt.Errorf("unknown metric: %s", metricName)
		}
		c := Candidate{Params: points[i], Value: value, Diverged: r.Diverged()}
		if c.Diverged || math.IsNaN(value) {
			c.Value = math.Inf(1)
		}
		candidates[i] = c
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Value < candidates[j].Value
	})
	return candidates, nil
}

func (g *GridSearch) expand(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		point := make(map[string]float64, len(current))
		for k, v := range current {
			point[k] = v
		}
		*out = append(*out, point)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		g.expand(depth+1, current, out)
	}
	delete(current, paramName)
}
