package optim

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/san-kum/robosim/internal/config"
	"github.com/san-kum/robosim/internal/scenario"
	"github.com/san-kum/robosim/internal/sim"
)

// Build returns a fresh simulator for one point of the grid.
type Build func(params map[string]float64) (*sim.Simulator, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Points enumerates every combination of the parameter ranges, the last
// parameter varying fastest.
func (g *GridSearch) Points() []map[string]float64 {
	points := make([]map[string]float64, 0)
	g.collect(0, make(map[string]float64), &points)
	return points
}

func (g *GridSearch) collect(depth int, current map[string]float64, points *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*points = append(*points, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val
		g.collect(depth+1, newParams, points)
	}
}

// Search runs every grid point in parallel and returns the parameters that
// minimise metricName.
func (g *GridSearch) Search(ctx context.Context, build Build, cfg sim.Config, metricName string) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, errors.Errorf("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}
	points := g.Points()
	if len(points) == 0 {
		return nil, 0, errors.New("empty grid")
	}

	factories := make([]sim.Factory, len(points))
	for i, p := range points {
		p := p
		factories[i] = func() (*sim.Simulator, error) { return build(p) }
	}
	results, err := sim.RunBatch(ctx, factories, cfg)
	if err != nil {
		return nil, 0, errors.Wrap(err, "grid search")
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	for i, res := range results {
		val, ok := res.Metrics[metricName]
		if !ok {
			return nil, 0, errors.Errorf("metric %q not produced", metricName)
		}
		if val < best {
			best = val
			bestParams = points[i]
		}
	}
	return bestParams, best, nil
}

// Gain parameter names understood by WithGains.
const (
	HeadingKp = "heading_kp"
	HeadingKd = "heading_kd"
	WheelKp   = "wheel_kp"
	WheelKd   = "wheel_kd"
)

// WithGains returns a copy of base with the control gains in params set.
func WithGains(base *config.Config, params map[string]float64) *config.Config {
	cfg := base.Clone()
	for k, v := range params {
		switch k {
		case HeadingKp:
			cfg.Control.HeadingKp = v
		case HeadingKd:
			cfg.Control.HeadingKd = v
		case WheelKp:
			cfg.Control.WheelKp = v
		case WheelKd:
			cfg.Control.WheelKd = v
		}
	}
	return cfg
}

// ScenarioBuild builds the named scenario with the grid point applied as
// control gains over base.
func ScenarioBuild(reg *scenario.Registry, name string, base *config.Config, params scenario.Params) Build {
	return func(gains map[string]float64) (*sim.Simulator, error) {
		return scenario.Factory(reg, scenario.Config{
			Scenario: name,
			Robot:    WithGains(base, gains),
			Params:   params,
		})()
	}
}

// TuneHeading searches heading PD gains on a scenario, scoring by its
// heading_error metric.
func TuneHeading(ctx context.Context, reg *scenario.Registry, name string, base *config.Config, kps, kds []float64, ticks int) (map[string]float64, float64, error) {
	g := NewGridSearch([]string{HeadingKp, HeadingKd}, [][]float64{kps, kds})
	return g.Search(ctx, ScenarioBuild(reg, name, base, nil), sim.Config{Ticks: ticks}, "heading_error")
}
