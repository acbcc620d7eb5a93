package automation

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/san-kum/robosim/internal/scenario"
	"github.com/san-kum/robosim/internal/sim"
)

// Sweep runs a scenario once per evenly spaced value of one parameter.
type Sweep struct {
	Base   scenario.Config
	Param  string
	Min    float64
	Max    float64
	Steps  int
	Metric string
}

type SweepPoint struct {
	Value   float64
	Metrics map[string]float64
}

func (s *Sweep) Values() []float64 {
	if s.Steps == 1 {
		return []float64{s.Min}
	}
	vals := make([]float64, s.Steps)
	step := (s.Max - s.Min) / float64(s.Steps-1)
	for i := range vals {
		vals[i] = s.Min + float64(i)*step
	}
	return vals
}

func RunSweep(ctx context.Context, reg *scenario.Registry, s *Sweep) ([]SweepPoint, error) {
	if s.Steps <= 0 {
		return nil, errors.Errorf("sweep needs at least one step, got %d", s.Steps)
	}
	if s.Param == "" {
		return nil, errors.New("sweep needs a parameter name")
	}

	vals := s.Values()
	cfgs := make([]scenario.Config, len(vals))
	for i, v := range vals {
		cfgs[i] = withParam(s.Base, s.Param, v)
	}
	results, err := runConfigs(ctx, reg, cfgs)
	if err != nil {
		return nil, err
	}

	points := make([]SweepPoint, len(vals))
	for i, res := range results {
		points[i] = SweepPoint{Value: vals[i], Metrics: res.Metrics}
	}
	return points, nil
}

// Best returns the point with the lowest value of the sweep metric.
func (s *Sweep) Best(points []SweepPoint) (SweepPoint, error) {
	best, found := SweepPoint{}, false
	for _, p := range points {
		v, ok := p.Metrics[s.Metric]
		if !ok {
			return SweepPoint{}, errors.Errorf("metric %q not reported", s.Metric)
		}
		if !found || v < best.Metrics[s.Metric] {
			best, found = p, true
		}
	}
	if !found {
		return SweepPoint{}, errors.New("no sweep points")
	}
	return best, nil
}

// MonteCarlo reruns a scenario with every listed parameter perturbed
// uniformly by up to its spread around the base value. A parameter missing
// from Base.Params is perturbed around 0, not the scenario default.
type MonteCarlo struct {
	Base   scenario.Config
	Spread map[string]float64
	Trials int
	Seed   int64
}

type MonteCarloTrial struct {
	Params  scenario.Params
	Metrics map[string]float64
}

// Stats summarises one metric over all trials.
type Stats struct {
	Mean, StdDev float64
	Min, Max     float64
}

func RunMonteCarlo(ctx context.Context, reg *scenario.Registry, mc *MonteCarlo) ([]MonteCarloTrial, error) {
	if mc.Trials <= 0 {
		return nil, errors.Errorf("monte carlo needs at least one trial, got %d", mc.Trials)
	}
	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	cfgs := make([]scenario.Config, mc.Trials)
	for i := range cfgs {
		cfg := mc.Base
		for _, key := range sortedKeys(mc.Spread) {
			base := mc.Base.Params.Get(key, 0)
			cfg = withParam(cfg, key, base+(rng.Float64()*2-1)*mc.Spread[key])
		}
		cfgs[i] = cfg
	}

	results, err := runConfigs(ctx, reg, cfgs)
	if err != nil {
		return nil, err
	}
	trials := make([]MonteCarloTrial, len(results))
	for i, res := range results {
		trials[i] = MonteCarloTrial{Params: cfgs[i].Params, Metrics: res.Metrics}
	}
	return trials, nil
}

// Summarize computes Stats for metric over trials that reported it.
func Summarize(trials []MonteCarloTrial, metric string) (Stats, error) {
	var vals []float64
	for _, t := range trials {
		if v, ok := t.Metrics[metric]; ok {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return Stats{}, errors.Errorf("metric %q not reported", metric)
	}

	st := Stats{Min: vals[0], Max: vals[0]}
	for _, v := range vals {
		st.Mean += v
		st.Min = math.Min(st.Min, v)
		st.Max = math.Max(st.Max, v)
	}
	st.Mean /= float64(len(vals))
	for _, v := range vals {
		st.StdDev += (v - st.Mean) * (v - st.Mean)
	}
	st.StdDev = math.Sqrt(st.StdDev / float64(len(vals)))
	return st, nil
}

func runConfigs(ctx context.Context, reg *scenario.Registry, cfgs []scenario.Config) ([]*sim.Result, error) {
	if len(cfgs) == 0 {
		return nil, nil
	}
	factories := make([]sim.Factory, len(cfgs))
	for i, cfg := range cfgs {
		factories[i] = scenario.Factory(reg, cfg)
	}
	// every trial shares one length, so the first decides it
	t, err := scenario.New(reg, cfgs[0], nil)
	if err != nil {
		return nil, err
	}
	return sim.RunBatch(ctx, factories, t.SimConfig())
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// withParam copies cfg with one parameter replaced.
func withParam(cfg scenario.Config, key string, v float64) scenario.Config {
	p := make(scenario.Params, len(cfg.Params)+1)
	for k, old := range cfg.Params {
		p[k] = old
	}
	p[key] = v
	cfg.Params = p
	return cfg
}
