package scenario

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/san-kum/robosim/internal/config"
	"github.com/san-kum/robosim/internal/sim"
)

// Params are the numeric knobs of a scenario, such as a drive speed or a
// target heading. Missing keys fall back to the scenario default.
type Params map[string]float64

func (p Params) Get(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Scenario is a scripted setup. Setup places robots and the ball on a fresh
// arena and returns the driver that scripts them plus the metrics that
// score the run.
type Scenario struct {
	Name        string
	Description string
	Ticks       int
	Setup       func(a *sim.Arena, p Params, ticks int) (sim.Driver, []sim.Metric)
}

type Config struct {
	Scenario string
	Robot    *config.Config
	// Ticks overrides the scenario length when positive.
	Ticks  int
	Record bool
	Params Params
}

// Trial is one built scenario ready to run.
type Trial struct {
	cfg       Config
	scenario  *Scenario
	simulator *sim.Simulator
}

func New(reg *Registry, cfg Config, log golog.Logger) (*Trial, error) {
	sc, err := reg.Get(cfg.Scenario)
	if err != nil {
		return nil, err
	}
	if cfg.Robot == nil {
		cfg.Robot = config.DefaultConfig()
	}
	if err := cfg.Robot.Validate(); err != nil {
		return nil, errors.Wrapf(err, "scenario %s", sc.Name)
	}
	if cfg.Ticks <= 0 {
		cfg.Ticks = sc.Ticks
	}

	arena := sim.NewArena(cfg.Robot, log)
	driver, metrics := sc.Setup(arena, cfg.Params, cfg.Ticks)
	s := sim.New(arena, driver)
	if log != nil {
		s.SetLogger(log)
	}
	for _, m := range metrics {
		s.AddMetric(m)
	}
	return &Trial{cfg: cfg, scenario: sc, simulator: s}, nil
}

func (t *Trial) Run(ctx context.Context) (*sim.Result, error) {
	return t.simulator.Run(ctx, t.SimConfig())
}

func (t *Trial) SimConfig() sim.Config {
	return sim.Config{Ticks: t.cfg.Ticks, Record: t.cfg.Record}
}

// Simulator returns the underlying simulator for adding observers.
func (t *Trial) Simulator() *sim.Simulator { return t.simulator }
func (t *Trial) Scenario() *Scenario       { return t.scenario }
func (t *Trial) Config() Config            { return t.cfg }

// Factory adapts cfg into a sim.Factory so several trials can run through
// sim.RunBatch.
func Factory(reg *Registry, cfg Config) sim.Factory {
	return func() (*sim.Simulator, error) {
		t, err := New(reg, cfg, nil)
		if err != nil {
			return nil, err
		}
		return t.Simulator(), nil
	}
}
