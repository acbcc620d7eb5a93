package sim

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Simulator runs an arena tick by tick: the driver submits commands, every
// robot steps, then the engine advances by one fixed step.
type Simulator struct {
	arena     *Arena
	driver    Driver
	metrics   []Metric
	observers []Observer
	log       golog.Logger
	tick      int
}

func New(arena *Arena, driver Driver) *Simulator {
	if driver == nil {
		driver = DriverFunc(func(*Arena, int) {})
	}
	return &Simulator{
		arena:     arena,
		driver:    driver,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       zap.NewNop().Sugar(),
	}
}

func (s *Simulator) SetLogger(l golog.Logger) { s.log = l }
func (s *Simulator) AddMetric(m Metric)       { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)   { s.observers = append(s.observers, o) }
func (s *Simulator) Arena() *Arena            { return s.arena }
func (s *Simulator) Tick() int                { return s.tick }

// Step advances one tick and returns the resulting frame.
func (s *Simulator) Step() Frame {
	s.driver.Drive(s.arena, s.tick)
	s.arena.step()
	s.tick++

	f := s.arena.frame(s.tick)
	for _, m := range s.metrics {
		m.Observe(f)
	}
	for _, obs := range s.observers {
		obs.OnFrame(f)
	}
	return f
}

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{Metrics: make(map[string]float64)}
	if cfg.Record {
		result.Frames = make([]Frame, 0, cfg.Ticks)
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	s.log.Infow("run start", "ticks", cfg.Ticks, "robots", len(s.arena.robots))
	for i := 0; i < cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		f := s.Step()
		result.Final = f
		result.TicksTaken++
		if cfg.Record {
			result.Frames = append(result.Frames, f)
		}
	}

	s.collect(result)
	s.log.Infow("run finished", "ticks", result.TicksTaken, "metrics", result.Metrics)
	return result, nil
}

// RunWithCallback steps until the context ends, cfg.Ticks ticks have run or
// the callback returns false.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(Frame) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	for i := 0; i < cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(s.Step()) {
			return nil
		}
	}
	return nil
}

// MetricValues returns the current value of every metric.
func (s *Simulator) MetricValues() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(cfg Config) error {
	if cfg.Ticks <= 0 {
		return errors.Errorf("ticks must be positive, got %d", cfg.Ticks)
	}
	return nil
}
