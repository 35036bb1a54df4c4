package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/regolith/internal/dynamo"
)

type Simulator struct {
	engine     Stepper
	controller Controller
	metrics    []Metric
	observers  []Observer
	logger     *slog.Logger
}

func New(engine Stepper, controller Controller) *Simulator {
	return &Simulator{
		engine:     engine,
		controller: controller,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		logger:     slog.Default(),
	}
}

func (s *Simulator) AddMetric(m Metric)       { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)   { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(l *slog.Logger) { s.logger = l }
func (s *Simulator) Metrics() []Metric        { return s.metrics }

// Run steps a copy of world0 for cfg.Duration. The caller's world is left
// untouched; the evolved copy is returned in Result.Final.
func (s *Simulator) Run(ctx context.Context, world0 *dynamo.World, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	w := world0.Clone()
	start := w.Time
	s.logger.Debug("run started", "particles", len(w.Particles), "steps", steps, "dt", cfg.Dt)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			result.Final = w
			result.SimTime = w.Time - start
			return result, ctx.Err()
		default:
		}

		in := s.controller.Compute(w, w.Time)
		stats := s.engine.StepWorld(w, cfg.Dt, in)

		if cfg.ValidateState && !w.IsValid() {
			err := &dynamo.SimulationError{Step: w.Steps, Time: w.Time, Wrapped: dynamo.ErrUnstable}
			s.logger.Warn("simulation diverged", "step", w.Steps, "time", w.Time)
			result.Errors = append(result.Errors, err)
			break
		}

		for _, m := range s.metrics {
			m.Observe(w, stats)
		}
		for _, obs := range s.observers {
			obs.OnStep(w, in, stats)
		}
		result.StepsTaken++
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Final = w
	result.SimTime = w.Time - start

	s.logger.Debug("run finished", "steps", result.StepsTaken, "errors", len(result.Errors))
	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if !(cfg.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.Dt > cfg.Duration {
		return fmt.Errorf("dt %f exceeds duration %f", cfg.Dt, cfg.Duration)
	}
	return nil
}

// RunWithCallback steps w in place until the callback returns false, the
// duration elapses or ctx is cancelled. The callback sees the world after
// every tick.
func (s *Simulator) RunWithCallback(ctx context.Context, w *dynamo.World, cfg Config, callback func(*dynamo.World, dynamo.ToolInput, dynamo.StepStats) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		in := s.controller.Compute(w, w.Time)
		stats := s.engine.StepWorld(w, cfg.Dt, in)

		if cfg.ValidateState && !w.IsValid() {
			return &dynamo.SimulationError{Step: w.Steps, Time: w.Time, Wrapped: dynamo.ErrUnstable}
		}

		if !callback(w, in, stats) {
			return nil
		}
	}

	return nil
}
