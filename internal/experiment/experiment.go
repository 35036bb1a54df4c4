// Package experiment assembles a runnable simulation from a config.
package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/regolith/internal/compute"
	"github.com/san-kum/regolith/internal/config"
	"github.com/san-kum/regolith/internal/dynamo"
	"github.com/san-kum/regolith/internal/metrics"
	"github.com/san-kum/regolith/internal/physics"
	"github.com/san-kum/regolith/internal/scenario"
	"github.com/san-kum/regolith/internal/sim"
	"github.com/san-kum/regolith/internal/telemetry"
)

type Experiment struct {
	cfg        *config.Config
	params     *dynamo.Params
	world      *dynamo.World
	engine     *physics.Engine
	controller sim.Controller
	simulator  *sim.Simulator
	recorder   *telemetry.Recorder
}

// New validates cfg and builds the bed, engine, controller and simulator.
// Telemetry is recorded every stride ticks.
func New(cfg *config.Config, registry *Registry, stride int, logger *slog.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	params := cfg.Params()
	world, err := scenario.Build(params)
	if err != nil {
		return nil, err
	}
	ctrl, err := registry.GetController(cfg)
	if err != nil {
		return nil, err
	}

	e := &Experiment{
		cfg:        cfg,
		params:     params,
		world:      world,
		engine:     physics.NewEngine(params),
		controller: ctrl,
		recorder:   telemetry.NewRecorder(stride),
	}
	e.simulator = sim.New(e.engine, ctrl)
	e.simulator.SetLogger(logger)
	for _, m := range metrics.Default(params.Gravity[1]) {
		e.simulator.AddMetric(m)
	}
	e.simulator.AddObserver(e.recorder)
	return e, nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	e.recorder.Reset()
	return e.simulator.Run(ctx, e.world, e.SimConfig())
}

func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		Dt:            e.cfg.Dt,
		Duration:      e.cfg.Duration,
		ValidateState: true,
	}
}

func (e *Experiment) Config() *config.Config        { return e.cfg }
func (e *Experiment) Params() *dynamo.Params        { return e.params }
func (e *Experiment) World() *dynamo.World          { return e.world }
func (e *Experiment) Engine() *physics.Engine       { return e.engine }
func (e *Experiment) Controller() sim.Controller    { return e.controller }
func (e *Experiment) Simulator() *sim.Simulator     { return e.simulator }
func (e *Experiment) Recorder() *telemetry.Recorder { return e.recorder }

// Factory adapts experiments to sim.Ensemble: every variant gets its own
// bed, engine and controller built from cfg with the variant parameters.
func Factory(cfg *config.Config, registry *Registry, logger *slog.Logger) sim.RunFactory {
	return func(p *dynamo.Params) (*sim.Simulator, *dynamo.World, error) {
		if err := p.Validate(); err != nil {
			return nil, nil, err
		}
		world, err := scenario.Build(p)
		if err != nil {
			return nil, nil, err
		}
		ctrl, err := registry.GetController(cfg)
		if err != nil {
			return nil, nil, err
		}
		s := sim.New(physics.NewEngine(p), ctrl)
		if logger != nil {
			s.SetLogger(logger)
		}
		for _, m := range metrics.Default(p.Gravity[1]) {
			s.AddMetric(m)
		}
		return s, world, nil
	}
}

// NewEnsemble runs variants of cfg with at most cfg.Workers runs at once,
// or one per CPU when Workers is zero.
func NewEnsemble(cfg *config.Config, registry *Registry, logger *slog.Logger) *sim.Ensemble {
	ens := sim.NewEnsemble(Factory(cfg, registry, logger))
	if cfg.Workers > 0 {
		ens.SetBackend(compute.NewCPUBackend(cfg.Workers))
	}
	return ens
}
