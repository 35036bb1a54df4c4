// Package automation runs scripted batches of simulations and randomised
// robustness studies.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/regolith/internal/config"
	"github.com/san-kum/regolith/internal/dynamo"
	"github.com/san-kum/regolith/internal/experiment"
	"github.com/san-kum/regolith/internal/sim"
	"github.com/san-kum/regolith/internal/storage"
)

// Script is a named sequence of runs.
type Script struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step describes one run. Preset and Config pick the base configuration,
// Config winning when both are set; the remaining fields override it.
type Step struct {
	Name       string             `yaml:"name"`
	Preset     string             `yaml:"preset"`
	Config     string             `yaml:"config"`
	Controller string             `yaml:"controller"`
	Hold       string             `yaml:"hold"`
	Duration   float64            `yaml:"duration"`
	Dt         float64            `yaml:"dt"`
	Params     map[string]float64 `yaml:"params"`
}

// StepResult is the outcome of one step. RunID is empty when the batch is
// not stored.
type StepResult struct {
	Name   string
	RunID  string
	Result *sim.Result
}

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("%s: script has no steps", path)
	}
	return &script, nil
}

// Resolve builds the validated configuration for a step.
func (s Step) Resolve() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if s.Config != "" {
		loaded, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if s.Controller != "" {
		cfg.Controller = s.Controller
	}
	if s.Hold != "" {
		cfg.Hold = s.Hold
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}

	names := make([]string, 0, len(s.Params))
	for k := range s.Params {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if err := cfg.SetParam(k, s.Params[k]); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

func (s Step) label(i int) string {
	switch {
	case s.Name != "":
		return s.Name
	case s.Preset != "":
		return s.Preset
	}
	return fmt.Sprintf("step%d", i+1)
}

// Runner executes scripts. A nil Store skips persistence.
type Runner struct {
	Registry *experiment.Registry
	Store    *storage.Store
	Stride   int
	Logger   *slog.Logger
}

func NewRunner(store *storage.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{Registry: experiment.NewRegistry(), Store: store, Stride: 10, Logger: logger}
}

// Run executes the steps in order and stops at the first failing step,
// returning the results gathered so far.
func (r *Runner) Run(ctx context.Context, script *Script) ([]StepResult, error) {
	results := make([]StepResult, 0, len(script.Steps))

	for i, step := range script.Steps {
		name := step.label(i)
		r.Logger.Info("batch step", "script", script.Name, "step", i+1, "of", len(script.Steps), "name", name)

		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}
		exp, err := experiment.New(cfg, r.Registry, r.Stride, r.Logger)
		if err != nil {
			return results, fmt.Errorf("step %d (%s) setup: %w", i+1, name, err)
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d (%s) run: %w", i+1, name, err)
		}

		sr := StepResult{Name: name, Result: res}
		if r.Store != nil {
			sr.RunID, err = r.Store.Save(name, cfg, res, exp.Recorder().Samples())
			if err != nil {
				return results, fmt.Errorf("step %d (%s) save: %w", i+1, name, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// MonteCarloConfig perturbs every tunable parameter of Base by a uniform
// factor in [1-Spread, 1+Spread] per trial.
type MonteCarloConfig struct {
	Base   *config.Config
	Trials int
	Spread float64
	Seed   int64
}

type MonteCarloResult struct {
	Trial  int
	Params map[string]float64
	Stable bool
	Result *sim.Result
}

// Perturb draws the trial parameter sets. Draws the solver rejects are
// retried with a fresh factor, up to 32 times per parameter.
func Perturb(base *dynamo.Params, trials int, spread float64, rng *rand.Rand) ([]sim.Variant, error) {
	names := make([]string, 0)
	for k := range base.GetParams() {
		names = append(names, k)
	}
	sort.Strings(names)

	variants := make([]sim.Variant, 0, trials)
	for t := 0; t < trials; t++ {
		p := *base
		for _, name := range names {
			v := base.GetParams()[name]
			var err error
			for try := 0; try < 32; try++ {
				if err = p.SetParam(name, v*(1+(rng.Float64()*2-1)*spread)); err == nil {
					break
				}
			}
			if err != nil {
				return nil, fmt.Errorf("trial %d: %w", t, err)
			}
		}
		variants = append(variants, sim.Variant{Name: fmt.Sprintf("trial%d", t), Params: &p})
	}
	return variants, nil
}

// RunMonteCarlo runs all trials concurrently. A trial is stable when it
// finished without diverging.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry, logger *slog.Logger) ([]MonteCarloResult, error) {
	if cfg.Trials < 1 {
		return nil, fmt.Errorf("need at least one trial, got %d", cfg.Trials)
	}
	if err := cfg.Base.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	variants, err := Perturb(cfg.Base.Params(), cfg.Trials, cfg.Spread, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}

	ens := experiment.NewEnsemble(cfg.Base, registry, logger)
	runs, err := ens.Run(ctx, variants, sim.Config{Dt: cfg.Base.Dt, Duration: cfg.Base.Duration, ValidateState: true})
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for i, res := range runs {
		results[i] = MonteCarloResult{
			Trial:  i,
			Params: variants[i].Params.GetParams(),
			Stable: len(res.Errors) == 0 && res.Final.IsValid(),
			Result: res,
		}
	}
	return results, nil
}

// MonteCarloStats counts stable and unstable trials.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
