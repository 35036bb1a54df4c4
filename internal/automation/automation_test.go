package automation

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/regolith/internal/config"
	"github.com/san-kum/regolith/internal/experiment"
	"github.com/san-kum/regolith/internal/storage"
)

const script = `name: cohesion ladder
description: dry and sticky beds under a pressing tool
steps:
  - name: dry
    preset: small
    duration: 0.05
    params:
      cohesion: 0
  - preset: small
    controller: hold
    hold: q
    duration: 0.05
    params:
      cohesion: 1.2e-4
      attraction: 1.2
`

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScript(t *testing.T) {
	s, err := LoadScript(writeScript(t, script))
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	if s.Name != "cohesion ladder" || len(s.Steps) != 2 {
		t.Fatalf("script = %+v", s)
	}
	if s.Steps[1].Params["attraction"] != 1.2 {
		t.Errorf("params = %v", s.Steps[1].Params)
	}

	if _, err := LoadScript(writeScript(t, "name: empty\n")); err == nil {
		t.Error("script without steps accepted")
	}
	if _, err := LoadScript(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestStepResolve(t *testing.T) {
	tests := []struct {
		name    string
		step    Step
		wantErr bool
		check   func(*config.Config) bool
	}{
		{"defaults", Step{}, false, func(c *config.Config) bool { return c.Controller == config.ControllerNone }},
		{"preset", Step{Preset: "press"}, false, func(c *config.Config) bool { return c.Hold == "q" }},
		{"override", Step{Preset: "small", Duration: 0.3, Dt: 0.002}, false, func(c *config.Config) bool {
			return c.Duration == 0.3 && c.Dt == 0.002 && c.Scenario.Grid == 6
		}},
		{"params", Step{Params: map[string]float64{"friction": 0.9}}, false, func(c *config.Config) bool {
			return c.Material.Friction == 0.9
		}},
		{"unknown preset", Step{Preset: "mars"}, true, nil},
		{"bad param", Step{Params: map[string]float64{"cohesion": -1}}, true, nil},
		{"bad controller", Step{Controller: "pid"}, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := tt.step.Resolve()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("unexpected config %+v", cfg)
			}
		})
	}
}

func TestRunnerStoresSteps(t *testing.T) {
	s, err := LoadScript(writeScript(t, script))
	if err != nil {
		t.Fatal(err)
	}
	store := storage.New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	results, err := NewRunner(store, nil).Run(context.Background(), s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 2 || results[0].Name != "dry" || results[1].Name != "small" {
		t.Fatalf("results = %+v", results)
	}
	for _, r := range results {
		if r.RunID == "" || r.Result.StepsTaken != 12 {
			t.Errorf("%s: id %q steps %d", r.Name, r.RunID, r.Result.StepsTaken)
		}
		cfg, err := store.LoadConfig(r.RunID)
		if err != nil {
			t.Fatalf("LoadConfig(%s): %v", r.RunID, err)
		}
		if cfg.Duration != 0.05 {
			t.Errorf("%s stored duration %v", r.Name, cfg.Duration)
		}
	}
	runs, _ := store.List()
	if len(runs) != 2 {
		t.Errorf("stored %d runs, want 2", len(runs))
	}
}

func TestRunnerStopsAtFailingStep(t *testing.T) {
	s := &Script{Steps: []Step{
		{Preset: "small", Duration: 0.02},
		{Preset: "small", Controller: "pid"},
		{Preset: "small", Duration: 0.02},
	}}
	results, err := NewRunner(nil, nil).Run(context.Background(), s)
	if err == nil {
		t.Fatal("failing step not reported")
	}
	if len(results) != 1 || results[0].RunID != "" {
		t.Errorf("results = %+v", results)
	}
}

func TestPerturb(t *testing.T) {
	base := config.DefaultConfig().Params()
	variants, err := Perturb(base, 5, 0.2, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("Perturb: %v", err)
	}
	if len(variants) != 5 {
		t.Fatalf("variants = %d", len(variants))
	}
	start := base.GetParams()
	for _, v := range variants {
		for name, x := range v.Params.GetParams() {
			lo, hi := start[name]*0.8, start[name]*1.2
			if lo > hi {
				lo, hi = hi, lo
			}
			if x < lo || x > hi {
				t.Errorf("%s %s = %v outside [%v, %v]", v.Name, name, x, lo, hi)
			}
		}
		if v.Params.AttractionRadiusFactor < 1 {
			t.Errorf("%s: invalid attraction kept", v.Name)
		}
	}
	if variants[0].Params == variants[1].Params {
		t.Error("variants share parameters")
	}
}

func TestRunMonteCarlo(t *testing.T) {
	base := config.GetPreset("small")
	base.Duration = 0.02
	results, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{Base: base, Trials: 3, Spread: 0.1, Seed: 1}, experiment.NewRegistry(), nil)
	if err != nil {
		t.Fatalf("RunMonteCarlo: %v", err)
	}
	stable, unstable := MonteCarloStats(results)
	if stable != 3 || unstable != 0 {
		t.Errorf("stable %d unstable %d", stable, unstable)
	}
	if results[2].Trial != 2 || results[2].Result.StepsTaken != 5 {
		t.Errorf("trial result = %+v", results[2])
	}

	if _, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{Base: base}, experiment.NewRegistry(), nil); err == nil {
		t.Error("zero trials accepted")
	}
}
