package experiment

import (
	"context"
	"fmt"
	"testing"

	"github.com/san-kum/regolith/internal/compute"
	"github.com/san-kum/regolith/internal/config"
	"github.com/san-kum/regolith/internal/control"
	"github.com/san-kum/regolith/internal/dynamo"
	"github.com/san-kum/regolith/internal/sim"
)

func smallConfig() *config.Config {
	cfg := config.GetPreset("small")
	cfg.Duration = 0.05
	return cfg
}

func TestExperimentRun(t *testing.T) {
	exp, err := New(smallConfig(), NewRegistry(), 2, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.StepsTaken != 12 || len(result.Errors) != 0 {
		t.Errorf("steps %d errors %v", result.StepsTaken, result.Errors)
	}
	if got := len(exp.Recorder().Samples()); got != 6 {
		t.Errorf("recorded %d samples, want 6", got)
	}
	for _, name := range []string{"kinetic_energy", "floor_compliance", "tool_force_peak", "pile_height"} {
		if _, ok := result.Metrics[name]; !ok {
			t.Errorf("metric %s missing", name)
		}
	}
	if result.Metrics["floor_compliance"] != 1 {
		t.Errorf("floor compliance = %v", result.Metrics["floor_compliance"])
	}
	if exp.World().Steps != 0 {
		t.Error("Run should not advance the initial world")
	}
}

func TestExperimentHoldPress(t *testing.T) {
	cfg := smallConfig()
	cfg.Controller = config.ControllerHold
	cfg.Hold = "q"
	cfg.Tool.Start = [3]float64{0.03, 0.1, 0.03}

	exp, err := New(cfg, NewRegistry(), 1, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Metrics["tool_force_peak"] <= 0 {
		t.Errorf("pressing into the bed produced no load: %v", result.Metrics)
	}
	if _, ok := exp.Controller().(*control.Hold); !ok {
		t.Errorf("controller = %T, want *control.Hold", exp.Controller())
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"bad hold keys", func(c *config.Config) { c.Controller = config.ControllerHold; c.Hold = "xyz" }},
		{"bad drag keys", func(c *config.Config) { c.Controller = config.ControllerPlunge; c.Plunge.Drag = "!" }},
		{"unknown controller", func(c *config.Config) { c.Controller = "autopilot" }},
		{"invalid material", func(c *config.Config) { c.Material.Mass = 0 }},
		{"negative workers", func(c *config.Config) { c.Workers = -2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig()
			tt.mutate(cfg)
			if _, err := New(cfg, NewRegistry(), 1, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	want := []string{"hold", "none", "plunge"}
	got := r.ListControllers()
	if len(got) != len(want) {
		t.Fatalf("ListControllers() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ListControllers() = %v, want %v", got, want)
		}
	}

	cfg := config.GetPreset("excavate")
	ctrl, err := r.GetController(cfg)
	if err != nil {
		t.Fatal(err)
	}
	p, ok := ctrl.(*control.Plunge)
	if !ok || p.Target != cfg.Plunge.Target || !p.Drag.Forward {
		t.Errorf("plunge controller = %+v", ctrl)
	}
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	sweep := control.NewHold(dynamo.ToolInput{Left: true})
	r.Register("sweep", func(*config.Config) (sim.Controller, error) { return sweep, nil })

	names := r.ListControllers()
	if len(names) != 4 || names[3] != "sweep" {
		t.Fatalf("ListControllers() = %v", names)
	}
	cfg := smallConfig()
	cfg.Controller = "sweep"
	ctrl, err := r.GetController(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if ctrl != sweep {
		t.Errorf("GetController() = %v, want the registered controller", ctrl)
	}

	// replacing a built-in keeps the name list unchanged
	r.Register(config.ControllerNone, func(*config.Config) (sim.Controller, error) { return sweep, nil })
	cfg.Controller = config.ControllerNone
	if ctrl, _ := r.GetController(cfg); ctrl != sweep {
		t.Errorf("none not replaced: %T", ctrl)
	}
	if len(r.ListControllers()) != 4 {
		t.Errorf("ListControllers() = %v", r.ListControllers())
	}
}

func TestFactoryWithEnsemble(t *testing.T) {
	cfg := smallConfig()
	cfg.Scenario.Grid = 3
	base := cfg.Params()
	sticky := *base
	sticky.Cohesion *= 3

	ens := sim.NewEnsemble(Factory(cfg, NewRegistry(), nil))
	results, err := ens.Run(context.Background(), []sim.Variant{
		{Name: "base", Params: base},
		{Name: "sticky", Params: &sticky},
	}, sim.Config{Dt: cfg.Dt, Duration: cfg.Duration})
	if err != nil {
		t.Fatalf("ensemble error = %v", err)
	}
	if len(results) != 2 || results[1].StepsTaken != 12 || len(results[1].Final.Particles) != 18 {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestNewEnsembleWorkers(t *testing.T) {
	cfg := smallConfig()
	if got := NewEnsemble(cfg, NewRegistry(), nil).Backend().Workers(); got != compute.Default().Workers() {
		t.Errorf("default workers = %d", got)
	}

	cfg.Workers = 2
	cfg.Scenario.Grid = 3
	ens := NewEnsemble(cfg, NewRegistry(), nil)
	if ens.Backend().Workers() != 2 {
		t.Fatalf("workers = %d, want 2", ens.Backend().Workers())
	}
	base := cfg.Params()
	variants := make([]sim.Variant, 3)
	for i := range variants {
		p := *base
		p.Friction *= float64(i + 1)
		variants[i] = sim.Variant{Name: fmt.Sprintf("mu%d", i), Params: &p}
	}
	results, err := ens.Run(context.Background(), variants, sim.Config{Dt: cfg.Dt, Duration: cfg.Duration})
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range results {
		if r.StepsTaken != 12 {
			t.Errorf("variant %d took %d steps", i, r.StepsTaken)
		}
	}
}
