package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/san-kum/regolith/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Controller != ControllerNone {
		t.Errorf("expected controller none, got %s", cfg.Controller)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestParamsMatchesSolverDefaults(t *testing.T) {
	if got, want := DefaultConfig().Params(), dynamo.DefaultParams(); !reflect.DeepEqual(got, want) {
		t.Errorf("Params() = %+v\nwant %+v", got, want)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := []byte("gravity: -9.81\nmaterial:\n  cohesion: 0.0001\nscenario:\n  grid: 4\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Gravity != -9.81 || cfg.Material.Cohesion != 0.0001 || cfg.Scenario.Grid != 4 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Material.Friction != dynamo.DefaultFriction || cfg.Scenario.Layers != dynamo.DefaultLayers {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("material: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	cfg := GetPreset("excavate")

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, loaded) {
		t.Errorf("round trip changed config:\n%+v\n%+v", cfg, loaded)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero duration", func(c *Config) { c.Duration = 0 }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"unknown controller", func(c *Config) { c.Controller = "lqr" }},
		{"min radius too big", func(c *Config) { c.Material.MinRadius = 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("earth")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Gravity != -9.81 {
		t.Errorf("expected gravity -9.81, got %f", cfg.Gravity)
	}

	if GetPreset("earth") == cfg {
		t.Error("presets should return fresh configs")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}
	for _, name := range presets {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestSetParamMatchesSolver(t *testing.T) {
	for name := range dynamo.DefaultParams().GetParams() {
		cfg := DefaultConfig()
		want := cfg.Params()
		v := want.GetParams()[name] * 1.5
		if err := want.SetParam(name, v); err != nil {
			t.Fatalf("%s: solver rejected %v: %v", name, v, err)
		}
		if err := cfg.SetParam(name, v); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got := cfg.Params(); !reflect.DeepEqual(got, want) {
			t.Errorf("%s: config and solver disagree", name)
		}
	}
}

func TestSetParamRollsBack(t *testing.T) {
	cfg := DefaultConfig()
	before := *cfg
	if err := cfg.SetParam("attraction", 0.5); err == nil {
		t.Fatal("attraction below 1 accepted")
	}
	if !reflect.DeepEqual(*cfg, before) {
		t.Error("rejected change was kept")
	}
	if err := cfg.SetParam("viscosity", 1); err == nil {
		t.Error("unknown parameter accepted")
	}
}
