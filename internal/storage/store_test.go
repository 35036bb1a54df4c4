package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/regolith/internal/config"
	"github.com/san-kum/regolith/internal/dynamo"
	"github.com/san-kum/regolith/internal/sim"
	"github.com/san-kum/regolith/internal/telemetry"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func testResult() *sim.Result {
	return &sim.Result{
		StepsTaken: 3,
		Metrics:    map[string]float64{"tool_force_peak": 1.5},
		Final:      &dynamo.World{Particles: make([]dynamo.Particle, 7)},
		Errors:     []error{dynamo.ErrUnstable},
	}
}

func TestSaveLoad(t *testing.T) {
	s := testStore(t)
	cfg := config.GetPreset("small")
	samples := []telemetry.Sample{{Step: 1, Force: 0.5}, {Step: 2, Force: 1.5}}

	id, err := s.Save("small", cfg, testResult(), samples)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	meta, err := s.Load(id)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if meta.Particles != 7 || meta.Steps != 3 || meta.Metrics["tool_force_peak"] != 1.5 {
		t.Errorf("metadata = %+v", meta)
	}
	if len(meta.Errors) != 1 || meta.Controller != cfg.Controller {
		t.Errorf("metadata = %+v", meta)
	}

	got, err := s.LoadTelemetry(id)
	if err != nil {
		t.Fatalf("LoadTelemetry() error = %v", err)
	}
	if len(got) != 2 || got[1].Force != 1.5 {
		t.Errorf("telemetry = %+v", got)
	}

	loaded, err := s.LoadConfig(id)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Scenario.Grid != cfg.Scenario.Grid {
		t.Errorf("config grid = %d, want %d", loaded.Scenario.Grid, cfg.Scenario.Grid)
	}
}

func TestList(t *testing.T) {
	s := testStore(t)

	runs, err := s.List()
	if err != nil || len(runs) != 0 {
		t.Fatalf("empty List() = %v, %v", runs, err)
	}

	first, _ := s.Save("", config.DefaultConfig(), testResult(), nil)
	second, _ := s.Save("earth", config.GetPreset("earth"), testResult(), nil)
	if err := os.Mkdir(filepath.Join(s.baseDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(runs) != 2 || runs[0].ID != first || runs[1].ID != second {
		t.Errorf("List() = %+v", runs)
	}
}

func TestListMissingDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nope"))
	runs, err := s.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("List() = %v, %v", runs, err)
	}
}

func TestLoadMissing(t *testing.T) {
	s := testStore(t)
	if _, err := s.Load("ghost"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Load() error = %v, want ErrRunNotFound", err)
	}
	if _, err := s.LoadTelemetry("ghost"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("LoadTelemetry() error = %v, want ErrRunNotFound", err)
	}
}
