package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/regolith/internal/config"
	"github.com/san-kum/regolith/internal/sim"
	"github.com/san-kum/regolith/internal/telemetry"
)

const (
	metadataFile  = "metadata.json"
	telemetryFile = "telemetry.csv"
	configFile    = "config.yaml"
)

// ErrRunNotFound is returned when a run directory has no metadata.
var ErrRunNotFound = errors.New("storage: run not found")

// Store keeps one directory per run holding its metadata, the config it was
// started with and its telemetry. Particle state is never persisted.
type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Preset     string             `json:"preset,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Particles  int                `json:"particles"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Controller string             `json:"controller"`
	Metrics    map[string]float64 `json:"metrics"`
	Errors     []string           `json:"errors,omitempty"`
}

// Save writes a finished run and returns its ID.
func (s *Store) Save(preset string, cfg *config.Config, result *sim.Result, samples []telemetry.Sample) (string, error) {
	ts := s.now()
	name := preset
	if name == "" {
		name = "run"
	}
	runID := fmt.Sprintf("%s_%d", name, ts.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Preset:     preset,
		Timestamp:  ts,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Controller: cfg.Controller,
		Steps:      result.StepsTaken,
		Metrics:    result.Metrics,
	}
	if result.Final != nil {
		meta.Particles = len(result.Final.Particles)
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, telemetryFile))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := telemetry.WriteAll(f, samples); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// List returns all readable runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", runID, err)
	}

	return &meta, nil
}

// LoadConfig returns the config a run was started with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

func (s *Store) LoadTelemetry(runID string) ([]telemetry.Sample, error) {
	f, err := os.Open(s.TelemetryPath(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	return telemetry.ReadAll(f)
}

// TelemetryPath is the CSV file of a run.
func (s *Store) TelemetryPath(runID string) string {
	return filepath.Join(s.baseDir, runID, telemetryFile)
}
