package config

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/regolith/internal/dynamo"
)

const (
	DefaultDuration     = 5.0
	DefaultController   = "none"
	DefaultPlungeTarget = 0.03
	DefaultPlungeDrag   = "w"
	ControllerNone      = "none"
	ControllerHold      = "hold"
	ControllerPlunge    = "plunge"
)

type Config struct {
	Controller string         `yaml:"controller"`
	Dt         float64        `yaml:"dt"`
	Duration   float64        `yaml:"duration"`
	Gravity    float64        `yaml:"gravity"`
	Hold       string         `yaml:"hold"`
	Material   MaterialConfig `yaml:"material"`
	Tool       ToolConfig     `yaml:"tool"`
	Scenario   ScenarioConfig `yaml:"scenario"`
	Plunge     PlungeConfig   `yaml:"plunge"`
	Workers    int            `yaml:"workers,omitempty"` // concurrent ensemble runs, 0 is one per CPU
}

type MaterialConfig struct {
	Radius         float64 `yaml:"radius"`
	Mass           float64 `yaml:"mass"`
	MinRadius      float64 `yaml:"min_radius"`
	SurfaceDensity float64 `yaml:"surface_density"`
	MaxDensity     float64 `yaml:"max_density"`
	Cohesion       float64 `yaml:"cohesion"`
	Friction       float64 `yaml:"friction"`
	Attraction     float64 `yaml:"attraction"`
}

type ToolConfig struct {
	Stiffness   float64    `yaml:"stiffness"`
	Damping     float64    `yaml:"damping"`
	HalfExtents [3]float64 `yaml:"half_extents,flow"`
	Start       [3]float64 `yaml:"start,flow"`
	MoveSpeed   float64    `yaml:"move_speed"`
	TurnSpeed   float64    `yaml:"turn_speed"`
}

type ScenarioConfig struct {
	Grid   int `yaml:"grid"`
	Layers int `yaml:"layers"`
}

type PlungeConfig struct {
	Target float64 `yaml:"target"`
	Kp     float64 `yaml:"kp"`
	Ki     float64 `yaml:"ki"`
	Kd     float64 `yaml:"kd"`
	Drag   string  `yaml:"drag"`
}

func DefaultConfig() *Config {
	p := dynamo.DefaultParams()
	return &Config{
		Controller: DefaultController,
		Dt:         p.TimeStep,
		Duration:   DefaultDuration,
		Gravity:    p.Gravity[1],
		Material: MaterialConfig{
			Radius:         p.ParticleRadius,
			Mass:           p.ParticleMass,
			MinRadius:      p.MinRadius,
			SurfaceDensity: p.SurfaceDensity,
			MaxDensity:     p.MaxDensity,
			Cohesion:       p.Cohesion,
			Friction:       p.Friction,
			Attraction:     p.AttractionRadiusFactor,
		},
		Tool: ToolConfig{
			Stiffness:   p.ToolStiffness,
			Damping:     p.ToolDamping,
			HalfExtents: p.ToolHalfExtents,
			Start:       p.ToolStart,
			MoveSpeed:   p.ToolMoveSpeed,
			TurnSpeed:   p.ToolTurnSpeed,
		},
		Scenario: ScenarioConfig{
			Grid:   p.GridSize,
			Layers: p.Layers,
		},
		Plunge: PlungeConfig{
			Target: DefaultPlungeTarget,
			Kp:     40.0,
			Ki:     0.5,
			Kd:     0.05,
			Drag:   DefaultPlungeDrag,
		},
	}
}

// Load reads a YAML file over the defaults, so a file only needs the keys it
// changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Params converts the file layout into solver parameters.
func (c *Config) Params() *dynamo.Params {
	return &dynamo.Params{
		GridSize:               c.Scenario.Grid,
		Layers:                 c.Scenario.Layers,
		ParticleRadius:         c.Material.Radius,
		ParticleMass:           c.Material.Mass,
		MinRadius:              c.Material.MinRadius,
		SurfaceDensity:         c.Material.SurfaceDensity,
		MaxDensity:             c.Material.MaxDensity,
		Cohesion:               c.Material.Cohesion,
		Friction:               c.Material.Friction,
		AttractionRadiusFactor: c.Material.Attraction,
		Gravity:                mgl64.Vec3{0, c.Gravity, 0},
		TimeStep:               c.Dt,
		ToolStiffness:          c.Tool.Stiffness,
		ToolDamping:            c.Tool.Damping,
		ToolHalfExtents:        c.Tool.HalfExtents,
		ToolMoveSpeed:          c.Tool.MoveSpeed,
		ToolTurnSpeed:          c.Tool.TurnSpeed,
		ToolStart:              c.Tool.Start,
	}
}

// Validate checks run settings and the derived solver parameters.
func (c *Config) Validate() error {
	if !(c.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	switch c.Controller {
	case ControllerNone, ControllerHold, ControllerPlunge:
	default:
		return fmt.Errorf("unknown controller: %s", c.Controller)
	}
	return c.Params().Validate()
}

// SetParam updates the field behind a solver parameter name (see
// dynamo.Params.GetParams). The change is kept only if the config still
// validates.
func (c *Config) SetParam(name string, value float64) error {
	old := *c
	switch name {
	case "cohesion":
		c.Material.Cohesion = value
	case "friction":
		c.Material.Friction = value
	case "attraction":
		c.Material.Attraction = value
	case "gravity":
		c.Gravity = value
	case "stiffness":
		c.Tool.Stiffness = value
	case "damping":
		c.Tool.Damping = value
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	if err := c.Validate(); err != nil {
		*c = old
		return err
	}
	return nil
}
