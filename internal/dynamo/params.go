package dynamo

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultGridSize       = 16
	DefaultLayers         = 3
	DefaultParticleRadius = 0.007
	DefaultParticleMass   = 0.0005
	DefaultMinRadius      = 0.005
	DefaultSurfaceDensity = 1270.0
	DefaultMaxDensity     = 1820.0
	DefaultCohesion       = 4.0e-5
	DefaultFriction       = 0.342
	DefaultAttraction     = 1.1
	DefaultLunarGravity   = -1.625
	DefaultTimeStep       = 1.0 / 240.0
	DefaultToolStiffness  = 500.0
	DefaultToolDamping    = 0.7
	DefaultToolMoveSpeed  = 0.03
	DefaultToolTurnSpeed  = 0.01
)

// Params holds the physical constants of a run. Solvers receive it by pointer
// and never modify it.
type Params struct {
	GridSize int
	Layers   int

	ParticleRadius float64
	ParticleMass   float64
	MinRadius      float64
	SurfaceDensity float64
	MaxDensity     float64

	Cohesion               float64 // gamma
	Friction               float64 // mu hat
	AttractionRadiusFactor float64 // R_attr / R

	Gravity  mgl64.Vec3
	TimeStep float64

	ToolStiffness   float64
	ToolDamping     float64
	ToolHalfExtents mgl64.Vec3
	ToolMoveSpeed   float64 // translation per step at full input
	ToolTurnSpeed   float64 // radians per pointer unit
	ToolStart       mgl64.Vec3
}

// DefaultParams returns the lunar regolith parameter set.
func DefaultParams() *Params {
	return &Params{
		GridSize:               DefaultGridSize,
		Layers:                 DefaultLayers,
		ParticleRadius:         DefaultParticleRadius,
		ParticleMass:           DefaultParticleMass,
		MinRadius:              DefaultMinRadius,
		SurfaceDensity:         DefaultSurfaceDensity,
		MaxDensity:             DefaultMaxDensity,
		Cohesion:               DefaultCohesion,
		Friction:               DefaultFriction,
		AttractionRadiusFactor: DefaultAttraction,
		Gravity:                mgl64.Vec3{0, DefaultLunarGravity, 0},
		TimeStep:               DefaultTimeStep,
		ToolStiffness:          DefaultToolStiffness,
		ToolDamping:            DefaultToolDamping,
		ToolHalfExtents:        mgl64.Vec3{0.025, 0.005, 0.02},
		ToolMoveSpeed:          DefaultToolMoveSpeed,
		ToolTurnSpeed:          DefaultToolTurnSpeed,
		ToolStart:              mgl64.Vec3{0, 0.3, 0},
	}
}

// AttractionRadius is the cohesive cutoff radius R * factor.
func (p *Params) AttractionRadius() float64 {
	return p.ParticleRadius * p.AttractionRadiusFactor
}

// Validate rejects parameter sets for which the force laws have zero or
// negative denominators.
func (p *Params) Validate() error {
	switch {
	case !(p.ParticleRadius > 0):
		return fmt.Errorf("%w: particle radius %g", ErrParameterBounds, p.ParticleRadius)
	case !(p.ParticleMass > 0):
		return fmt.Errorf("%w: particle mass %g", ErrParameterBounds, p.ParticleMass)
	case p.MinRadius < 0 || p.MinRadius >= p.ParticleRadius:
		return fmt.Errorf("%w: min radius %g must be in [0, %g)", ErrParameterBounds, p.MinRadius, p.ParticleRadius)
	case p.AttractionRadiusFactor < 1:
		return fmt.Errorf("%w: attraction radius factor %g below 1", ErrParameterBounds, p.AttractionRadiusFactor)
	case !(p.TimeStep > 0):
		return fmt.Errorf("%w: time step %g", ErrParameterBounds, p.TimeStep)
	case p.Cohesion < 0 || p.Friction < 0:
		return fmt.Errorf("%w: cohesion %g, friction %g", ErrParameterBounds, p.Cohesion, p.Friction)
	case p.ToolStiffness < 0 || p.ToolDamping < 0:
		return fmt.Errorf("%w: tool stiffness %g, damping %g", ErrParameterBounds, p.ToolStiffness, p.ToolDamping)
	case p.ToolHalfExtents[0] <= 0 || p.ToolHalfExtents[1] <= 0 || p.ToolHalfExtents[2] <= 0:
		return fmt.Errorf("%w: tool half extents %v", ErrParameterBounds, p.ToolHalfExtents)
	case p.SurfaceDensity > p.MaxDensity:
		return fmt.Errorf("%w: surface density %g exceeds max %g", ErrParameterBounds, p.SurfaceDensity, p.MaxDensity)
	case p.GridSize < 0 || p.Layers < 0:
		return fmt.Errorf("%w: grid %d x layers %d", ErrParameterBounds, p.GridSize, p.Layers)
	}
	return nil
}

// GetParams exposes the tunable scalars for live adjustment.
func (p *Params) GetParams() map[string]float64 {
	return map[string]float64{
		"cohesion":   p.Cohesion,
		"friction":   p.Friction,
		"attraction": p.AttractionRadiusFactor,
		"gravity":    p.Gravity[1],
		"stiffness":  p.ToolStiffness,
		"damping":    p.ToolDamping,
	}
}

// SetParam updates one tunable scalar and re-validates the set.
func (p *Params) SetParam(name string, value float64) error {
	old := *p
	switch name {
	case "cohesion":
		p.Cohesion = value
	case "friction":
		p.Friction = value
	case "attraction":
		p.AttractionRadiusFactor = value
	case "gravity":
		p.Gravity[1] = value
	case "stiffness":
		p.ToolStiffness = value
	case "damping":
		p.ToolDamping = value
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	if err := p.Validate(); err != nil {
		*p = old
		return err
	}
	return nil
}
