package dynamo

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Particle is one spherical regolith grain.
type Particle struct {
	Position     mgl64.Vec3
	Velocity     mgl64.Vec3
	Acceleration mgl64.Vec3 // per-tick accumulator, reset to gravity at the start of every step
	Mass         float64
	Radius       float64
	MinRadius    float64 // lower bound of Radius under compression
	Density      float64 // tracked only, does not feed back into Radius
}

// NewParticle creates a particle at rest. Mass and radius must be positive and
// minRadius may not exceed radius.
func NewParticle(pos mgl64.Vec3, mass, radius, minRadius, density float64) (Particle, error) {
	if !(mass > 0) {
		return Particle{}, fmt.Errorf("%w: mass %g", ErrInvalidMass, mass)
	}
	if !(radius > 0) || minRadius < 0 {
		return Particle{}, fmt.Errorf("%w: radius %g, min radius %g", ErrInvalidRadius, radius, minRadius)
	}
	if minRadius > radius {
		return Particle{}, fmt.Errorf("%w: min radius %g exceeds radius %g", ErrInvalidRadius, minRadius, radius)
	}
	return Particle{
		Position:  pos,
		Mass:      mass,
		Radius:    radius,
		MinRadius: minRadius,
		Density:   density,
	}, nil
}

// IsValid reports whether every kinematic component is finite.
func (p *Particle) IsValid() bool {
	return finite(p.Position) && finite(p.Velocity) && finite(p.Acceleration)
}

// Tool is the rigid manipulator pushed through the material.
type Tool struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Velocity mgl64.Vec3
	Forces   mgl64.Vec3 // reaction load summed over the last contact pass
	Torque   mgl64.Vec3
}

// NewTool places a tool at pos with identity orientation.
func NewTool(pos mgl64.Vec3) *Tool {
	return &Tool{Position: pos, Rotation: mgl64.QuatIdent()}
}

// ResetLoads clears the force and torque accumulators.
func (t *Tool) ResetLoads() {
	t.Forces = mgl64.Vec3{}
	t.Torque = mgl64.Vec3{}
}

// ToolInput is the intent supplied by the input layer for one tick.
type ToolInput struct {
	Forward, Back bool // -Z / +Z
	Left, Right   bool // -X / +X
	Down, Up      bool // -Y / +Y
	PointerDelta  mgl64.Vec2
	Rotate        bool // pointer motion rotates the tool only while held
}

// Movement returns the unnormalized translation direction of the intent.
func (in ToolInput) Movement() mgl64.Vec3 {
	var m mgl64.Vec3
	if in.Forward {
		m[2] -= 1
	}
	if in.Back {
		m[2] += 1
	}
	if in.Left {
		m[0] -= 1
	}
	if in.Right {
		m[0] += 1
	}
	if in.Down {
		m[1] -= 1
	}
	if in.Up {
		m[1] += 1
	}
	return m
}

// IsZero reports whether the intent carries neither movement nor rotation.
func (in ToolInput) IsZero() bool {
	return in.Movement() == (mgl64.Vec3{}) && (!in.Rotate || in.PointerDelta == (mgl64.Vec2{}))
}

// StepStats summarises the work done by one tick.
type StepStats struct {
	Pairs            int // pairs inside the attraction cutoff
	ToolContacts     int // particles receiving a repulsive tool force
	CohesionContacts int // particles inside the tool cohesion band
}

// World is the complete mutable state of a run.
type World struct {
	Particles []Particle
	Tool      *Tool // nil when no tool is present
	Time      float64
	Steps     int
}

// Clone returns a deep copy of the world.
func (w *World) Clone() *World {
	c := &World{
		Particles: make([]Particle, len(w.Particles)),
		Time:      w.Time,
		Steps:     w.Steps,
	}
	copy(c.Particles, w.Particles)
	if w.Tool != nil {
		t := *w.Tool
		c.Tool = &t
	}
	return c
}

// IsValid reports whether all particles and the tool hold finite values.
func (w *World) IsValid() bool {
	for i := range w.Particles {
		if !w.Particles[i].IsValid() {
			return false
		}
	}
	if w.Tool != nil {
		t := w.Tool
		qw := t.Rotation.W
		if math.IsNaN(qw) || math.IsInf(qw, 0) || !finite(t.Rotation.V) {
			return false
		}
		if !finite(t.Position) || !finite(t.Forces) || !finite(t.Torque) {
			return false
		}
	}
	return true
}

// Snapshot is the read-only view handed to the rendering layer.
type Snapshot struct {
	Time         float64
	Positions    []mgl64.Vec3
	Radii        []float64
	HasTool      bool
	ToolPosition mgl64.Vec3
	ToolRotation mgl64.Quat
	ToolForces   mgl64.Vec3
}

// Snapshot copies the transforms a renderer needs.
func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Time:      w.Time,
		Positions: make([]mgl64.Vec3, len(w.Particles)),
		Radii:     make([]float64, len(w.Particles)),
	}
	for i := range w.Particles {
		s.Positions[i] = w.Particles[i].Position
		s.Radii[i] = w.Particles[i].Radius
	}
	if w.Tool != nil {
		s.HasTool = true
		s.ToolPosition = w.Tool.Position
		s.ToolRotation = w.Tool.Rotation
		s.ToolForces = w.Tool.Forces
	}
	return s
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
