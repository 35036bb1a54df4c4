package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/regolith/internal/dynamo"
)

// Engine advances particles and tool one tick at a time. It keeps a scratch
// force buffer between ticks so stepping does not allocate.
type Engine struct {
	params *dynamo.Params
	forces []mgl64.Vec3
}

func NewEngine(p *dynamo.Params) *Engine {
	return &Engine{params: p}
}

func (e *Engine) Params() *dynamo.Params { return e.params }

// Step advances the simulation by dt. A nil tool skips tool kinematics and
// tool contact.
func (e *Engine) Step(particles []dynamo.Particle, tool *dynamo.Tool, dt float64, in dynamo.ToolInput) dynamo.StepStats {
	var stats dynamo.StepStats

	MoveTool(tool, in, e.params)

	ResetAccelerations(particles, e.params.Gravity)
	stats.Pairs = e.accumulatePairs(particles)
	stats.ToolContacts, stats.CohesionContacts = ApplyToolContacts(tool, particles, e.params)

	Integrate(particles, e.params, dt)
	return stats
}

// StepWorld steps a world and advances its clock.
func (e *Engine) StepWorld(w *dynamo.World, dt float64, in dynamo.ToolInput) dynamo.StepStats {
	stats := e.Step(w.Particles, w.Tool, dt, in)
	w.Time += dt
	w.Steps++
	return stats
}

// Step is a convenience wrapper for callers without a long-lived engine.
func Step(particles []dynamo.Particle, tool *dynamo.Tool, p *dynamo.Params, dt float64, in dynamo.ToolInput) dynamo.StepStats {
	return NewEngine(p).Step(particles, tool, dt, in)
}
