package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/regolith/internal/dynamo"
)

const (
	// OverlapEpsilon widens the minimum separation into a band handled by a
	// linear spring instead of the singular inverse law.
	OverlapEpsilon = 1e-4
	// EmergencyStiffness is the spring constant of that band.
	EmergencyStiffness = 100.0
	// AttractionScale weakens the near-field attraction relative to repulsion.
	AttractionScale = 0.1
	// PairFrictionScale scales inter-particle friction.
	PairFrictionScale = 0.8
	// TangentialThreshold is the relative tangential speed below which no friction acts.
	TangentialThreshold = 0.001

	coincidentDistance = 1e-12
)

var separationAxis = mgl64.Vec3{0, 1, 0}

// CohesionForce returns the signed normal force between two particle centres
// at the given distance. Positive values push the pair apart, negative values
// pull it together; zero is returned beyond the attraction cutoff.
func CohesionForce(distance float64, p *dynamo.Params) float64 {
	attraction := p.AttractionRadius()
	if distance >= 2*attraction {
		return 0
	}

	amin := 2 * p.MinRadius
	if distance < 2*p.ParticleRadius {
		if distance < amin+OverlapEpsilon {
			return EmergencyStiffness * (amin + OverlapEpsilon - distance)
		}
		return p.Cohesion * (1/(distance-amin) - 1/(2*p.ParticleRadius-amin))
	}

	return -AttractionScale * p.Cohesion * (1/(distance-amin) - 1/(2*attraction-amin))
}

// PairForce computes the force that particle j receives from particle i,
// friction included. Particle i receives the negation. The boolean is false
// when the pair lies outside the attraction cutoff.
func PairForce(pi, pj *dynamo.Particle, p *dynamo.Params) (mgl64.Vec3, bool) {
	displacement := pj.Position.Sub(pi.Position)
	distance := displacement.Len()
	if distance >= 2*p.AttractionRadius() {
		return mgl64.Vec3{}, false
	}

	direction := separationAxis
	if distance > coincidentDistance {
		direction = displacement.Mul(1 / distance)
	}

	magnitude := CohesionForce(distance, p)
	force := direction.Mul(magnitude)

	relative := pj.Velocity.Sub(pi.Velocity)
	tangential := relative.Sub(direction.Mul(relative.Dot(direction)))
	if tangential.Len() > TangentialThreshold {
		friction := tangential.Normalize().Mul(-p.Friction * math.Abs(magnitude) * PairFrictionScale)
		force = force.Add(friction)
	}
	return force, true
}

// accumulatePairs computes every pair force into the engine scratch buffer
// and only then converts the totals into accelerations.
func (e *Engine) accumulatePairs(particles []dynamo.Particle) int {
	n := len(particles)
	if cap(e.forces) < n {
		e.forces = make([]mgl64.Vec3, n)
	}
	e.forces = e.forces[:n]
	for i := range e.forces {
		e.forces[i] = mgl64.Vec3{}
	}

	pairs := e.sweepPairs(particles)

	for i := range particles {
		pt := &particles[i]
		pt.Acceleration = pt.Acceleration.Add(e.forces[i].Mul(1 / pt.Mass))
	}
	return pairs
}

func (e *Engine) sweepPairs(particles []dynamo.Particle) int {
	n := len(particles)
	pairs := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			f, ok := PairForce(&particles[i], &particles[j], e.params)
			if !ok {
				continue
			}
			pairs++
			e.forces[i] = e.forces[i].Sub(f)
			e.forces[j] = e.forces[j].Add(f)
		}
	}
	return pairs
}
