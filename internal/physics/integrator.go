package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/regolith/internal/dynamo"
)

const (
	// VelocityDamping is applied to every velocity after the position update.
	VelocityDamping = 0.98
	// FloorRestitution scales the vertical speed of a particle bouncing off the floor.
	FloorRestitution = 0.5
	// FloorFrictionThreshold is the horizontal speed below which floor friction is skipped.
	FloorFrictionThreshold = 0.001
)

// ResetAccelerations sets every acceleration to g. It must run before any
// solver that adds to acceleration within the same tick.
func ResetAccelerations(particles []dynamo.Particle, g mgl64.Vec3) {
	for i := range particles {
		particles[i].Acceleration = g
	}
}

// Integrate advances velocities and positions by dt using the accumulated
// accelerations, damps velocity and resolves floor contact at y = 0.
func Integrate(particles []dynamo.Particle, p *dynamo.Params, dt float64) {
	gLen := p.Gravity.Len()
	for i := range particles {
		pt := &particles[i]
		pt.Velocity = pt.Velocity.Add(pt.Acceleration.Mul(dt))
		pt.Position = pt.Position.Add(pt.Velocity.Mul(dt))
		pt.Velocity = pt.Velocity.Mul(VelocityDamping)
		resolveFloor(pt, p.Friction, gLen, dt)
	}
}

// UpdateParticles is the complete single-pass integrator: gravity reset,
// advance and floor contact.
func UpdateParticles(particles []dynamo.Particle, p *dynamo.Params, dt float64) {
	ResetAccelerations(particles, p.Gravity)
	Integrate(particles, p, dt)
}

func resolveFloor(pt *dynamo.Particle, friction, gLen, dt float64) {
	if pt.Position[1] >= pt.Radius {
		return
	}
	pt.Position[1] = pt.Radius
	pt.Velocity[1] *= -FloorRestitution

	horizontal := mgl64.Vec3{pt.Velocity[0], 0, pt.Velocity[2]}
	if horizontal.Len() <= FloorFrictionThreshold {
		return
	}
	frictionForce := horizontal.Normalize().Mul(-friction * pt.Mass * gLen)
	impulse := frictionForce.Mul(dt)
	pt.Velocity = pt.Velocity.Add(mgl64.Vec3{impulse[0] / pt.Mass, impulse[1] / pt.Mass, impulse[2] / pt.Mass})
}
