package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/regolith/internal/dynamo"
)

const (
	// ToolCohesionScale multiplies gamma for the pull near the tool surface.
	ToolCohesionScale = 0.5
	// cohesion band: -cohesionInner*radius < penetration < cohesionOuter
	cohesionInner = 0.002
	cohesionOuter = 0.001
)

// Contact describes one particle touching the tool box.
type Contact struct {
	Normal      mgl64.Vec3 // world space, from the tool centre toward the particle
	Penetration float64
	Lever       mgl64.Vec3 // particle position relative to the tool centre
	Force       mgl64.Vec3 // viscoelastic load on the tool, zero when it would pull
	Cohesion    mgl64.Vec3 // surface cohesion load on the tool, zero outside the band
}

// ResolveToolContact tests a particle against the oriented tool box and
// computes the contact loads as seen by the tool; the particle receives their
// negation. It reports false when there is no contact.
func ResolveToolContact(t *dynamo.Tool, pt *dynamo.Particle, p *dynamo.Params) (Contact, bool) {
	rel := pt.Position.Sub(t.Position)
	local := t.Rotation.Inverse().Rotate(rel)
	half := p.ToolHalfExtents

	var pen mgl64.Vec3
	for a := 0; a < 3; a++ {
		reach := half[a] + pt.Radius
		if math.Abs(local[a]) >= reach {
			return Contact{}, false
		}
		pen[a] = reach - math.Abs(local[a])
	}

	// shallowest axis separates; ties fall through to the later axis
	axis := 2
	if pen[0] < pen[1] && pen[0] < pen[2] {
		axis = 0
	} else if pen[1] < pen[2] {
		axis = 1
	}
	var localNormal mgl64.Vec3
	if local[axis] > 0 {
		localNormal[axis] = 1
	} else {
		localNormal[axis] = -1
	}

	c := Contact{
		Normal:      t.Rotation.Rotate(localNormal),
		Penetration: pen[axis],
		Lever:       rel,
	}

	closing := pt.Velocity.Sub(t.Velocity).Dot(c.Normal)
	if magnitude := p.ToolStiffness*c.Penetration + p.ToolDamping*closing; magnitude > 0 {
		c.Force = c.Normal.Mul(magnitude)
	}
	if c.Penetration < cohesionOuter && c.Penetration > -cohesionInner*pt.Radius {
		c.Cohesion = c.Normal.Mul(p.Cohesion * ToolCohesionScale)
	}
	return c, true
}

// ApplyToolContacts resets the tool load accumulators, then applies every
// contact to the particles and sums the reactions into the tool. A nil tool is
// a no-op.
func ApplyToolContacts(t *dynamo.Tool, particles []dynamo.Particle, p *dynamo.Params) (contacts, cohesive int) {
	if t == nil {
		return 0, 0
	}
	t.ResetLoads()

	zero := mgl64.Vec3{}
	for i := range particles {
		pt := &particles[i]
		c, ok := ResolveToolContact(t, pt, p)
		if !ok {
			continue
		}
		if c.Force != zero {
			pt.Acceleration = pt.Acceleration.Sub(c.Force.Mul(1 / pt.Mass))
			t.Forces = t.Forces.Add(c.Force)
			t.Torque = t.Torque.Add(c.Lever.Cross(c.Force))
			contacts++
		}
		if c.Cohesion != zero {
			pt.Acceleration = pt.Acceleration.Sub(c.Cohesion.Mul(1 / pt.Mass))
			t.Forces = t.Forces.Add(c.Cohesion)
			cohesive++
		}
	}
	return contacts, cohesive
}
