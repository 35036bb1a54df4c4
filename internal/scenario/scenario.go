// Package scenario builds the initial regolith bed and tool.
package scenario

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/regolith/internal/dynamo"
)

const (
	// SpacingFactor is the centre spacing of neighbouring grains in radii.
	SpacingFactor = 2.1
	rowScale      = 0.866 // sqrt(3)/2
	layerScale    = 0.816 // sqrt(2/3)
)

// Count is the number of particles Build creates for p.
func Count(p *dynamo.Params) int {
	return p.GridSize * p.GridSize * p.Layers
}

// Build lays out a hexagonal close-packed bed of GridSize x GridSize x Layers
// grains resting on the floor and places the tool at ToolStart.
func Build(p *dynamo.Params) (*dynamo.World, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	w := &dynamo.World{
		Particles: make([]dynamo.Particle, 0, Count(p)),
		Tool:      dynamo.NewTool(p.ToolStart),
	}
	for _, pos := range Positions(p) {
		pt, err := dynamo.NewParticle(pos, p.ParticleMass, p.ParticleRadius, p.MinRadius, p.SurfaceDensity)
		if err != nil {
			return nil, fmt.Errorf("spawn at %v: %w", pos, err)
		}
		w.Particles = append(w.Particles, pt)
	}
	return w, nil
}

// Positions returns the lattice centres in i, j, k order. Odd rows shift by
// one radius in x and odd layers by one radius in z.
func Positions(p *dynamo.Params) []mgl64.Vec3 {
	r := p.ParticleRadius
	spacing := SpacingFactor * r

	out := make([]mgl64.Vec3, 0, Count(p))
	for i := 0; i < p.GridSize; i++ {
		for j := 0; j < p.GridSize; j++ {
			for k := 0; k < p.Layers; k++ {
				var offsetX, offsetZ float64
				if j%2 == 1 {
					offsetX = r
				}
				if k%2 == 1 {
					offsetZ = r
				}
				out = append(out, mgl64.Vec3{
					float64(i)*spacing*rowScale + offsetX,
					float64(k)*spacing*layerScale + r,
					float64(j)*spacing + offsetZ,
				})
			}
		}
	}
	return out
}

// Bounds returns the axis-aligned box enclosing the grain surfaces.
func Bounds(w *dynamo.World) (lo, hi mgl64.Vec3) {
	if len(w.Particles) == 0 {
		return
	}
	lo = w.Particles[0].Position
	hi = lo
	for _, pt := range w.Particles {
		for a := 0; a < 3; a++ {
			lo[a] = min(lo[a], pt.Position[a]-pt.Radius)
			hi[a] = max(hi[a], pt.Position[a]+pt.Radius)
		}
	}
	return lo, hi
}
