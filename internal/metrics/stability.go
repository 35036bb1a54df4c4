package metrics

import (
	"github.com/san-kum/regolith/internal/dynamo"
)

// FloorCompliance is the fraction of ticks on which no particle centre sat
// below its radius by more than the tolerance.
type FloorCompliance struct {
	name       string
	tolerance  float64
	violations int
	samples    int
}

func NewFloorCompliance(tolerance float64) *FloorCompliance {
	return &FloorCompliance{
		name:      "floor_compliance",
		tolerance: tolerance,
	}
}

func (s *FloorCompliance) Name() string {
	return s.name
}

func (s *FloorCompliance) Observe(w *dynamo.World, stats dynamo.StepStats) {
	s.samples++
	for i := range w.Particles {
		pt := &w.Particles[i]
		if pt.Position[1] < pt.Radius-s.tolerance {
			s.violations++
			break
		}
	}
}

func (s *FloorCompliance) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *FloorCompliance) Reset() {
	s.violations = 0
	s.samples = 0
}

// PileHeight is the highest grain surface at the last observation.
type PileHeight struct {
	name   string
	height float64
}

func NewPileHeight() *PileHeight {
	return &PileHeight{name: "pile_height"}
}

func (p *PileHeight) Name() string { return p.name }

func (p *PileHeight) Observe(w *dynamo.World, stats dynamo.StepStats) {
	p.height = Height(w.Particles)
}

func (p *PileHeight) Value() float64 { return p.height }

func (p *PileHeight) Reset() { p.height = 0 }

// Height returns the top of the highest grain, zero for an empty bed.
func Height(particles []dynamo.Particle) float64 {
	h := 0.0
	for i := range particles {
		h = max(h, particles[i].Position[1]+particles[i].Radius)
	}
	return h
}
