package metrics

import (
	"math"

	"github.com/san-kum/regolith/internal/dynamo"
)

// KineticEnergy sums 1/2 m v^2 over all particles.
func KineticEnergy(particles []dynamo.Particle) float64 {
	ke := 0.0
	for i := range particles {
		v := particles[i].Velocity
		ke += 0.5 * particles[i].Mass * v.Dot(v)
	}
	return ke
}

// PotentialEnergy sums m g h over all particles, measured from the floor.
func PotentialEnergy(particles []dynamo.Particle, g float64) float64 {
	pe := 0.0
	for i := range particles {
		pe += particles[i].Mass * g * particles[i].Position[1]
	}
	return pe
}

// Energy is the mean kinetic energy of the bed over the run.
type Energy struct {
	name    string
	samples int
	total   float64
}

func NewEnergy() *Energy {
	return &Energy{name: "kinetic_energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(w *dynamo.World, stats dynamo.StepStats) {
	e.total += KineticEnergy(w.Particles)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *Energy) Reset() {
	e.total = 0
	e.samples = 0
}

// EnergyLoss is the fraction of the first observed mechanical energy that has
// been dissipated by the last observation. It can go negative while the tool
// is pumping energy into the bed.
type EnergyLoss struct {
	name          string
	gravity       float64
	initialEnergy float64
	currentEnergy float64
	samples       int
}

func NewEnergyLoss(gravity float64) *EnergyLoss {
	return &EnergyLoss{
		name:    "energy_loss",
		gravity: math.Abs(gravity),
	}
}

func (e *EnergyLoss) Name() string { return e.name }

func (e *EnergyLoss) Observe(w *dynamo.World, stats dynamo.StepStats) {
	energy := KineticEnergy(w.Particles) + PotentialEnergy(w.Particles, e.gravity)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.currentEnergy = energy
	e.samples++
}

func (e *EnergyLoss) Value() float64 {
	if e.initialEnergy == 0 {
		return 0
	}
	return (e.initialEnergy - e.currentEnergy) / e.initialEnergy
}

func (e *EnergyLoss) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.samples = 0
}
