// Package telemetry records per-tick samples of a run and summarises them.
package telemetry

import (
	"github.com/san-kum/regolith/internal/dynamo"
	"github.com/san-kum/regolith/internal/metrics"
)

// Sample is one telemetry row.
type Sample struct {
	Step             int     `csv:"step"`
	Time             float64 `csv:"time"`
	KineticEnergy    float64 `csv:"kinetic_energy"`
	PileHeight       float64 `csv:"pile_height"`
	ToolX            float64 `csv:"tool_x"`
	ToolY            float64 `csv:"tool_y"`
	ToolZ            float64 `csv:"tool_z"`
	ForceX           float64 `csv:"force_x"`
	ForceY           float64 `csv:"force_y"`
	ForceZ           float64 `csv:"force_z"`
	Force            float64 `csv:"force"`
	Torque           float64 `csv:"torque"`
	Pairs            int     `csv:"pairs"`
	ToolContacts     int     `csv:"tool_contacts"`
	CohesionContacts int     `csv:"cohesion_contacts"`
}

// NewSample captures the state of w after a tick.
func NewSample(w *dynamo.World, stats dynamo.StepStats) Sample {
	s := Sample{
		Step:             w.Steps,
		Time:             w.Time,
		KineticEnergy:    metrics.KineticEnergy(w.Particles),
		PileHeight:       metrics.Height(w.Particles),
		Pairs:            stats.Pairs,
		ToolContacts:     stats.ToolContacts,
		CohesionContacts: stats.CohesionContacts,
	}
	if t := w.Tool; t != nil {
		s.ToolX, s.ToolY, s.ToolZ = t.Position[0], t.Position[1], t.Position[2]
		s.ForceX, s.ForceY, s.ForceZ = t.Forces[0], t.Forces[1], t.Forces[2]
		s.Force = t.Forces.Len()
		s.Torque = t.Torque.Len()
	}
	return s
}

// Fields lists the numeric columns Series accepts.
var Fields = []string{
	"kinetic_energy", "pile_height", "tool_y", "force_x", "force_y", "force_z", "force", "torque",
	"pairs", "tool_contacts", "cohesion_contacts",
}

func (s Sample) field(name string) (float64, bool) {
	switch name {
	case "time":
		return s.Time, true
	case "kinetic_energy":
		return s.KineticEnergy, true
	case "pile_height":
		return s.PileHeight, true
	case "tool_x":
		return s.ToolX, true
	case "tool_y":
		return s.ToolY, true
	case "tool_z":
		return s.ToolZ, true
	case "force_x":
		return s.ForceX, true
	case "force_y":
		return s.ForceY, true
	case "force_z":
		return s.ForceZ, true
	case "force":
		return s.Force, true
	case "torque":
		return s.Torque, true
	case "pairs":
		return float64(s.Pairs), true
	case "tool_contacts":
		return float64(s.ToolContacts), true
	case "cohesion_contacts":
		return float64(s.CohesionContacts), true
	}
	return 0, false
}
