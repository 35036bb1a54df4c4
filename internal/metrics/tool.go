package metrics

import (
	"github.com/san-kum/regolith/internal/dynamo"
	"github.com/san-kum/regolith/internal/sim"
)

// PeakToolForce is the largest reaction load magnitude seen on the tool.
type PeakToolForce struct {
	name string
	peak float64
}

func NewPeakToolForce() *PeakToolForce {
	return &PeakToolForce{name: "tool_force_peak"}
}

func (p *PeakToolForce) Name() string { return p.name }

func (p *PeakToolForce) Observe(w *dynamo.World, stats dynamo.StepStats) {
	if w.Tool == nil {
		return
	}
	p.peak = max(p.peak, w.Tool.Forces.Len())
}

func (p *PeakToolForce) Value() float64 { return p.peak }

func (p *PeakToolForce) Reset() { p.peak = 0 }

// ToolEffort is the mean tool load magnitude over all ticks.
type ToolEffort struct {
	name    string
	sum     float64
	samples int
}

func NewToolEffort() *ToolEffort {
	return &ToolEffort{
		name: "tool_effort",
	}
}

func (c *ToolEffort) Name() string {
	return c.name
}

func (c *ToolEffort) Observe(w *dynamo.World, stats dynamo.StepStats) {
	if w.Tool != nil {
		c.sum += w.Tool.Forces.Len()
	}
	c.samples++
}

func (c *ToolEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ToolEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// ContactRatio is the mean number of tool contacts per tick.
type ContactRatio struct {
	name     string
	contacts int
	samples  int
}

func NewContactRatio() *ContactRatio {
	return &ContactRatio{name: "tool_contacts"}
}

func (c *ContactRatio) Name() string { return c.name }

func (c *ContactRatio) Observe(w *dynamo.World, stats dynamo.StepStats) {
	c.contacts += stats.ToolContacts
	c.samples++
}

func (c *ContactRatio) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.contacts) / float64(c.samples)
}

func (c *ContactRatio) Reset() {
	c.contacts = 0
	c.samples = 0
}

// Default returns the metric set attached to every headless run.
func Default(gravity float64) []sim.Metric {
	return []sim.Metric{
		NewEnergy(),
		NewEnergyLoss(gravity),
		NewFloorCompliance(1e-9),
		NewPileHeight(),
		NewPeakToolForce(),
		NewToolEffort(),
		NewContactRatio(),
	}
}
