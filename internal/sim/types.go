package sim

import "github.com/san-kum/regolith/internal/dynamo"

// Stepper advances a world by one tick. physics.Engine satisfies it.
type Stepper interface {
	StepWorld(w *dynamo.World, dt float64, in dynamo.ToolInput) dynamo.StepStats
}

// Controller produces the tool intent for the next tick.
type Controller interface {
	Compute(w *dynamo.World, t float64) dynamo.ToolInput
}

type Metric interface {
	Name() string
	Observe(w *dynamo.World, stats dynamo.StepStats)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(w *dynamo.World, in dynamo.ToolInput, stats dynamo.StepStats)
}

type Config struct {
	Dt            float64
	Duration      float64
	ValidateState bool
}

type Result struct {
	StepsTaken int
	SimTime    float64
	Metrics    map[string]float64
	Final      *dynamo.World
	Errors     []error
}
