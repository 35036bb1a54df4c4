package control

import (
	"fmt"
	"math"

	"github.com/san-kum/regolith/internal/dynamo"
)

const (
	DefaultKp       = 40.0
	DefaultKi       = 0.5
	DefaultKd       = 0.05
	DefaultDeadband = 0.05
	DefaultSettle   = 0.015 // half a tool step; height error at which the drag starts
)

// Plunge lowers the tool to a target height with a PID loop on the height
// error and, once settled, adds a constant drag intent. The loop output is
// quantised to the Up/Down keys because the tool only accepts key intent.
type Plunge struct {
	Kp       float64
	Ki       float64
	Kd       float64
	Target   float64 // tool centre height
	Deadband float64 // |u| below this presses neither key
	Settle   float64
	Drag     dynamo.ToolInput

	integral float64
	prevErr  float64
	prevT    float64
	first    bool
	settled  bool
}

func NewPlunge(target float64, drag dynamo.ToolInput) *Plunge {
	return &Plunge{
		Kp:       DefaultKp,
		Ki:       DefaultKi,
		Kd:       DefaultKd,
		Target:   target,
		Deadband: DefaultDeadband,
		Settle:   DefaultSettle,
		Drag:     drag,
		first:    true,
	}
}

// Output is the raw loop output for the current height error.
func (p *Plunge) Output(height, t float64) float64 {
	err := p.Target - height

	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		return p.Kp * err
	}

	dt := t - p.prevT
	if dt > 0 {
		p.integral += err * dt
		derivative := (err - p.prevErr) / dt

		u := p.Kp*err + p.Ki*p.integral + p.Kd*derivative

		p.prevErr = err
		p.prevT = t

		return u
	}
	return p.Kp * err
}

func (p *Plunge) Compute(w *dynamo.World, t float64) dynamo.ToolInput {
	if w.Tool == nil {
		return dynamo.ToolInput{}
	}
	height := w.Tool.Position[1]
	u := p.Output(height, t)

	var in dynamo.ToolInput
	switch {
	case u > p.Deadband:
		in.Up = true
	case u < -p.Deadband:
		in.Down = true
	}

	if math.Abs(p.Target-height) <= p.Settle {
		p.settled = true
	}
	if p.settled {
		in.Forward = in.Forward || p.Drag.Forward
		in.Back = in.Back || p.Drag.Back
		in.Left = in.Left || p.Drag.Left
		in.Right = in.Right || p.Drag.Right
	}
	return in
}

// Settled reports whether the tool has reached the target height once.
func (p *Plunge) Settled() bool { return p.settled }

// Reset clears integral and derivative state
func (p *Plunge) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
	p.settled = false
}

// GetParams returns tunable parameters for live adjustment
func (p *Plunge) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":     p.Kp,
		"Ki":     p.Ki,
		"Kd":     p.Kd,
		"Target": p.Target,
	}
}

// SetParam adjusts a loop parameter
func (p *Plunge) SetParam(name string, value float64) error {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	case "Target":
		p.Target = value
		p.settled = false
	default:
		return fmt.Errorf("unknown plunge parameter: %s", name)
	}
	return nil
}
