package control

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/regolith/internal/dynamo"
)

// ManualController passes intent set by an interactive front end. Pointer
// motion is consumed by the tick that reads it; key state persists until
// replaced.
type ManualController struct {
	In dynamo.ToolInput
}

func NewManual() *ManualController {
	return &ManualController{}
}

// SetInput replaces the current intent.
func (c *ManualController) SetInput(in dynamo.ToolInput) {
	c.In = in
}

// Press sets the key for r. Unknown keys are ignored and reported false.
func (c *ManualController) Press(r rune) bool {
	return applyKey(&c.In, r)
}

// AddPointer accumulates pointer motion and engages rotation.
func (c *ManualController) AddPointer(dx, dy float64) {
	c.In.PointerDelta[0] += dx
	c.In.PointerDelta[1] += dy
	c.In.Rotate = true
}

// Release clears all keys and pointer motion.
func (c *ManualController) Release() {
	c.In = dynamo.ToolInput{}
}

func (c *ManualController) Compute(w *dynamo.World, t float64) dynamo.ToolInput {
	in := c.In
	c.In.PointerDelta = mgl64.Vec2{}
	c.In.Rotate = false
	return in
}
