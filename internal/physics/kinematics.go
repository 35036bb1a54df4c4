package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/regolith/internal/dynamo"
)

var (
	worldX = mgl64.Vec3{1, 0, 0}
	worldY = mgl64.Vec3{0, 1, 0}
)

// MoveTool applies one tick of input to the tool pose. Translation moves the
// tool ToolMoveSpeed along the normalized input direction; pointer motion
// rotates it about world X (pitch) and world Y (yaw) while Rotate is held.
func MoveTool(t *dynamo.Tool, in dynamo.ToolInput, p *dynamo.Params) {
	if t == nil {
		return
	}
	if m := in.Movement(); m != (mgl64.Vec3{}) {
		t.Position = t.Position.Add(m.Normalize().Mul(p.ToolMoveSpeed))
	}
	if in.Rotate && in.PointerDelta != (mgl64.Vec2{}) {
		pitch := mgl64.QuatRotate(-in.PointerDelta[1]*p.ToolTurnSpeed, worldX)
		yaw := mgl64.QuatRotate(-in.PointerDelta[0]*p.ToolTurnSpeed, worldY)
		t.Rotation = yaw.Mul(pitch).Mul(t.Rotation).Normalize()
	}
}
