package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
)

// speed at which a grain is drawn at full brightness, m/s
const brightSpeed = 0.2

func (a *App) drawSim() {
	rl.BeginMode3D(a.Camera)
	a.drawFloor()
	a.RenderGrains()
	a.RenderTool()
	rl.EndMode3D()
}

func (a *App) drawFloor() {
	lo, hi := a.Orbit.Target, a.Orbit.Target
	span := a.Orbit.Distance
	lo = lo.Sub(mgl64.Vec3{span, 0, span})
	hi = hi.Add(mgl64.Vec3{span, 0, span})
	const slices = 20
	for i := 0; i <= slices; i++ {
		f := float64(i) / slices
		x := lo[0] + f*(hi[0]-lo[0])
		z := lo[2] + f*(hi[2]-lo[2])
		rl.DrawLine3D(Vec(mgl64.Vec3{x, 0, lo[2]}), Vec(mgl64.Vec3{x, 0, hi[2]}), ColGrid)
		rl.DrawLine3D(Vec(mgl64.Vec3{lo[0], 0, z}), Vec(mgl64.Vec3{hi[0], 0, z}), ColGrid)
	}
}

func (a *App) RenderGrains() {
	for i := range a.World.Particles {
		pt := &a.World.Particles[i]
		rl.DrawSphereEx(Vec(pt.Position), float32(pt.Radius), 6, 8, grainColor(pt.Velocity.Len(), brightSpeed))
	}
}

// RenderTool draws the oriented tool box and, when enabled, its load vector.
func (a *App) RenderTool() {
	t := a.World.Tool
	if t == nil {
		return
	}
	size := a.Params.ToolHalfExtents.Mul(2)
	angle, axis := AxisAngle(t.Rotation)

	rl.PushMatrix()
	rl.Translatef(float32(t.Position[0]), float32(t.Position[1]), float32(t.Position[2]))
	rl.Rotatef(angle, axis.X, axis.Y, axis.Z)
	rl.DrawCube(rl.NewVector3(0, 0, 0), float32(size[0]), float32(size[1]), float32(size[2]), rl.ColorAlpha(ColTool, 0.6))
	rl.DrawCubeWires(rl.NewVector3(0, 0, 0), float32(size[0]), float32(size[1]), float32(size[2]), ColTool)
	rl.PopMatrix()

	if a.ShowVectors && t.Forces.Len() > 0 {
		// scaled so a 1 N load spans a tool length
		tip := t.Position.Add(t.Forces.Mul(size[0]))
		rl.DrawLine3D(Vec(t.Position), Vec(tip), rl.Red)
		rl.DrawSphereEx(Vec(tip), float32(size[1]/4), 4, 4, rl.Red)
	}
}
