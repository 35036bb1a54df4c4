package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/regolith/internal/dynamo"
)

// View selects how the bed is drawn.
type View int

const (
	ViewSide View = iota // x across, y up
	ViewTop              // x across, z down
	View3D
)

var viewNames = [...]string{"side", "top", "3d"}

func (v View) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return "unknown"
	}
	return viewNames[v]
}

func (v View) Next() View { return (v + 1) % View(len(viewNames)) }

// Frame is the world-space box mapped onto the canvas by the flat views.
type Frame struct {
	Lo, Hi mgl64.Vec3
}

// FrameFor encloses the grains, the tool centre and the floor, padded by
// margin on every side.
func FrameFor(s dynamo.Snapshot, margin float64) Frame {
	f := Frame{}
	first := true
	grow := func(p mgl64.Vec3, r float64) {
		for a := 0; a < 3; a++ {
			if first {
				f.Lo[a], f.Hi[a] = p[a]-r, p[a]+r
				continue
			}
			f.Lo[a] = math.Min(f.Lo[a], p[a]-r)
			f.Hi[a] = math.Max(f.Hi[a], p[a]+r)
		}
		first = false
	}
	for i, p := range s.Positions {
		grow(p, s.Radii[i])
	}
	if s.HasTool {
		grow(s.ToolPosition, 0)
	}
	if first {
		f.Hi = mgl64.Vec3{1, 1, 1}
	}
	f.Lo[1] = math.Min(f.Lo[1], 0)
	for a := 0; a < 3; a++ {
		f.Lo[a] -= margin
		f.Hi[a] += margin
	}
	return f
}

func (f Frame) Center() mgl64.Vec3 { return f.Lo.Add(f.Hi).Mul(0.5) }

// Span is the longest edge of the frame.
func (f Frame) Span() float64 {
	d := f.Hi.Sub(f.Lo)
	return math.Max(d[0], math.Max(d[1], d[2]))
}

func (f Frame) axes(v View) (int, int) {
	if v == ViewTop {
		return 0, 2
	}
	return 0, 1
}

// Scale returns pixels per metre for a flat view on a cw x ch pixel screen.
func (f Frame) Scale(v View, cw, ch int) float64 {
	h, a := f.axes(v)
	sh, sa := f.Hi[h]-f.Lo[h], f.Hi[a]-f.Lo[a]
	if sh <= 0 || sa <= 0 {
		return 0
	}
	return math.Min(float64(cw-1)/sh, float64(ch-1)/sa)
}

// Project maps a world point to pixels for a flat view.
func (f Frame) Project(p mgl64.Vec3, v View, cw, ch int) (int, int) {
	h, a := f.axes(v)
	s := f.Scale(v, cw, ch)
	x := int(math.Round((p[h] - f.Lo[h]) * s))
	if v == ViewTop {
		return x, int(math.Round((p[a] - f.Lo[a]) * s))
	}
	return x, ch - 1 - int(math.Round((p[a]-f.Lo[a])*s))
}

// DrawScene renders a snapshot. half is the tool half-extent. The camera is
// used only by View3D.
func DrawScene(c *Canvas, s dynamo.Snapshot, half mgl64.Vec3, f Frame, v View, cam *Camera) {
	c.Clear()
	if v == View3D {
		Render3D(c, sceneWireframe(s, half, f), cam)
		return
	}

	cw, ch := c.Pixels()
	scale := f.Scale(v, cw, ch)
	if v == ViewSide {
		_, y := f.Project(mgl64.Vec3{}, v, cw, ch)
		c.DrawLine(0, y, cw-1, y)
	}
	for i, p := range s.Positions {
		x, y := f.Project(p, v, cw, ch)
		c.DrawDisc(x, y, int(s.Radii[i]*scale))
	}
	if s.HasTool {
		corners := BoxCorners(s.ToolPosition, s.ToolRotation, half)
		for _, e := range BoxEdges {
			x0, y0 := f.Project(corners[e[0]], v, cw, ch)
			x1, y1 := f.Project(corners[e[1]], v, cw, ch)
			c.DrawLine(x0, y0, x1, y1)
		}
	}
}

func sceneWireframe(s dynamo.Snapshot, half mgl64.Vec3, f Frame) *Wireframe {
	w := NewWireframe()
	floor := [4]mgl64.Vec3{
		{f.Lo[0], 0, f.Lo[2]}, {f.Hi[0], 0, f.Lo[2]}, {f.Hi[0], 0, f.Hi[2]}, {f.Lo[0], 0, f.Hi[2]},
	}
	for i := range floor {
		w.AddEdge(floor[i], floor[(i+1)%4])
	}
	for _, p := range s.Positions {
		w.AddPoint(p)
	}
	if s.HasTool {
		w.AddBox(BoxCorners(s.ToolPosition, s.ToolRotation, half))
	}
	return w
}
