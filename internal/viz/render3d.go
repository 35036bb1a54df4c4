package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera orbits a target and projects world points with a simple
// perspective divide.
type Camera struct {
	Target           mgl64.Vec3
	Span             float64 // world length that fills half the screen
	Distance         float64
	Near             float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

func NewCamera(target mgl64.Vec3, span float64) *Camera {
	if span <= 0 {
		span = 1
	}
	return &Camera{Target: target, Span: span, Distance: 4, Near: 0.1, RotX: -0.45, RotY: 0.6, Zoom: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// RotatePoint rotates a target-relative point around the camera's axes.
func (c *Camera) RotatePoint(p mgl64.Vec3) mgl64.Vec3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p[1], p[2] = p[1]*cx-p[2]*sx, p[1]*sx+p[2]*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p[0], p[2] = p[0]*cy+p[2]*sy, -p[0]*sy+p[2]*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p[0], p[1] = p[0]*cz-p[1]*sz, p[0]*sz+p[1]*cz
	return p
}

// Project converts a world point to pixel coordinates on a sw x sh screen.
// Returns x, y, depth, and visibility.
func (c *Camera) Project(p mgl64.Vec3, sw, sh int) (int, int, float64, bool) {
	rot := c.RotatePoint(p.Sub(c.Target)).Mul(c.Zoom / c.Span)
	if rot[2] >= c.Distance-c.Near {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - rot[2])
	pScale := float64(min(sw, sh)) / 2
	sx := int(rot[0]*scale*pScale) + sw/2
	sy := int(-rot[1]*scale*pScale) + sh/2
	return sx, sy, rot[2], sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type Edge struct {
	Start, End mgl64.Vec3
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe               { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(s, e mgl64.Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }
func (w *Wireframe) AddPoint(p mgl64.Vec3)   { w.Edges = append(w.Edges, Edge{p, p}) }
func (w *Wireframe) Clear()                  { w.Edges = w.Edges[:0] }

// AddBox adds the twelve edges of a box given its eight corners in
// BoxCorners order.
func (w *Wireframe) AddBox(corners [8]mgl64.Vec3) {
	for _, e := range BoxEdges {
		w.AddEdge(corners[e[0]], corners[e[1]])
	}
}

// BoxEdges indexes the corner pairs joined by box edges.
var BoxEdges = [12][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {4, 5}, {5, 6}, {6, 7}, {7, 4}, {0, 4}, {1, 5}, {2, 6}, {3, 7}}

// BoxCorners returns the corners of an oriented box centred on pos.
func BoxCorners(pos mgl64.Vec3, rot mgl64.Quat, half mgl64.Vec3) [8]mgl64.Vec3 {
	signs := [8]mgl64.Vec3{{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1}, {-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}}
	var out [8]mgl64.Vec3
	for i, s := range signs {
		local := mgl64.Vec3{s[0] * half[0], s[1] * half[1], s[2] * half[2]}
		out[i] = pos.Add(rot.Rotate(local))
	}
	return out
}

// Render3D draws the wireframe to the canvas.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	cw, ch := c.Pixels()
	for _, e := range w.Edges {
		x1, y1, _, v1 := cam.Project(e.Start, cw, ch)
		x2, y2, _, v2 := cam.Project(e.End, cw, ch)
		switch {
		case !v1 && !v2:
		case x1 == x2 && y1 == y2:
			c.Set(x1, y1)
		default:
			c.DrawLine(x1, y1, x2, y2)
		}
	}
}
