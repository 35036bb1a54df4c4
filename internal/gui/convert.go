package gui

import (
	"math"
	"sort"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/regolith/internal/dynamo"
)

type keyState struct {
	w, a, s, d, q, e bool
}

// ToolInput maps held keys and mouse motion to tool intent. Mouse motion only
// counts while rotate is held.
func ToolInput(k keyState, rotate bool, delta rl.Vector2) dynamo.ToolInput {
	in := dynamo.ToolInput{
		Forward: k.w, Back: k.s,
		Left: k.a, Right: k.d,
		Down: k.q, Up: k.e,
		Rotate: rotate,
	}
	if rotate {
		in.PointerDelta = mgl64.Vec2{float64(delta.X), float64(delta.Y)}
	}
	return in
}

// SubstepsPerFrame is the number of dt ticks that cover one frame at fps.
func SubstepsPerFrame(dt float64, fps int) int {
	if !(dt > 0) || fps <= 0 {
		return 1
	}
	return max(1, int(math.Round(1/(float64(fps)*dt))))
}

func SortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Orbit is a camera on a sphere around a target.
type Orbit struct {
	Target     mgl64.Vec3
	Distance   float64
	Yaw, Pitch float64
	MinDist    float64
}

// NewOrbit frames a bed of the given diagonal from above and in front.
func NewOrbit(target mgl64.Vec3, diagonal float64) Orbit {
	if diagonal <= 0 {
		diagonal = 1
	}
	return Orbit{Target: target, Distance: 1.5 * diagonal, Yaw: 0.6, Pitch: 0.6, MinDist: 0.1 * diagonal}
}

func (o Orbit) EyeVec() mgl64.Vec3 {
	cp := math.Cos(o.Pitch)
	dir := mgl64.Vec3{cp * math.Sin(o.Yaw), math.Sin(o.Pitch), cp * math.Cos(o.Yaw)}
	return o.Target.Add(dir.Mul(o.Distance))
}

func (o Orbit) Eye() rl.Vector3    { return Vec(o.EyeVec()) }
func (o Orbit) Center() rl.Vector3 { return Vec(o.Target) }

// Zoom moves the eye toward the target by 10% per wheel notch.
func (o *Orbit) Zoom(notches float64) {
	o.Distance = math.Max(o.MinDist, o.Distance*math.Pow(0.9, notches))
}

func Vec(v mgl64.Vec3) rl.Vector3 {
	return rl.NewVector3(float32(v[0]), float32(v[1]), float32(v[2]))
}

// AxisAngle converts a rotation to degrees about a unit axis for rlgl.
func AxisAngle(q mgl64.Quat) (float32, rl.Vector3) {
	q = q.Normalize()
	w := mgl64.Clamp(q.W, -1, 1)
	angle := 2 * math.Acos(w)
	s := math.Sqrt(1 - w*w)
	if s < 1e-9 {
		return 0, rl.NewVector3(0, 1, 0)
	}
	axis := q.V.Mul(1 / s)
	return float32(mgl64.RadToDeg(angle)), Vec(axis)
}

// Polyline maps values onto a w x h box with its top left at (x, y).
func Polyline(values []float64, x, y, w, h float32) []rl.Vector2 {
	if len(values) == 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	points := make([]rl.Vector2, len(values))
	for i, v := range values {
		px := x + float32(i)/float32(len(values))*w
		py := y + h - float32((v-lo)/(hi-lo))*h
		points[i] = rl.NewVector2(px, py)
	}
	return points
}

// grainColor brightens with speed, saturating at full.
func grainColor(speed, full float64) rl.Color {
	t := 0.0
	if full > 0 {
		t = math.Min(speed/full, 1)
	}
	v := uint8(110 + 145*t)
	return rl.NewColor(v, uint8(float64(v)*0.95), uint8(float64(v)*0.85), 255)
}
