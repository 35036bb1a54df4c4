package dynamo

import "github.com/go-gl/mathgl/mgl64"

// Distance between two particle centres.
func Distance(a, b mgl64.Vec3) float64 {
	return b.Sub(a).Len()
}

// SpheresOverlap reports whether two spheres intersect.
func SpheresOverlap(a mgl64.Vec3, ra float64, b mgl64.Vec3, rb float64) bool {
	return Distance(a, b) < ra+rb
}

// ContactPoint is the point on the surface of sphere a facing sphere b.
// Coincident centres return a.
func ContactPoint(a mgl64.Vec3, ra float64, b mgl64.Vec3) mgl64.Vec3 {
	d := b.Sub(a)
	l := d.Len()
	if l == 0 {
		return a
	}
	return a.Add(d.Mul(ra / l))
}
