package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/regolith/internal/dynamo"
)

func newGrain(p *dynamo.Params, pos mgl64.Vec3) dynamo.Particle {
	pt, err := dynamo.NewParticle(pos, p.ParticleMass, p.ParticleRadius, p.MinRadius, p.SurfaceDensity)
	Expect(err).NotTo(HaveOccurred())
	return pt
}

var _ = Describe("Pairwise interaction", func() {
	var p *dynamo.Params

	BeforeEach(func() {
		p = dynamo.DefaultParams()
	})

	Describe("CohesionForce", func() {
		It("decreases strictly across the inverse repulsion range", func() {
			amin := 2 * p.MinRadius
			lo := amin + OverlapEpsilon
			hi := 2 * p.ParticleRadius
			prev := math.Inf(1)
			for i := 0; i <= 200; i++ {
				d := lo + (hi-lo)*float64(i)/201
				f := CohesionForce(d, p)
				Expect(f).To(BeNumerically(">", 0))
				Expect(f).To(BeNumerically("<", prev))
				prev = f
			}
		})

		It("is far larger near the minimum separation than near contact", func() {
			amin := 2 * p.MinRadius
			near := CohesionForce(amin+OverlapEpsilon, p)
			far := CohesionForce(2*p.ParticleRadius-1e-5, p)
			Expect(near).To(BeNumerically(">", 100*far))
		})

		It("uses the linear spring inside the epsilon band", func() {
			amin := 2 * p.MinRadius
			d := amin + 0.00005
			Expect(CohesionForce(d, p)).To(BeNumerically("~", EmergencyStiffness*(amin+OverlapEpsilon-d), 1e-12))
		})

		It("vanishes at the attraction boundary and attracts just inside it", func() {
			boundary := 2 * p.AttractionRadius()
			Expect(CohesionForce(boundary, p)).To(BeZero())

			inside := CohesionForce(boundary-1e-6, p)
			Expect(inside).To(BeNumerically("<", 0))
			Expect(inside).To(BeNumerically(">", -1e-6))
		})

		It("attracts throughout the near-field band", func() {
			for _, d := range []float64{2 * p.ParticleRadius, 0.0145, 0.0150, 0.0153} {
				Expect(CohesionForce(d, p)).To(BeNumerically("<", 0), "distance %g", d)
			}
		})
	})

	Describe("PairForce", func() {
		It("pushes particles apart in the epsilon band with the linear magnitude", func() {
			amin := 2 * p.MinRadius
			distance := amin + 0.00005
			a := newGrain(p, mgl64.Vec3{0, 0.5, 0})
			b := newGrain(p, mgl64.Vec3{distance, 0.5, 0})

			f, ok := PairForce(&a, &b, p)
			Expect(ok).To(BeTrue())
			Expect(f.Len()).To(BeNumerically("~", 100*(amin+0.0001-distance), 1e-12))
			Expect(f[0]).To(BeNumerically(">", 0))
			Expect(f[1]).To(BeZero())
			Expect(f[2]).To(BeZero())
		})

		It("pulls particles together in the near field", func() {
			a := newGrain(p, mgl64.Vec3{0, 0.5, 0})
			b := newGrain(p, mgl64.Vec3{0.015, 0.5, 0})

			f, ok := PairForce(&a, &b, p)
			Expect(ok).To(BeTrue())
			Expect(f[0]).To(BeNumerically("<", 0))
		})

		It("ignores pairs beyond the attraction cutoff", func() {
			a := newGrain(p, mgl64.Vec3{0, 0.5, 0})
			b := newGrain(p, mgl64.Vec3{2*p.AttractionRadius() + 1e-9, 0.5, 0})

			_, ok := PairForce(&a, &b, p)
			Expect(ok).To(BeFalse())
		})

		It("opposes tangential sliding", func() {
			a := newGrain(p, mgl64.Vec3{0, 0.5, 0})
			b := newGrain(p, mgl64.Vec3{0.012, 0.5, 0})
			b.Velocity = mgl64.Vec3{0, 0, 0.1}

			f, ok := PairForce(&a, &b, p)
			Expect(ok).To(BeTrue())
			normal := CohesionForce(0.012, p)
			Expect(f[2]).To(BeNumerically("~", -p.Friction*normal*PairFrictionScale, 1e-15))
		})

		It("separates coincident particles without producing NaN", func() {
			a := newGrain(p, mgl64.Vec3{0, 0.5, 0})
			b := a

			f, ok := PairForce(&a, &b, p)
			Expect(ok).To(BeTrue())
			Expect(math.IsNaN(f.Len())).To(BeFalse())
			Expect(f[1]).To(BeNumerically(">", 0))
		})
	})

	Describe("accumulation", func() {
		It("conserves momentum for an isolated pair", func() {
			particles := []dynamo.Particle{
				newGrain(p, mgl64.Vec3{0, 0.5, 0}),
				newGrain(p, mgl64.Vec3{0.0121, 0.505, 0.003}),
			}
			particles[1].Velocity = mgl64.Vec3{0.02, -0.01, 0.05}

			e := NewEngine(p)
			ResetAccelerations(particles, mgl64.Vec3{})
			Expect(e.accumulatePairs(particles)).To(Equal(1))

			var net mgl64.Vec3
			for _, pt := range particles {
				net = net.Add(pt.Acceleration.Mul(pt.Mass))
			}
			Expect(net.Len()).To(BeNumerically("<", 1e-15))
			Expect(particles[0].Acceleration.Len()).To(BeNumerically(">", 0))
		})

		It("does not depend on particle order", func() {
			positions := []mgl64.Vec3{
				{0, 0.5, 0}, {0.012, 0.5, 0}, {0.006, 0.51, 0.004}, {0.02, 0.5, 0.001}, {0.013, 0.512, -0.006},
			}
			forward := make([]dynamo.Particle, len(positions))
			reverse := make([]dynamo.Particle, len(positions))
			for i, pos := range positions {
				forward[i] = newGrain(p, pos)
				reverse[len(positions)-1-i] = newGrain(p, pos)
			}

			e := NewEngine(p)
			ResetAccelerations(forward, p.Gravity)
			e.accumulatePairs(forward)
			ResetAccelerations(reverse, p.Gravity)
			e.accumulatePairs(reverse)

			for i := range forward {
				got := reverse[len(forward)-1-i].Acceleration
				Expect(got.ApproxEqualThreshold(forward[i].Acceleration, 1e-9)).To(BeTrue())
			}
		})
	})
})
