package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/regolith/internal/dynamo"
	"github.com/san-kum/regolith/internal/scenario"
)

var _ = Describe("Integrator", func() {
	var p *dynamo.Params

	BeforeEach(func() {
		p = dynamo.DefaultParams()
	})

	It("never leaves a particle below its radius", func() {
		particles := []dynamo.Particle{
			newGrain(p, mgl64.Vec3{0, 0.002, 0}),
			newGrain(p, mgl64.Vec3{0.1, -0.5, 0}),
			newGrain(p, mgl64.Vec3{0.2, 0.007, 0}),
			newGrain(p, mgl64.Vec3{0.3, 0.05, 0}),
		}
		particles[0].Velocity = mgl64.Vec3{0.3, -2, 0}
		particles[2].Velocity = mgl64.Vec3{0, -1000, 0.1}
		particles[3].Velocity = mgl64.Vec3{0, 5, 0}

		for step := 0; step < 50; step++ {
			UpdateParticles(particles, p, p.TimeStep)
			for i, pt := range particles {
				Expect(pt.Position[1]).To(BeNumerically(">=", pt.Radius), "particle %d step %d", i, step)
			}
		}
	})

	It("bounces upward at half the impact speed", func() {
		particles := []dynamo.Particle{newGrain(p, mgl64.Vec3{0, 1, 0})}
		dt := p.TimeStep
		g := p.Gravity[1]

		impacted := false
		for step := 0; step < 10000 && !impacted; step++ {
			pt := particles[0]
			vel := pt.Velocity[1] + g*dt
			pos := pt.Position[1] + vel*dt
			damped := vel * VelocityDamping

			UpdateParticles(particles, p, dt)

			if pos < pt.Radius {
				impacted = true
				Expect(damped).To(BeNumerically("<", 0))
				Expect(particles[0].Velocity[1]).To(BeNumerically("~", -0.5*damped, 1e-12))
				Expect(particles[0].Position[1]).To(Equal(pt.Radius))
			}
		}
		Expect(impacted).To(BeTrue())
	})

	It("slows horizontal motion on the floor", func() {
		particles := []dynamo.Particle{newGrain(p, mgl64.Vec3{0, p.ParticleRadius, 0})}
		particles[0].Velocity = mgl64.Vec3{0.5, 0, 0}

		UpdateParticles(particles, p, p.TimeStep)

		free := 0.5 * VelocityDamping
		Expect(particles[0].Velocity[0]).To(BeNumerically("<", free))
		Expect(particles[0].Velocity[0]).To(BeNumerically(">", 0))
	})

	It("applies floor friction as an impulse divided by the mass", func() {
		particles := []dynamo.Particle{newGrain(p, mgl64.Vec3{0, p.ParticleRadius, 0})}
		particles[0].Velocity = mgl64.Vec3{0.5, 0, 0}
		mass, dt := particles[0].Mass, p.TimeStep

		UpdateParticles(particles, p, dt)

		slide := 0.5 * VelocityDamping
		force := mgl64.Vec3{slide, 0, 0}.Normalize().Mul(-p.Friction * mass * p.Gravity.Len())
		Expect(particles[0].Velocity[0]).To(Equal(slide + force[0]*dt/mass))
		Expect(particles[0].Velocity[2]).To(BeZero())
	})

	It("inverts and halves the vertical velocity of a buried particle", func() {
		particles := []dynamo.Particle{newGrain(p, mgl64.Vec3{0, -0.5, 0})}
		particles[0].Velocity = mgl64.Vec3{0, 5, 0}
		dt := p.TimeStep

		UpdateParticles(particles, p, dt)

		rising := (5 + p.Gravity[1]*dt) * VelocityDamping
		Expect(particles[0].Velocity[1]).To(BeNumerically("~", -0.5*rising, 1e-12))
		Expect(particles[0].Position[1]).To(Equal(particles[0].Radius))
	})

	It("leaves airborne particles to gravity alone", func() {
		particles := []dynamo.Particle{newGrain(p, mgl64.Vec3{0, 0.5, 0})}
		UpdateParticles(particles, p, p.TimeStep)

		Expect(particles[0].Acceleration).To(Equal(p.Gravity))
		Expect(particles[0].Velocity[1]).To(BeNumerically("~", p.Gravity[1]*p.TimeStep*VelocityDamping, 1e-15))
	})
})

var _ = Describe("Tool contact", func() {
	var (
		p    *dynamo.Params
		tool *dynamo.Tool
	)

	BeforeEach(func() {
		p = dynamo.DefaultParams()
		tool = dynamo.NewTool(mgl64.Vec3{0, 0.3, 0})
	})

	grainAt := func(local mgl64.Vec3) dynamo.Particle {
		return newGrain(p, tool.Position.Add(local))
	}

	It("loads the tool along the normal toward a particle above the blade", func() {
		particles := []dynamo.Particle{grainAt(mgl64.Vec3{0, 0.010, 0})}
		ResetAccelerations(particles, mgl64.Vec3{})

		contacts, _ := ApplyToolContacts(tool, particles, p)
		Expect(contacts).To(Equal(1))
		load := p.ToolStiffness * 0.002
		Expect(tool.Forces[1]).To(BeNumerically("~", load, 1e-9))
		Expect(particles[0].Acceleration[1]).To(BeNumerically("~", -load/particles[0].Mass, 1e-6))
		Expect(particles[0].Acceleration[0]).To(BeZero())
	})

	It("selects the shallowest penetration axis", func() {
		pt := grainAt(mgl64.Vec3{0.03, 0, 0})
		c, ok := ResolveToolContact(tool, &pt, p)
		Expect(ok).To(BeTrue())
		Expect(c.Normal.ApproxEqualThreshold(mgl64.Vec3{1, 0, 0}, 1e-12)).To(BeTrue())
		Expect(c.Penetration).To(BeNumerically("~", 0.002, 1e-12))

		below := grainAt(mgl64.Vec3{0, -0.010, 0})
		c, ok = ResolveToolContact(tool, &below, p)
		Expect(ok).To(BeTrue())
		Expect(c.Normal.ApproxEqualThreshold(mgl64.Vec3{0, -1, 0}, 1e-12)).To(BeTrue())
	})

	It("reports no contact outside the inflated box", func() {
		pt := grainAt(mgl64.Vec3{0, 0.0121, 0})
		_, ok := ResolveToolContact(tool, &pt, p)
		Expect(ok).To(BeFalse())
	})

	It("applies no force when damping outweighs the spring", func() {
		particles := []dynamo.Particle{grainAt(mgl64.Vec3{0, 0.010, 0})}
		particles[0].Velocity = mgl64.Vec3{0, -10, 0}
		ResetAccelerations(particles, mgl64.Vec3{})

		contacts, cohesive := ApplyToolContacts(tool, particles, p)
		Expect(contacts).To(BeZero())
		Expect(cohesive).To(BeZero())
		Expect(particles[0].Acceleration).To(Equal(mgl64.Vec3{}))
		Expect(tool.Forces).To(Equal(mgl64.Vec3{}))
	})

	It("keeps the damped force on a particle separating quickly", func() {
		particles := []dynamo.Particle{grainAt(mgl64.Vec3{0, 0.010, 0})}
		particles[0].Velocity = mgl64.Vec3{0, 10, 0}
		ResetAccelerations(particles, mgl64.Vec3{})

		contacts, _ := ApplyToolContacts(tool, particles, p)
		Expect(contacts).To(Equal(1))
		load := p.ToolStiffness*0.002 + p.ToolDamping*10
		Expect(tool.Forces[1]).To(BeNumerically("~", load, 1e-9))
		Expect(particles[0].Acceleration[1]).To(BeNumerically("~", -load/particles[0].Mass, 1e-6))
	})

	It("adds damping along the normal to the spring term", func() {
		still := grainAt(mgl64.Vec3{0, 0.010, 0})
		moving := still
		moving.Velocity = mgl64.Vec3{0, 0.1, 0}

		a, _ := ResolveToolContact(tool, &still, p)
		b, _ := ResolveToolContact(tool, &moving, p)
		Expect(b.Force.Len()).To(BeNumerically("~", a.Force.Len()+p.ToolDamping*0.1, 1e-9))
	})

	It("adds surface cohesion in the shallow band", func() {
		particles := []dynamo.Particle{grainAt(mgl64.Vec3{0, 0.0115, 0})}
		ResetAccelerations(particles, mgl64.Vec3{})

		contacts, cohesive := ApplyToolContacts(tool, particles, p)
		Expect(contacts).To(Equal(1))
		Expect(cohesive).To(Equal(1))
		expected := p.ToolStiffness*0.0005 + p.Cohesion*ToolCohesionScale
		Expect(tool.Forces[1]).To(BeNumerically("~", expected, 1e-9))
	})

	It("balances particle reactions against the tool load", func() {
		particles := []dynamo.Particle{
			grainAt(mgl64.Vec3{0, 0.010, 0}),
			grainAt(mgl64.Vec3{0.03, 0, 0}),
			grainAt(mgl64.Vec3{0, -0.0115, 0.01}),
			grainAt(mgl64.Vec3{0.02, 0.010, -0.015}),
			grainAt(mgl64.Vec3{0.5, 0.5, 0}),
		}
		particles[1].Velocity = mgl64.Vec3{-0.2, 0, 0.05}
		ResetAccelerations(particles, mgl64.Vec3{})

		contacts, cohesive := ApplyToolContacts(tool, particles, p)
		Expect(contacts).To(Equal(4))
		Expect(cohesive).To(Equal(1))

		var reaction mgl64.Vec3
		for _, pt := range particles {
			reaction = reaction.Add(pt.Acceleration.Mul(pt.Mass))
		}
		Expect(reaction.Add(tool.Forces).Len()).To(BeNumerically("<", 1e-10))
	})

	It("accumulates torque about the tool centre", func() {
		particles := []dynamo.Particle{grainAt(mgl64.Vec3{0.02, 0.010, 0})}
		ApplyToolContacts(tool, particles, p)

		Expect(tool.Torque.ApproxEqualThreshold(mgl64.Vec3{0, 0, 0.02}, 1e-9)).To(BeTrue())
	})

	It("clears loads from the previous tick", func() {
		particles := []dynamo.Particle{grainAt(mgl64.Vec3{0, 0.010, 0})}
		ApplyToolContacts(tool, particles, p)
		Expect(tool.Forces.Len()).To(BeNumerically(">", 0))

		particles[0].Position = mgl64.Vec3{1, 1, 1}
		ApplyToolContacts(tool, particles, p)
		Expect(tool.Forces).To(Equal(mgl64.Vec3{}))
		Expect(tool.Torque).To(Equal(mgl64.Vec3{}))
	})

	It("respects the tool orientation", func() {
		tool.Rotation = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})
		// local +y now points along world -x
		pt := newGrain(p, tool.Position.Add(mgl64.Vec3{-0.010, 0, 0}))

		c, ok := ResolveToolContact(tool, &pt, p)
		Expect(ok).To(BeTrue())
		Expect(c.Normal.ApproxEqualThreshold(mgl64.Vec3{-1, 0, 0}, 1e-9)).To(BeTrue())
	})
})

var _ = Describe("Tool kinematics", func() {
	var (
		p    *dynamo.Params
		tool *dynamo.Tool
	)

	BeforeEach(func() {
		p = dynamo.DefaultParams()
		tool = dynamo.NewTool(mgl64.Vec3{})
	})

	It("moves forward along -Z at the configured speed", func() {
		MoveTool(tool, dynamo.ToolInput{Forward: true}, p)
		Expect(tool.Position.ApproxEqual(mgl64.Vec3{0, 0, -p.ToolMoveSpeed})).To(BeTrue())
	})

	It("normalizes diagonal movement", func() {
		MoveTool(tool, dynamo.ToolInput{Forward: true, Right: true}, p)
		Expect(tool.Position.Len()).To(BeNumerically("~", p.ToolMoveSpeed, 1e-12))
		Expect(tool.Position[0]).To(BeNumerically(">", 0))
		Expect(tool.Position[2]).To(BeNumerically("<", 0))
	})

	It("cancels opposing keys", func() {
		MoveTool(tool, dynamo.ToolInput{Up: true, Down: true}, p)
		Expect(tool.Position).To(Equal(mgl64.Vec3{}))
	})

	It("ignores pointer motion unless rotation is engaged", func() {
		MoveTool(tool, dynamo.ToolInput{PointerDelta: mgl64.Vec2{50, 20}}, p)
		Expect(tool.Rotation).To(Equal(mgl64.QuatIdent()))
	})

	It("yaws about world Y from horizontal pointer motion", func() {
		dx := -(math.Pi / 2) / p.ToolTurnSpeed
		MoveTool(tool, dynamo.ToolInput{PointerDelta: mgl64.Vec2{dx, 0}, Rotate: true}, p)

		got := tool.Rotation.Rotate(mgl64.Vec3{1, 0, 0})
		Expect(got.ApproxEqualThreshold(mgl64.Vec3{0, 0, -1}, 1e-9)).To(BeTrue())
		Expect(tool.Rotation.Len()).To(BeNumerically("~", 1, 1e-12))
	})

	It("tolerates a nil tool", func() {
		Expect(func() { MoveTool(nil, dynamo.ToolInput{Up: true}, p) }).NotTo(Panic())
	})
})

var _ = Describe("Engine", func() {
	var p *dynamo.Params

	BeforeEach(func() {
		p = dynamo.DefaultParams()
	})

	It("handles an empty world without a tool", func() {
		e := NewEngine(p)
		stats := e.Step(nil, nil, p.TimeStep, dynamo.ToolInput{})
		Expect(stats).To(Equal(dynamo.StepStats{}))
	})

	It("advances the world clock", func() {
		w := &dynamo.World{
			Particles: []dynamo.Particle{newGrain(p, mgl64.Vec3{0, 0.5, 0})},
			Tool:      dynamo.NewTool(p.ToolStart),
		}
		e := NewEngine(p)
		for i := 0; i < 10; i++ {
			e.StepWorld(w, p.TimeStep, dynamo.ToolInput{})
		}
		Expect(w.Steps).To(Equal(10))
		Expect(w.Time).To(BeNumerically("~", 10*p.TimeStep, 1e-12))
	})

	It("moves the tool before resolving contact", func() {
		tool := dynamo.NewTool(mgl64.Vec3{0, 0.3, 0})
		// one tick of Down brings the blade onto this particle
		particles := []dynamo.Particle{newGrain(p, mgl64.Vec3{0, 0.3 - 0.03 - 0.010, 0})}

		stats := NewEngine(p).Step(particles, tool, p.TimeStep, dynamo.ToolInput{Down: true})
		Expect(stats.ToolContacts).To(Equal(1))
		Expect(tool.Forces[1]).To(BeNumerically("<", 0))
	})

	It("keeps a settling pile finite", func() {
		var particles []dynamo.Particle
		spacing := 2.1 * p.ParticleRadius
		for i := 0; i < 4; i++ {
			for k := 0; k < 2; k++ {
				pos := mgl64.Vec3{float64(i) * spacing, p.ParticleRadius + float64(k)*spacing, 0}
				particles = append(particles, newGrain(p, pos))
			}
		}
		w := &dynamo.World{Particles: particles}
		e := NewEngine(p)
		for i := 0; i < 240; i++ {
			e.StepWorld(w, p.TimeStep, dynamo.ToolInput{})
		}
		Expect(w.IsValid()).To(BeTrue())
	})

	It("gives the same result through an engine and the one-shot Step", func() {
		p.GridSize, p.Layers = 6, 2
		a, err := scenario.Build(p)
		Expect(err).NotTo(HaveOccurred())
		b := a.Clone()

		e := NewEngine(p)
		for i := 0; i < 60; i++ {
			in := dynamo.ToolInput{Down: true}
			sa := e.Step(a.Particles, a.Tool, p.TimeStep, in)
			sb := Step(b.Particles, b.Tool, p, p.TimeStep, in)
			Expect(sb).To(Equal(sa), "step %d", i)
		}
		for i := range a.Particles {
			Expect(b.Particles[i].Position).To(Equal(a.Particles[i].Position))
			Expect(b.Particles[i].Velocity).To(Equal(a.Particles[i].Velocity))
		}
		Expect(b.Tool.Forces).To(Equal(a.Tool.Forces))
	})

	It("reuses its scratch buffer when the particle count shrinks", func() {
		e := NewEngine(p)
		crowd := make([]dynamo.Particle, 0, 8)
		for i := 0; i < 8; i++ {
			crowd = append(crowd, newGrain(p, mgl64.Vec3{float64(i) * 0.1, p.ParticleRadius, 0}))
		}
		e.Step(crowd, nil, p.TimeStep, dynamo.ToolInput{})

		particles := []dynamo.Particle{
			newGrain(p, mgl64.Vec3{0, p.ParticleRadius, 0}),
			newGrain(p, mgl64.Vec3{1.9 * p.ParticleRadius, p.ParticleRadius, 0}),
		}
		Expect(e.Step(particles, nil, p.TimeStep, dynamo.ToolInput{}).Pairs).To(Equal(1))
	})
})
