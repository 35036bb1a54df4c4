package scenario

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/regolith/internal/dynamo"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name   string
		grid   int
		layers int
	}{
		{"default", dynamo.DefaultGridSize, dynamo.DefaultLayers},
		{"single layer", 4, 1},
		{"single grain", 1, 1},
		{"empty", 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := dynamo.DefaultParams()
			p.GridSize = tt.grid
			p.Layers = tt.layers

			w, err := Build(p)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if want := tt.grid * tt.grid * tt.layers; len(w.Particles) != want {
				t.Errorf("got %d particles, want %d", len(w.Particles), want)
			}
			if w.Tool == nil || w.Tool.Position != p.ToolStart || w.Tool.Rotation != mgl64.QuatIdent() {
				t.Errorf("tool = %+v, want identity at %v", w.Tool, p.ToolStart)
			}
			for i, pt := range w.Particles {
				if pt.Position[1] < pt.Radius {
					t.Fatalf("particle %d starts below the floor: %v", i, pt.Position)
				}
				if pt.Density != p.SurfaceDensity || pt.Mass != p.ParticleMass {
					t.Fatalf("particle %d has mass %v density %v", i, pt.Mass, pt.Density)
				}
			}
		})
	}
}

func TestBuildRejectsInvalidParams(t *testing.T) {
	p := dynamo.DefaultParams()
	p.MinRadius = p.ParticleRadius * 2
	if _, err := Build(p); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("Build() error = %v, want ErrParameterBounds", err)
	}
}

func TestPositionsLattice(t *testing.T) {
	p := dynamo.DefaultParams()
	p.GridSize = 2
	p.Layers = 2
	r := p.ParticleRadius
	s := SpacingFactor * r

	got := Positions(p)
	want := []mgl64.Vec3{
		{0, r, 0},
		{0, s*0.816 + r, r},
		{r, r, s},
		{r, s*0.816 + r, s + r},
		{s * 0.866, r, 0},
	}
	for i, w := range want {
		if !got[i].ApproxEqualThreshold(w, 1e-12) {
			t.Errorf("Positions()[%d] = %v, want %v", i, got[i], w)
		}
	}
}

func TestPositionsDoNotCollapse(t *testing.T) {
	p := dynamo.DefaultParams()
	p.GridSize = 5
	pos := Positions(p)

	minGap := math.Inf(1)
	for i := range pos {
		for j := i + 1; j < len(pos); j++ {
			minGap = math.Min(minGap, dynamo.Distance(pos[i], pos[j]))
		}
	}
	if minGap <= 2*p.MinRadius {
		t.Errorf("closest grains %v apart, inside the minimum separation %v", minGap, 2*p.MinRadius)
	}
}

func TestBounds(t *testing.T) {
	w := &dynamo.World{Particles: []dynamo.Particle{
		{Position: mgl64.Vec3{0, 1, 0}, Radius: 0.5},
		{Position: mgl64.Vec3{2, 3, -1}, Radius: 0.5},
	}}
	lo, hi := Bounds(w)
	if lo != (mgl64.Vec3{-0.5, 0.5, -1.5}) || hi != (mgl64.Vec3{2.5, 3.5, 0.5}) {
		t.Errorf("Bounds() = %v, %v", lo, hi)
	}

	lo, hi = Bounds(&dynamo.World{})
	if lo != (mgl64.Vec3{}) || hi != (mgl64.Vec3{}) {
		t.Errorf("empty Bounds() = %v, %v", lo, hi)
	}
}
