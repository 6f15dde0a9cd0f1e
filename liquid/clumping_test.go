package liquid

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ShamylZakariya/Surfacer-sub000/physics/physicstest"
)

func TestBandScale(t *testing.T) {
	tests := []struct {
		name string
		d    float64
		want float64
	}{
		{"overlapping", 0.5, 0},
		{"touching", 1, 0},
		{"quarter band", 1.125, 0.5},
		{"middle", 1.25, 1},
		{"three quarters", 1.375, 0.5},
		{"band edge", 1.5, 0},
		{"distant", 3, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := BandScale(tc.d, 1); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("BandScale(%f, 1) = %f, want %f", tc.d, got, tc.want)
			}
		})
	}
}

func pairField(separation float64) (*physicstest.World, *Field, *Particle) {
	w := physicstest.New()
	cfg := DefaultConfig()
	cfg.ClumpingForce = 20
	f := NewField(w, cfg)
	a := f.Spawn(ParticleSpec{Radius: 0.5})
	f.Spawn(ParticleSpec{Position: r2.Vec{X: separation}, Radius: 0.5})
	return w, f, a
}

func TestClumpingEqualAndOpposite(t *testing.T) {
	const dt = 1.0 / 60
	w, f, a := pairField(1.25)

	f.Clumping().Apply(a, dt)

	if len(w.Impulses) != 2 {
		t.Fatalf("recorded %d impulses, want 2", len(w.Impulses))
	}
	sum := r2.Add(w.Impulses[0].Impulse, w.Impulses[1].Impulse)
	if r2.Norm(sum) > 1e-12 {
		t.Errorf("impulses not equal and opposite: %v + %v", w.Impulses[0].Impulse, w.Impulses[1].Impulse)
	}

	mass := 1 * math.Pi * 0.25
	want := 0.5 * 20 * dt * mass
	if got := w.Impulses[0].Impulse.X; math.Abs(got-want) > 1e-12 {
		t.Errorf("impulse on a = %f, want %f toward its neighbor", got, want)
	}
}

func TestClumpingOutsideBand(t *testing.T) {
	tests := []struct {
		name       string
		separation float64
	}{
		{"touching", 1},
		{"overlapping", 0.8},
		{"beyond band", 1.5},
		{"far", 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, f, a := pairField(tc.separation)
			f.Clumping().Apply(a, 1.0/60)
			if len(w.Impulses) != 0 {
				t.Errorf("applied %d impulses at separation %f", len(w.Impulses), tc.separation)
			}
		})
	}
}

func TestClumpingIgnoresOtherFields(t *testing.T) {
	w := physicstest.New()
	cfg := DefaultConfig()
	f := NewField(w, cfg)
	other := NewField(w, cfg)
	a := f.Spawn(ParticleSpec{Radius: 0.5})
	other.Spawn(ParticleSpec{Position: r2.Vec{X: 1.25}, Radius: 0.5})

	f.Clumping().Apply(a, 1.0/60)
	if len(w.Impulses) != 0 {
		t.Errorf("clumping crossed field boundary: %d impulses", len(w.Impulses))
	}
	if w.Queries != 1 {
		t.Errorf("queries = %d, want one broad-phase query", w.Queries)
	}
}
