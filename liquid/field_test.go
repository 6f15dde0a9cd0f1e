package liquid

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ShamylZakariya/Surfacer-sub000/geom"
	"github.com/ShamylZakariya/Surfacer-sub000/physics"
	"github.com/ShamylZakariya/Surfacer-sub000/physics/physicstest"
)

func TestSpawnCircularFill(t *testing.T) {
	w := physicstest.New()
	f := NewField(w, DefaultConfig())

	n := f.SpawnCircularFill(ParticleSpec{Radius: 0.5}, r2.Vec{}, 5)

	want := math.Pi * 25 / 1
	if math.Abs(float64(n)-want) > 0.1*want {
		t.Errorf("spawned %d particles, want about %.1f", n, want)
	}
	if n != f.ParticleCount() {
		t.Errorf("returned %d but field holds %d", n, f.ParticleCount())
	}
	for i, p := range f.Particles() {
		if d := r2.Norm(p.Position); d > 5+1e-9 {
			t.Fatalf("particle %d at distance %f outside fill radius", i, d)
		}
	}
}

func TestSpawnCircularFillFractionalPitch(t *testing.T) {
	w := physicstest.New()
	f := NewField(w, DefaultConfig())

	// Same lattice as radius 3 at pitch 1, scaled by 0.1.
	n := f.SpawnCircularFill(ParticleSpec{Radius: 0.05}, r2.Vec{}, 0.3)
	if n != 29 {
		t.Errorf("spawned %d particles, want 29", n)
	}

	edges := []r2.Vec{{X: 0.3}, {X: -0.3}, {Y: 0.3}, {Y: -0.3}}
	for _, e := range edges {
		found := false
		for _, p := range f.Particles() {
			if geom.Dist(p.Position, e) < 1e-9 {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no particle at lattice edge %v", e)
		}
	}
}

func TestExpiredParticleRemovedAfterOneStep(t *testing.T) {
	w := physicstest.New()
	f := NewField(w, DefaultConfig())
	f.Spawn(ParticleSpec{Radius: 1, Lifespan: 1, EntranceDuration: 0.1, ExitDuration: 0.2})
	f.Spawn(ParticleSpec{Radius: 1})

	f.Step(0.9)
	if f.ParticleCount() != 2 {
		t.Fatalf("count = %d before expiry, want 2", f.ParticleCount())
	}

	f.Step(0.2)
	if f.ParticleCount() != 1 {
		t.Fatalf("count = %d after expiry, want 1", f.ParticleCount())
	}
	if w.BodyFrees != 1 || w.ShapeFrees != 1 {
		t.Errorf("frees bodies=%d shapes=%d, want 1 each", w.BodyFrees, w.ShapeFrees)
	}
	if spawned, expired := f.Counts(); spawned != 2 || expired != 1 {
		t.Errorf("counts = %d/%d, want 2/1", spawned, expired)
	}
}

func TestClearFreesEverything(t *testing.T) {
	w := physicstest.New()
	f := NewField(w, DefaultConfig())
	for i := 0; i < 10; i++ {
		f.Spawn(ParticleSpec{Position: r2.Vec{X: float64(i) * 3}, Radius: 1})
	}

	f.Clear()

	if f.ParticleCount() != 0 {
		t.Errorf("count after clear = %d", f.ParticleCount())
	}
	if w.BodyFrees != 10 || w.ShapeFrees != 10 {
		t.Errorf("frees bodies=%d shapes=%d, want 10 each", w.BodyFrees, w.ShapeFrees)
	}
	if s := w.Stats(); s != (physics.Stats{}) {
		t.Errorf("live handles after clear: %+v", s)
	}
	if f.BB().Valid() {
		t.Errorf("empty field BB should be invalid, got %+v", f.BB())
	}
}

func TestClearDeferredWhileLocked(t *testing.T) {
	w := physicstest.New()
	q := physics.NewQueue()
	f := NewField(w, DefaultConfig(), WithQueue(q))
	f.Spawn(ParticleSpec{Radius: 1})
	f.Spawn(ParticleSpec{Radius: 1, Position: r2.Vec{X: 5}})

	w.Lock()
	f.Clear()
	if w.BodyFrees != 0 {
		t.Fatal("freed handles while world was locked")
	}
	w.Unlock()

	if n := q.Drain(w); n != 2 {
		t.Errorf("drained %d actions, want 2", n)
	}
	if s := w.Stats(); s != (physics.Stats{}) {
		t.Errorf("live handles after drain: %+v", s)
	}
}

func TestEmptyFieldBB(t *testing.T) {
	f := NewField(physicstest.New(), DefaultConfig())
	f.Step(1.0 / 60)
	if f.BB().Valid() {
		t.Error("empty field should report an invalid BB")
	}
	if len(f.Particles()) != 0 {
		t.Error("empty field should have an empty snapshot")
	}
}

func TestSnapshot(t *testing.T) {
	w := physicstest.New()
	f := NewField(w, DefaultConfig())
	f.Spawn(ParticleSpec{Position: r2.Vec{X: 2, Y: 3}, Radius: 2, VisualRadiusScale: 1.5, Lifespan: 10, EntranceDuration: 1, ExitDuration: 1})

	snap := f.Particles()
	if len(snap) != 1 {
		t.Fatalf("snapshot length = %d", len(snap))
	}
	p := snap[0]
	if p.Radius != 2 || math.Abs(p.DrawRadius-1.5) > 1e-9 || math.Abs(p.Opacity-0.5) > 1e-9 {
		t.Errorf("newborn snapshot = %+v, want radius 2, draw 1.5, opacity 0.5", p)
	}

	f.Step(5)
	p = f.Particles()[0]
	if p.Opacity != 1 || math.Abs(p.DrawRadius-3) > 1e-9 {
		t.Errorf("grown snapshot = %+v, want opacity 1, draw 3", p)
	}
	want := geom.ForCircle(r2.Vec{X: 2, Y: 3}, 3)
	if f.BB() != want {
		t.Errorf("BB = %+v, want %+v", f.BB(), want)
	}
}

func TestDampingLeavesRestingParticles(t *testing.T) {
	w := physicstest.New()
	cfg := DefaultConfig()
	cfg.ClumpingForce = 0
	f := NewField(w, cfg)

	resting := f.Spawn(ParticleSpec{Radius: 1, LinearDamping: 0.5})
	moving := f.Spawn(ParticleSpec{Position: r2.Vec{X: 10}, Velocity: r2.Vec{X: 2}, Radius: 1, LinearDamping: 0.5, AngularDamping: 2})
	w.SetAngularVelocity(moving.Body(), 3)

	f.Step(1.0 / 60)

	if v := w.Velocity(resting.Body()); v != (r2.Vec{}) {
		t.Errorf("resting velocity = %v", v)
	}
	if w.Activations(resting.Body()) != 0 {
		t.Error("resting particle should not be woken")
	}
	if v := w.Velocity(moving.Body()); math.Abs(v.X-1) > 1e-9 {
		t.Errorf("damped velocity = %v, want X=1", v)
	}
	if av := w.AngularVelocity(moving.Body()); av != 0 {
		t.Errorf("angular damping should saturate to full stop, got %f", av)
	}
}

func TestEmitter(t *testing.T) {
	w := physicstest.New()
	f := NewField(w, DefaultConfig())
	e := NewEmitter(ParticleSpec{Position: r2.Vec{Y: 10}, Radius: 0.25}, 10, 1, 7)

	if n := e.Emit(f, 0.25); n != 2 {
		t.Errorf("first emit = %d, want 2", n)
	}
	if n := e.Emit(f, 0.25); n != 3 {
		t.Errorf("second emit = %d, want 3", n)
	}
	for _, p := range f.Particles() {
		if d := geom.Dist(p.Position, r2.Vec{Y: 10}); d > 1+1e-9 {
			t.Errorf("particle %v outside jitter radius", p.Position)
		}
	}
}

func TestParseInjury(t *testing.T) {
	tests := []struct {
		in      string
		want    InjuryType
		wantErr bool
	}{
		{"", InjuryNone, false},
		{"acid", InjuryAcid, false},
		{"lava", InjuryFire, false},
		{"fire", InjuryFire, false},
		{"ice", InjuryNone, true},
	}
	for _, tc := range tests {
		got, err := ParseInjury(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("ParseInjury(%q) = %v, %v", tc.in, got, err)
		}
	}
}

func TestStepPushesRadiusToShape(t *testing.T) {
	w := physicstest.New()
	f := NewField(w, DefaultConfig())
	p := f.Spawn(ParticleSpec{Radius: 1, Lifespan: 10, EntranceDuration: 1, ExitDuration: 1})

	if got := w.CircleRadius(p.Shape()); got != 0.5 {
		t.Fatalf("newborn shape radius = %v, want 0.5", got)
	}
	for i := 0; i < 6; i++ {
		f.Step(0.25)
		if got, want := w.CircleRadius(p.Shape()), p.CurrentRadius(); got != want {
			t.Fatalf("step %d: shape radius = %v, particle radius = %v", i, got, want)
		}
	}
	if got := w.CircleRadius(p.Shape()); got != 1 {
		t.Errorf("grown shape radius = %v, want 1", got)
	}
	if w.Activations(p.Body()) == 0 {
		t.Error("resized particle should be woken")
	}
}

func TestStepAppliesClumping(t *testing.T) {
	w, f, a := pairField(1.25)
	b := f.Live()[1]

	f.Step(1.0 / 60)

	if w.Queries != 2 {
		t.Errorf("queries = %d, want one per particle", w.Queries)
	}
	if len(w.Impulses) != 4 {
		t.Fatalf("impulses = %d, want 4", len(w.Impulses))
	}
	var sum r2.Vec
	hit := map[physics.BodyID]int{}
	for _, imp := range w.Impulses {
		sum = r2.Add(sum, imp.Impulse)
		hit[imp.Body]++
	}
	if hit[a.Body()] != 2 || hit[b.Body()] != 2 {
		t.Errorf("impulses per body = %v, want 2 each", hit)
	}
	if r2.Norm(sum) > 1e-12 {
		t.Errorf("net impulse = %v, want zero", sum)
	}
	if v := w.Velocity(a.Body()); v.X <= 0 {
		t.Errorf("a velocity = %v, want toward b", v)
	}
}
