package creature

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ShamylZakariya/Surfacer-sub000/lifecycle"
	"github.com/ShamylZakariya/Surfacer-sub000/physics"
	"github.com/ShamylZakariya/Surfacer-sub000/physics/physicstest"
)

func externalParams(t Topology, n int) Params {
	p := DefaultParams(t)
	p.NumParticles = n
	p.PulseMagnitude = 0
	p.Lifecycle = lifecycle.ExternallyDriven()
	return p
}

func TestBuildRadialTethered(t *testing.T) {
	for _, n := range []int{3, 8, 16} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			w := physicstest.New()
			b := Build(w, externalParams(RadialTethered, n))

			if got := len(b.Segments()); got != n {
				t.Errorf("segments = %d, want %d", got, n)
			}
			if got := len(b.Particles()); got != n+1 {
				t.Errorf("particles = %d, want %d", got, n+1)
			}
			if got := w.Stats().Bodies; got != n+1 {
				t.Errorf("bodies = %d, want %d", got, n+1)
			}
			if got := w.CountConstraints(physics.Slide); got != 2*n {
				t.Errorf("slide constraints = %d, want %d (tethers + perimeter)", got, 2*n)
			}
			if got := w.CountConstraints(physics.DampedSpring); got != n {
				t.Errorf("springs = %d, want %d", got, n)
			}
			if got := w.CountConstraints(physics.Motor); got != 1 {
				t.Errorf("motors = %d, want 1", got)
			}
			if got := len(b.Constraints()); got != 3*n+1 {
				t.Errorf("owned constraints = %d, want %d", got, 3*n+1)
			}
		})
	}
}

func TestRadialSpringsStartSlack(t *testing.T) {
	w := physicstest.New()
	p := DefaultParams(RadialTethered)
	b := Build(w, p)

	for i, seg := range b.Segments() {
		if k := w.Constraint(seg.spring).Stiffness; k != 0 {
			t.Errorf("segment %d spring stiffness = %f at birth, want 0", i, k)
		}
	}
}

func TestBuildChainMotorized(t *testing.T) {
	const n = 6
	w := physicstest.New()
	b := Build(w, externalParams(ChainMotorized, n))

	if got := w.CountConstraints(physics.Slide); got != n {
		t.Errorf("slides = %d, want %d", got, n)
	}
	if got := w.CountConstraints(physics.Motor); got != n {
		t.Errorf("motors = %d, want %d", got, n)
	}
	if got := w.CountConstraints(physics.FixedAngle); got != 1 {
		t.Errorf("fixed angle locks = %d, want 1", got)
	}
	if got := w.CountConstraints(physics.DampedSpring); got != 0 {
		t.Errorf("springs = %d, want 0", got)
	}

	ps := b.Particles()
	if len(ps) != n+1 {
		t.Fatalf("particles = %d, want %d", len(ps), n+1)
	}
	crown := ps[n]
	if crown.Radius != 0 || crown.DrawRadius != 0 {
		t.Errorf("crown particle should have zero radius, got %+v", crown)
	}
	if d := r2.Norm(r2.Sub(crown.Position, b.Position())); d > 1e-9 {
		t.Errorf("crown at %v, want the ring centroid %v", crown.Position, b.Position())
	}
}

func TestLifecycleRetunesConstraints(t *testing.T) {
	w := physicstest.New()
	p := externalParams(RadialTethered, 8)
	b := Build(w, p)

	b.SetLifecycle(0)
	b.Step(1.0 / 60)
	for i, seg := range b.Segments() {
		if k := w.Constraint(seg.spring).Stiffness; math.Abs(k) > 1e-9 {
			t.Errorf("segment %d stiffness at lifecycle 0 = %f", i, k)
		}
		if m := w.Constraint(seg.slide).Max; math.Abs(m) > 1e-9 {
			t.Errorf("segment %d slide max at lifecycle 0 = %f", i, m)
		}
		if r := w.CircleRadius(seg.shape); r <= 0 {
			t.Errorf("segment %d shape radius must stay positive, got %f", i, r)
		}
	}

	b.SetLifecycle(1)
	b.Step(1.0 / 60)
	for i, seg := range b.Segments() {
		if k := w.Constraint(seg.spring).Stiffness; math.Abs(k-p.SpringStiffness) > 1e-9 {
			t.Errorf("segment %d stiffness at lifecycle 1 = %f, want %f", i, k, p.SpringStiffness)
		}
		if m := w.Constraint(seg.slide).Max; math.Abs(m-p.Radius) > 1e-9 {
			t.Errorf("segment %d slide max at lifecycle 1 = %f, want %f", i, m, p.Radius)
		}
		if r := w.CircleRadius(seg.shape); math.Abs(r-p.SegmentRadius) > 1e-9 {
			t.Errorf("segment %d shape radius = %f, want %f", i, r, p.SegmentRadius)
		}
	}
}

func TestSelfTimedLifecycle(t *testing.T) {
	w := physicstest.New()
	p := DefaultParams(RadialTethered)
	p.PulseMagnitude = 0
	p.Lifecycle = lifecycle.SelfTimed(2, 1)
	b := Build(w, p)

	b.Step(1)
	if lc := b.Lifecycle(); math.Abs(lc-0.5) > 1e-9 {
		t.Fatalf("lifecycle mid-intro = %f, want 0.5", lc)
	}
	seg := b.Segments()[0]
	if k := w.Constraint(seg.spring).Stiffness; math.Abs(k-0.5*p.SpringStiffness) > 1e-9 {
		t.Errorf("stiffness mid-intro = %f, want %f", k, 0.5*p.SpringStiffness)
	}

	b.SetLifecycle(0)
	if b.Lifecycle() != 0.5 {
		t.Error("SetLifecycle must not affect a self-timed creature")
	}

	b.Step(5)
	b.Finish()
	b.Step(1.5)
	if !b.Done() {
		t.Errorf("creature should be done after its exit, lifecycle %f", b.Lifecycle())
	}
}

func TestLocomotionRate(t *testing.T) {
	const speed = 3.0

	t.Run("radial", func(t *testing.T) {
		w := physicstest.New()
		p := externalParams(RadialTethered, 8)
		b := Build(w, p)
		b.SetSpeed(speed)
		b.Step(1.0 / 60)

		want := speed / (2 * math.Pi * p.Radius)
		if got := w.Constraint(b.anchor).Rate; math.Abs(got-want) > 1e-12 {
			t.Errorf("motor rate = %f, want %f", got, want)
		}
	})

	t.Run("chain", func(t *testing.T) {
		w := physicstest.New()
		p := externalParams(ChainMotorized, 9)
		b := Build(w, p)
		b.SetSpeed(speed)
		b.Step(1.0 / 60)

		want := speed / (2 * math.Pi * p.Radius) / 3
		for i, seg := range b.Segments() {
			if got := w.Constraint(seg.motor).Rate; math.Abs(got-want) > 1e-12 {
				t.Errorf("segment %d motor rate = %f, want %f", i, got, want)
			}
		}
	})
}

func TestTeardownOrder(t *testing.T) {
	w := physicstest.New()
	b := Build(w, externalParams(RadialTethered, 6))
	b.Attach(OrganSpec{Offset: r2.Vec{Y: 0.5}, Radius: 0.2, MinAngle: -0.5, MaxAngle: 0.5})
	w.Events = nil

	b.Teardown()
	b.Teardown()

	rank := map[string]int{"constraint": 0, "shape": 1, "body": 2}
	phase := 0
	for _, ev := range w.Events {
		r := rank[strings.Fields(ev)[1]]
		if r < phase {
			t.Fatalf("event %q out of order: %v", ev, w.Events)
		}
		phase = r
	}
	if want := fmt.Sprintf("free body %d", b.CentralBody()); w.Events[len(w.Events)-1] != want {
		t.Errorf("last event = %q, want %q", w.Events[len(w.Events)-1], want)
	}
	if s := w.Stats(); s != (physics.Stats{}) {
		t.Errorf("live handles after teardown: %+v", s)
	}
	if w.ConstraintAllocs != w.ConstraintFrees || w.BodyAllocs != w.BodyFrees || w.ShapeAllocs != w.ShapeFrees {
		t.Error("every allocation should be paired with exactly one free")
	}
}

func TestTeardownDeferredWhileLocked(t *testing.T) {
	w := physicstest.New()
	q := physics.NewQueue()
	b := Build(w, externalParams(ChainMotorized, 5), WithQueue(q))

	w.Lock()
	b.Teardown()
	if w.ConstraintFrees != 0 {
		t.Fatal("teardown touched the world while it was locked")
	}
	w.Unlock()

	q.Drain(w)
	if s := w.Stats(); s != (physics.Stats{}) {
		t.Errorf("live handles after drain: %+v", s)
	}
}

func TestBBCoversSegments(t *testing.T) {
	w := physicstest.New()
	p := externalParams(RadialTethered, 8)
	p.Position = r2.Vec{X: 10, Y: 5}
	b := Build(w, p)

	bb := b.BB()
	if !bb.Valid() {
		t.Fatal("creature BB should be valid")
	}
	for _, seg := range b.Segments() {
		pos := w.Position(seg.body)
		if !bb.Contains(pos) {
			t.Errorf("segment at %v outside BB %+v", pos, bb)
		}
	}
	want := p.Radius + p.SegmentRadius
	if math.Abs(bb.Width()-2*want) > 1e-9 {
		t.Errorf("BB width = %f, want %f", bb.Width(), 2*want)
	}
}

func TestOwnsAndOrgans(t *testing.T) {
	w := physicstest.New()
	b := Build(w, externalParams(RadialTethered, 4))
	other := Build(w, externalParams(RadialTethered, 4))

	o := b.Attach(OrganSpec{Offset: r2.Vec{X: 0.3}, Radius: 0.2})
	if !b.Owns(o.Shape()) || !b.Owns(b.Segments()[0].Shape()) {
		t.Error("creature should own its segment and organ shapes")
	}
	if b.Owns(other.Segments()[0].Shape()) {
		t.Error("creature owns another creature's shape")
	}
	if got := w.CountConstraints(physics.Pivot); got != 1 {
		t.Errorf("pivots = %d, want 1", got)
	}
	if got := w.CountConstraints(physics.RotaryLimit); got != 1 {
		t.Errorf("rotary limits = %d, want 1", got)
	}
	if b.Params().Filter.Group == other.Params().Filter.Group {
		t.Error("creatures should get distinct collision groups")
	}
}

func TestParseTopology(t *testing.T) {
	tests := []struct {
		in      string
		want    Topology
		wantErr bool
	}{
		{"protoplasmic", RadialTethered, false},
		{"radial_tethered", RadialTethered, false},
		{"amorphous", ChainMotorized, false},
		{"chain_motorized", ChainMotorized, false},
		{"crystalline", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseTopology(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("ParseTopology(%q) = %v, %v", tc.in, got, err)
		}
	}
}
