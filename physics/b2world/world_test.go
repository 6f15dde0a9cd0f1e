package b2world_test

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ShamylZakariya/Surfacer-sub000/geom"
	"github.com/ShamylZakariya/Surfacer-sub000/physics"
	"github.com/ShamylZakariya/Surfacer-sub000/physics/b2world"
)

func TestBodyFallsAndReleases(t *testing.T) {
	w := b2world.New(b2world.Options{Gravity: r2.Vec{Y: -10}})

	b := w.AddBody(physics.BodyDef{Position: r2.Vec{Y: 10}})
	s := w.AddCircle(b, physics.CircleDef{Radius: 1, Density: 1, Filter: physics.FilterAll})
	if got := w.Stats(); got != (physics.Stats{Bodies: 1, Shapes: 1}) {
		t.Fatalf("stats = %+v", got)
	}
	if m := w.Mass(b); m <= 0 {
		t.Errorf("mass = %f, want > 0", m)
	}

	for i := 0; i < 30; i++ {
		w.Step(1.0 / 60)
	}
	if y := w.Position(b).Y; y >= 10 {
		t.Errorf("body did not fall, y = %f", y)
	}

	found := 0
	w.BBQuery(geom.ForCircle(w.Position(b), 2), physics.FilterAll, func(id physics.ShapeID) {
		if id == s {
			found++
		}
	})
	if found != 1 {
		t.Errorf("BBQuery found shape %d times, want 1", found)
	}

	w.RemoveShape(s)
	w.RemoveBody(b)
	if got := w.Stats(); got != (physics.Stats{}) {
		t.Errorf("stats after removal = %+v", got)
	}
}

func TestRemoveBodyWithShapesPanics(t *testing.T) {
	w := b2world.New(b2world.Options{Gravity: r2.Vec{Y: -10}})
	b := w.AddBody(physics.BodyDef{})
	w.AddCircle(b, physics.CircleDef{Radius: 1, Density: 1})

	defer func() {
		if recover() == nil {
			t.Error("expected panic removing a body with shapes attached")
		}
	}()
	w.RemoveBody(b)
}

func TestSpringRetune(t *testing.T) {
	w := b2world.New(b2world.Options{Gravity: r2.Vec{Y: -10}})
	a := w.AddBody(physics.BodyDef{})
	w.AddCircle(a, physics.CircleDef{Radius: 0.5, Density: 1})
	c := w.AddConstraint(physics.ConstraintDef{Kind: physics.DampedSpring, A: w.StaticBody(), B: a, RestLength: 1, Stiffness: 0})
	w.SetSpring(c, 2, 50, 1)
	w.Step(1.0 / 60)
	w.RemoveConstraint(c)
	if got := w.Stats().Constraints; got != 0 {
		t.Errorf("constraints after removal = %d", got)
	}
}
