// Package physics defines the rigid-body engine the soft-body layer runs on.
//
// The engine is an external collaborator: liquids and creatures only talk to
// it through World, which hands out plain integer handles. Backends live in
// cpworld (Chipmunk2D) and b2world (Box2D); physicstest provides a counting
// double for tests.
package physics

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ShamylZakariya/Surfacer-sub000/geom"
)

// BodyID identifies a rigid body. Zero is never a valid body.
type BodyID uint32

// ShapeID identifies a collision shape attached to a body.
type ShapeID uint32

// ConstraintID identifies a constraint between two bodies.
type ConstraintID uint32

// Filter tags shapes for collision and query filtering.
// Shapes sharing a non-zero Group never collide with each other.
type Filter struct {
	Group      uint32
	Categories uint32
	Mask       uint32
}

// FilterAll matches every shape.
var FilterAll = Filter{Categories: ^uint32(0), Mask: ^uint32(0)}

// Matches reports whether two filters allow an interaction.
func (f Filter) Matches(other Filter) bool {
	if f.Group != 0 && f.Group == other.Group {
		return false
	}
	return f.Categories&other.Mask != 0 && other.Categories&f.Mask != 0
}

// BodyDef describes a body at creation time.
type BodyDef struct {
	Position r2.Vec
	Velocity r2.Vec
	Angle    float64
	Static   bool
}

// CircleDef describes a circular shape. Mass comes from Density and area.
type CircleDef struct {
	Radius     float64
	Offset     r2.Vec
	Density    float64
	Friction   float64
	Elasticity float64
	Filter     Filter
	ContactTag uint32
}

// SegmentDef describes a rounded line segment, used for static ground.
type SegmentDef struct {
	A, B       r2.Vec
	Radius     float64
	Friction   float64
	Elasticity float64
	Filter     Filter
	ContactTag uint32
}

// ConstraintKind enumerates the constraint primitives a backend must provide.
type ConstraintKind uint8

const (
	// DampedSpring pulls two anchors toward RestLength with Stiffness/Damping.
	DampedSpring ConstraintKind = iota
	// Slide keeps anchor separation within [Min, Max].
	Slide
	// RotaryLimit keeps relative angle within [Min, Max].
	RotaryLimit
	// Motor drives relative angular velocity toward Rate.
	Motor
	// FixedAngle locks relative angle at Phase with gear Ratio.
	FixedAngle
	// Pivot pins both bodies together at a world point.
	Pivot
)

func (k ConstraintKind) String() string {
	switch k {
	case DampedSpring:
		return "damped_spring"
	case Slide:
		return "slide"
	case RotaryLimit:
		return "rotary_limit"
	case Motor:
		return "motor"
	case FixedAngle:
		return "fixed_angle"
	case Pivot:
		return "pivot"
	}
	return fmt.Sprintf("ConstraintKind(%d)", k)
}

// ConstraintDef describes a constraint. Only the fields relevant to Kind are
// read. A zero MaxForce means unlimited.
type ConstraintDef struct {
	Kind             ConstraintKind
	A, B             BodyID
	AnchorA, AnchorB r2.Vec
	Min, Max         float64
	RestLength       float64
	Stiffness        float64
	Damping          float64
	Rate             float64
	Phase, Ratio     float64
	Pivot            r2.Vec
	MaxForce         float64
}

// Stats counts live handles in a world.
type Stats struct {
	Bodies      int
	Shapes      int
	Constraints int
}

// World is the rigid-body engine.
//
// Structural mutation (adding or removing anything) must not happen while
// Locked reports true; use a Queue to defer it. Removing a body that still has
// shapes or is referenced by a constraint panics.
type World interface {
	StaticBody() BodyID

	AddBody(def BodyDef) BodyID
	RemoveBody(id BodyID)
	AddCircle(body BodyID, def CircleDef) ShapeID
	AddSegment(body BodyID, def SegmentDef) ShapeID
	RemoveShape(id ShapeID)
	AddConstraint(def ConstraintDef) ConstraintID
	RemoveConstraint(id ConstraintID)

	Position(id BodyID) r2.Vec
	SetPosition(id BodyID, p r2.Vec)
	Velocity(id BodyID) r2.Vec
	SetVelocity(id BodyID, v r2.Vec)
	Angle(id BodyID) float64
	SetAngle(id BodyID, a float64)
	AngularVelocity(id BodyID) float64
	SetAngularVelocity(id BodyID, w float64)
	Mass(id BodyID) float64
	ApplyImpulse(id BodyID, impulse, worldPoint r2.Vec)
	Activate(id BodyID)

	SetCircleRadius(id ShapeID, radius float64)
	ShapeBody(id ShapeID) BodyID
	ShapeBB(id ShapeID) geom.BB

	SetSpring(id ConstraintID, restLength, stiffness, damping float64)
	SetSlideLimits(id ConstraintID, min, max float64)
	SetMotorRate(id ConstraintID, rate float64)

	// BBQuery calls fn for every shape whose bounding box overlaps bb and
	// whose filter matches.
	BBQuery(bb geom.BB, filter Filter, fn func(ShapeID))

	// OnContact registers fn for contacts beginning between shapes tagged
	// tagA and tagB. fn runs while the world is locked; a is always the
	// tagA shape.
	OnContact(tagA, tagB uint32, fn func(a, b ShapeID))

	Locked() bool
	Step(dt float64)
	Stats() Stats
}
