// Package cpworld implements physics.World on github.com/jakecoffman/cp.
package cpworld

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ShamylZakariya/Surfacer-sub000/geom"
	"github.com/ShamylZakariya/Surfacer-sub000/physics"
)

// Options configures a new space.
type Options struct {
	Gravity    r2.Vec
	Iterations int
	Damping    float64
}

// World wraps a cp.Space and hands out integer handles.
type World struct {
	space  *cp.Space
	inStep bool

	nextID      uint32
	static      physics.BodyID
	bodies      map[physics.BodyID]*cp.Body
	shapes      map[physics.ShapeID]*cp.Shape
	constraints map[physics.ConstraintID]*cp.Constraint
	ends        map[physics.ConstraintID][2]physics.BodyID
	refs        map[physics.BodyID]int
}

var _ physics.World = (*World)(nil)

// New creates a space configured by opts.
func New(opts Options) *World {
	space := cp.NewSpace()
	space.SetGravity(vec(opts.Gravity))
	if opts.Iterations > 0 {
		space.Iterations = uint(opts.Iterations)
	}
	if opts.Damping > 0 {
		space.SetDamping(opts.Damping)
	}

	w := &World{
		space:       space,
		bodies:      make(map[physics.BodyID]*cp.Body),
		shapes:      make(map[physics.ShapeID]*cp.Shape),
		constraints: make(map[physics.ConstraintID]*cp.Constraint),
		ends:        make(map[physics.ConstraintID][2]physics.BodyID),
		refs:        make(map[physics.BodyID]int),
	}
	w.static = physics.BodyID(w.id())
	space.StaticBody.UserData = w.static
	w.bodies[w.static] = space.StaticBody
	return w
}

// Space exposes the underlying space.
func (w *World) Space() *cp.Space { return w.space }

func (w *World) id() uint32 {
	w.nextID++
	return w.nextID
}

func vec(v r2.Vec) cp.Vector { return cp.Vector{X: v.X, Y: v.Y} }
func unvec(v cp.Vector) r2.Vec { return r2.Vec{X: v.X, Y: v.Y} }
func bb(b cp.BB) geom.BB { return geom.BB{L: b.L, B: b.B, R: b.R, T: b.T} }
func unbb(b geom.BB) cp.BB { return cp.BB{L: b.L, B: b.B, R: b.R, T: b.T} }
func filter(f physics.Filter) cp.ShapeFilter {
	return cp.ShapeFilter{Group: uint(f.Group), Categories: uint(f.Categories), Mask: uint(f.Mask)}
}

func (w *World) body(id physics.BodyID) *cp.Body {
	b, ok := w.bodies[id]
	if !ok {
		panic(fmt.Sprintf("cpworld: unknown body %d", id))
	}
	return b
}

func (w *World) shape(id physics.ShapeID) *cp.Shape {
	s, ok := w.shapes[id]
	if !ok {
		panic(fmt.Sprintf("cpworld: unknown shape %d", id))
	}
	return s
}

func (w *World) constraint(id physics.ConstraintID) *cp.Constraint {
	c, ok := w.constraints[id]
	if !ok {
		panic(fmt.Sprintf("cpworld: unknown constraint %d", id))
	}
	return c
}

// StaticBody implements physics.World.
func (w *World) StaticBody() physics.BodyID { return w.static }

// AddBody implements physics.World.
func (w *World) AddBody(def physics.BodyDef) physics.BodyID {
	var b *cp.Body
	if def.Static {
		b = cp.NewStaticBody()
	} else {
		b = cp.NewBody(0, 0)
	}
	b.SetPosition(vec(def.Position))
	b.SetVelocityVector(vec(def.Velocity))
	b.SetAngle(def.Angle)

	id := physics.BodyID(w.id())
	b.UserData = id
	w.space.AddBody(b)
	w.bodies[id] = b
	return id
}

// RemoveBody implements physics.World.
func (w *World) RemoveBody(id physics.BodyID) {
	b := w.body(id)
	if n := w.refs[id]; n > 0 {
		panic(fmt.Sprintf("cpworld: body %d removed with %d shapes or constraints attached", id, n))
	}
	w.space.RemoveBody(b)
	delete(w.bodies, id)
	delete(w.refs, id)
}

func (w *World) addShape(body physics.BodyID, s *cp.Shape, friction, elasticity float64, f physics.Filter, tag uint32) physics.ShapeID {
	s.SetFriction(friction)
	s.SetElasticity(elasticity)
	s.SetFilter(filter(f))
	s.SetCollisionType(cp.CollisionType(tag))

	id := physics.ShapeID(w.id())
	s.UserData = id
	w.space.AddShape(s)
	w.shapes[id] = s
	w.refs[body]++
	return id
}

// AddCircle implements physics.World.
func (w *World) AddCircle(body physics.BodyID, def physics.CircleDef) physics.ShapeID {
	s := cp.NewCircle(w.body(body), def.Radius, vec(def.Offset))
	if def.Density > 0 {
		s.SetDensity(def.Density)
	}
	return w.addShape(body, s, def.Friction, def.Elasticity, def.Filter, def.ContactTag)
}

// AddSegment implements physics.World.
func (w *World) AddSegment(body physics.BodyID, def physics.SegmentDef) physics.ShapeID {
	s := cp.NewSegment(w.body(body), vec(def.A), vec(def.B), def.Radius)
	return w.addShape(body, s, def.Friction, def.Elasticity, def.Filter, def.ContactTag)
}

// RemoveShape implements physics.World.
func (w *World) RemoveShape(id physics.ShapeID) {
	s := w.shape(id)
	w.refs[s.Body().UserData.(physics.BodyID)]--
	w.space.RemoveShape(s)
	delete(w.shapes, id)
}

// AddConstraint implements physics.World.
func (w *World) AddConstraint(def physics.ConstraintDef) physics.ConstraintID {
	a, b := w.body(def.A), w.body(def.B)

	var c *cp.Constraint
	switch def.Kind {
	case physics.DampedSpring:
		c = cp.NewDampedSpring(a, b, vec(def.AnchorA), vec(def.AnchorB), def.RestLength, def.Stiffness, def.Damping)
	case physics.Slide:
		c = cp.NewSlideJoint(a, b, vec(def.AnchorA), vec(def.AnchorB), def.Min, def.Max)
	case physics.RotaryLimit:
		c = cp.NewRotaryLimitJoint(a, b, def.Min, def.Max)
	case physics.Motor:
		c = cp.NewSimpleMotor(a, b, def.Rate)
	case physics.FixedAngle:
		ratio := def.Ratio
		if ratio == 0 {
			ratio = 1
		}
		c = cp.NewGearJoint(a, b, def.Phase, ratio)
	case physics.Pivot:
		c = cp.NewPivotJoint(a, b, vec(def.Pivot))
	default:
		panic(fmt.Sprintf("cpworld: unsupported constraint %s", def.Kind))
	}
	if def.MaxForce > 0 {
		c.SetMaxForce(def.MaxForce)
	}

	id := physics.ConstraintID(w.id())
	w.space.AddConstraint(c)
	w.constraints[id] = c
	w.ends[id] = [2]physics.BodyID{def.A, def.B}
	w.refs[def.A]++
	w.refs[def.B]++
	return id
}

// RemoveConstraint implements physics.World.
func (w *World) RemoveConstraint(id physics.ConstraintID) {
	c := w.constraint(id)
	ends := w.ends[id]
	w.refs[ends[0]]--
	w.refs[ends[1]]--
	w.space.RemoveConstraint(c)
	delete(w.constraints, id)
	delete(w.ends, id)
}

// Position implements physics.World.
func (w *World) Position(id physics.BodyID) r2.Vec { return unvec(w.body(id).Position()) }

// SetPosition implements physics.World.
func (w *World) SetPosition(id physics.BodyID, p r2.Vec) { w.body(id).SetPosition(vec(p)) }

// Velocity implements physics.World.
func (w *World) Velocity(id physics.BodyID) r2.Vec { return unvec(w.body(id).Velocity()) }

// SetVelocity implements physics.World.
func (w *World) SetVelocity(id physics.BodyID, v r2.Vec) { w.body(id).SetVelocityVector(vec(v)) }

// Angle implements physics.World.
func (w *World) Angle(id physics.BodyID) float64 { return w.body(id).Angle() }

// SetAngle implements physics.World.
func (w *World) SetAngle(id physics.BodyID, a float64) { w.body(id).SetAngle(a) }

// AngularVelocity implements physics.World.
func (w *World) AngularVelocity(id physics.BodyID) float64 { return w.body(id).AngularVelocity() }

// SetAngularVelocity implements physics.World.
func (w *World) SetAngularVelocity(id physics.BodyID, v float64) {
	w.body(id).SetAngularVelocity(v)
}

// Mass implements physics.World.
func (w *World) Mass(id physics.BodyID) float64 { return w.body(id).Mass() }

// ApplyImpulse implements physics.World.
func (w *World) ApplyImpulse(id physics.BodyID, impulse, point r2.Vec) {
	w.body(id).ApplyImpulseAtWorldPoint(vec(impulse), vec(point))
}

// Activate implements physics.World.
func (w *World) Activate(id physics.BodyID) { w.body(id).Activate() }

// SetCircleRadius implements physics.World.
func (w *World) SetCircleRadius(id physics.ShapeID, radius float64) {
	c, ok := w.shape(id).Class.(*cp.Circle)
	if !ok {
		panic(fmt.Sprintf("cpworld: shape %d is not a circle", id))
	}
	c.SetRadius(radius)
}

// ShapeBody implements physics.World.
func (w *World) ShapeBody(id physics.ShapeID) physics.BodyID {
	return w.shape(id).Body().UserData.(physics.BodyID)
}

// ShapeBB implements physics.World.
func (w *World) ShapeBB(id physics.ShapeID) geom.BB { return bb(w.shape(id).BB()) }

// SetSpring implements physics.World.
func (w *World) SetSpring(id physics.ConstraintID, restLength, stiffness, damping float64) {
	s, ok := w.constraint(id).Class.(*cp.DampedSpring)
	if !ok {
		panic(fmt.Sprintf("cpworld: constraint %d is not a spring", id))
	}
	s.RestLength, s.Stiffness, s.Damping = restLength, stiffness, damping
}

// SetSlideLimits implements physics.World.
func (w *World) SetSlideLimits(id physics.ConstraintID, min, max float64) {
	s, ok := w.constraint(id).Class.(*cp.SlideJoint)
	if !ok {
		panic(fmt.Sprintf("cpworld: constraint %d is not a slide joint", id))
	}
	s.Min, s.Max = min, max
}

// SetMotorRate implements physics.World.
func (w *World) SetMotorRate(id physics.ConstraintID, rate float64) {
	m, ok := w.constraint(id).Class.(*cp.SimpleMotor)
	if !ok {
		panic(fmt.Sprintf("cpworld: constraint %d is not a motor", id))
	}
	m.Rate = rate
}

// BBQuery implements physics.World.
func (w *World) BBQuery(box geom.BB, f physics.Filter, fn func(physics.ShapeID)) {
	w.space.BBQuery(unbb(box), filter(f), func(s *cp.Shape, _ interface{}) {
		if id, ok := s.UserData.(physics.ShapeID); ok {
			fn(id)
		}
	}, nil)
}

// OnContact implements physics.World.
func (w *World) OnContact(tagA, tagB uint32, fn func(a, b physics.ShapeID)) {
	h := w.space.NewCollisionHandler(cp.CollisionType(tagA), cp.CollisionType(tagB))
	h.BeginFunc = func(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
		sa, sb := arb.Shapes()
		a, okA := sa.UserData.(physics.ShapeID)
		b, okB := sb.UserData.(physics.ShapeID)
		if okA && okB {
			fn(a, b)
		}
		return true
	}
}

// Locked implements physics.World.
func (w *World) Locked() bool { return w.inStep }

// Step implements physics.World.
func (w *World) Step(dt float64) {
	w.inStep = true
	defer func() { w.inStep = false }()
	w.space.Step(dt)
}

// Stats implements physics.World. The space's static body is not counted.
func (w *World) Stats() physics.Stats {
	return physics.Stats{
		Bodies:      len(w.bodies) - 1,
		Shapes:      len(w.shapes),
		Constraints: len(w.constraints),
	}
}
