// Package physicstest provides a counting, deterministic physics.World for
// tests. It integrates velocities but does not solve constraints or contacts.
package physicstest

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ShamylZakariya/Surfacer-sub000/geom"
	"github.com/ShamylZakariya/Surfacer-sub000/physics"
)

// Impulse records one ApplyImpulse call.
type Impulse struct {
	Body    physics.BodyID
	Impulse r2.Vec
	Point   r2.Vec
}

type body struct {
	def       physics.BodyDef
	pos, vel  r2.Vec
	angle     float64
	angVel    float64
	shapes    map[physics.ShapeID]struct{}
	activated int
}

type shape struct {
	body    physics.BodyID
	segment bool
	circle  physics.CircleDef
	seg     physics.SegmentDef
}

type contactHandler struct {
	tagA, tagB uint32
	fn         func(a, b physics.ShapeID)
}

// World is the counting double. The zero value is not usable; call New.
type World struct {
	Gravity r2.Vec

	nextID      uint32
	static      physics.BodyID
	bodies      map[physics.BodyID]*body
	shapes      map[physics.ShapeID]*shape
	constraints map[physics.ConstraintID]*physics.ConstraintDef
	handlers    []contactHandler
	locked      bool

	// Counters, exported for assertions.
	BodyAllocs, BodyFrees             int
	ShapeAllocs, ShapeFrees           int
	ConstraintAllocs, ConstraintFrees int
	Queries                           int
	Steps                             int
	Events                            []string
	Impulses                          []Impulse
}

var _ physics.World = (*World)(nil)

// New returns an empty world with a static body.
func New() *World {
	w := &World{
		bodies:      make(map[physics.BodyID]*body),
		shapes:      make(map[physics.ShapeID]*shape),
		constraints: make(map[physics.ConstraintID]*physics.ConstraintDef),
	}
	w.nextID++
	w.static = physics.BodyID(w.nextID)
	w.bodies[w.static] = &body{def: physics.BodyDef{Static: true}, shapes: map[physics.ShapeID]struct{}{}}
	return w
}

func (w *World) id() uint32 {
	w.nextID++
	return w.nextID
}

func (w *World) mustUnlocked(op string) {
	if w.locked {
		panic("physicstest: " + op + " while world is locked")
	}
}

func (w *World) body(id physics.BodyID) *body {
	b, ok := w.bodies[id]
	if !ok {
		panic(fmt.Sprintf("physicstest: unknown body %d", id))
	}
	return b
}

func (w *World) log(format string, args ...any) {
	w.Events = append(w.Events, fmt.Sprintf(format, args...))
}

// StaticBody implements physics.World.
func (w *World) StaticBody() physics.BodyID { return w.static }

// AddBody implements physics.World.
func (w *World) AddBody(def physics.BodyDef) physics.BodyID {
	w.mustUnlocked("AddBody")
	id := physics.BodyID(w.id())
	w.bodies[id] = &body{def: def, pos: def.Position, vel: def.Velocity, angle: def.Angle, shapes: map[physics.ShapeID]struct{}{}}
	w.BodyAllocs++
	w.log("add body %d", id)
	return id
}

// RemoveBody implements physics.World.
func (w *World) RemoveBody(id physics.BodyID) {
	w.mustUnlocked("RemoveBody")
	b := w.body(id)
	if len(b.shapes) > 0 {
		panic(fmt.Sprintf("physicstest: body %d freed with %d shapes attached", id, len(b.shapes)))
	}
	for cid, c := range w.constraints {
		if c.A == id || c.B == id {
			panic(fmt.Sprintf("physicstest: body %d freed while constraint %d references it", id, cid))
		}
	}
	delete(w.bodies, id)
	w.BodyFrees++
	w.log("free body %d", id)
}

// AddCircle implements physics.World.
func (w *World) AddCircle(bid physics.BodyID, def physics.CircleDef) physics.ShapeID {
	w.mustUnlocked("AddCircle")
	b := w.body(bid)
	id := physics.ShapeID(w.id())
	w.shapes[id] = &shape{body: bid, circle: def}
	b.shapes[id] = struct{}{}
	w.ShapeAllocs++
	w.log("add shape %d", id)
	return id
}

// AddSegment implements physics.World.
func (w *World) AddSegment(bid physics.BodyID, def physics.SegmentDef) physics.ShapeID {
	w.mustUnlocked("AddSegment")
	b := w.body(bid)
	id := physics.ShapeID(w.id())
	w.shapes[id] = &shape{body: bid, segment: true, seg: def}
	b.shapes[id] = struct{}{}
	w.ShapeAllocs++
	w.log("add shape %d", id)
	return id
}

// RemoveShape implements physics.World.
func (w *World) RemoveShape(id physics.ShapeID) {
	w.mustUnlocked("RemoveShape")
	s, ok := w.shapes[id]
	if !ok {
		panic(fmt.Sprintf("physicstest: unknown shape %d", id))
	}
	delete(w.body(s.body).shapes, id)
	delete(w.shapes, id)
	w.ShapeFrees++
	w.log("free shape %d", id)
}

// AddConstraint implements physics.World.
func (w *World) AddConstraint(def physics.ConstraintDef) physics.ConstraintID {
	w.mustUnlocked("AddConstraint")
	w.body(def.A)
	w.body(def.B)
	id := physics.ConstraintID(w.id())
	d := def
	w.constraints[id] = &d
	w.ConstraintAllocs++
	w.log("add constraint %d", id)
	return id
}

// RemoveConstraint implements physics.World.
func (w *World) RemoveConstraint(id physics.ConstraintID) {
	w.mustUnlocked("RemoveConstraint")
	if _, ok := w.constraints[id]; !ok {
		panic(fmt.Sprintf("physicstest: unknown constraint %d", id))
	}
	delete(w.constraints, id)
	w.ConstraintFrees++
	w.log("free constraint %d", id)
}

// Position implements physics.World.
func (w *World) Position(id physics.BodyID) r2.Vec { return w.body(id).pos }

// SetPosition implements physics.World.
func (w *World) SetPosition(id physics.BodyID, p r2.Vec) { w.body(id).pos = p }

// Velocity implements physics.World.
func (w *World) Velocity(id physics.BodyID) r2.Vec { return w.body(id).vel }

// SetVelocity implements physics.World.
func (w *World) SetVelocity(id physics.BodyID, v r2.Vec) { w.body(id).vel = v }

// Angle implements physics.World.
func (w *World) Angle(id physics.BodyID) float64 { return w.body(id).angle }

// SetAngle implements physics.World.
func (w *World) SetAngle(id physics.BodyID, a float64) { w.body(id).angle = a }

// AngularVelocity implements physics.World.
func (w *World) AngularVelocity(id physics.BodyID) float64 { return w.body(id).angVel }

// SetAngularVelocity implements physics.World.
func (w *World) SetAngularVelocity(id physics.BodyID, v float64) { w.body(id).angVel = v }

// Mass implements physics.World. Mass is density times area of attached circles.
func (w *World) Mass(id physics.BodyID) float64 {
	b := w.body(id)
	if b.def.Static {
		return math.Inf(1)
	}
	m := 0.0
	for sid := range b.shapes {
		s := w.shapes[sid]
		if !s.segment {
			m += s.circle.Density * math.Pi * s.circle.Radius * s.circle.Radius
		}
	}
	return m
}

// ApplyImpulse implements physics.World.
func (w *World) ApplyImpulse(id physics.BodyID, impulse, point r2.Vec) {
	b := w.body(id)
	w.Impulses = append(w.Impulses, Impulse{Body: id, Impulse: impulse, Point: point})
	if m := w.Mass(id); m > 0 && !math.IsInf(m, 1) {
		b.vel = r2.Add(b.vel, r2.Scale(1/m, impulse))
	}
}

// Activate implements physics.World.
func (w *World) Activate(id physics.BodyID) { w.body(id).activated++ }

// Activations returns how many times Activate was called on a body.
func (w *World) Activations(id physics.BodyID) int { return w.body(id).activated }

// SetCircleRadius implements physics.World.
func (w *World) SetCircleRadius(id physics.ShapeID, radius float64) {
	s, ok := w.shapes[id]
	if !ok || s.segment {
		panic(fmt.Sprintf("physicstest: shape %d is not a circle", id))
	}
	s.circle.Radius = radius
}

// CircleRadius returns the current radius of a circle shape.
func (w *World) CircleRadius(id physics.ShapeID) float64 {
	return w.shapes[id].circle.Radius
}

// ShapeBody implements physics.World.
func (w *World) ShapeBody(id physics.ShapeID) physics.BodyID { return w.shapes[id].body }

// ShapeBB implements physics.World.
func (w *World) ShapeBB(id physics.ShapeID) geom.BB {
	s := w.shapes[id]
	p := w.body(s.body).pos
	if s.segment {
		a, b := r2.Add(p, s.seg.A), r2.Add(p, s.seg.B)
		return geom.ForCircle(a, s.seg.Radius).Expand(geom.ForCircle(b, s.seg.Radius))
	}
	return geom.ForCircle(r2.Add(p, s.circle.Offset), s.circle.Radius)
}

func (w *World) filterOf(s *shape) physics.Filter {
	if s.segment {
		return s.seg.Filter
	}
	return s.circle.Filter
}

func (w *World) tagOf(s *shape) uint32 {
	if s.segment {
		return s.seg.ContactTag
	}
	return s.circle.ContactTag
}

// SetSpring implements physics.World.
func (w *World) SetSpring(id physics.ConstraintID, restLength, stiffness, damping float64) {
	c := w.Constraint(id)
	c.RestLength, c.Stiffness, c.Damping = restLength, stiffness, damping
}

// SetSlideLimits implements physics.World.
func (w *World) SetSlideLimits(id physics.ConstraintID, min, max float64) {
	c := w.Constraint(id)
	c.Min, c.Max = min, max
}

// SetMotorRate implements physics.World.
func (w *World) SetMotorRate(id physics.ConstraintID, rate float64) {
	w.Constraint(id).Rate = rate
}

// Constraint returns the live definition of a constraint.
func (w *World) Constraint(id physics.ConstraintID) *physics.ConstraintDef {
	c, ok := w.constraints[id]
	if !ok {
		panic(fmt.Sprintf("physicstest: unknown constraint %d", id))
	}
	return c
}

// CountConstraints returns the number of live constraints of a kind.
func (w *World) CountConstraints(kind physics.ConstraintKind) int {
	n := 0
	for _, c := range w.constraints {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// BBQuery implements physics.World by scanning every shape in id order.
func (w *World) BBQuery(bb geom.BB, filter physics.Filter, fn func(physics.ShapeID)) {
	w.Queries++
	ids := make([]physics.ShapeID, 0, len(w.shapes))
	for id := range w.shapes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		s := w.shapes[id]
		if !filter.Matches(w.filterOf(s)) {
			continue
		}
		if bb.Intersects(w.ShapeBB(id)) {
			fn(id)
		}
	}
}

// OnContact implements physics.World.
func (w *World) OnContact(tagA, tagB uint32, fn func(a, b physics.ShapeID)) {
	w.handlers = append(w.handlers, contactHandler{tagA: tagA, tagB: tagB, fn: fn})
}

// Touch reports a contact between two shapes to matching handlers, with the
// world locked as it would be mid-solve.
func (w *World) Touch(a, b physics.ShapeID) {
	sa, sb := w.shapes[a], w.shapes[b]
	ta, tb := w.tagOf(sa), w.tagOf(sb)
	w.locked = true
	defer func() { w.locked = false }()
	for _, h := range w.handlers {
		switch {
		case h.tagA == ta && h.tagB == tb:
			h.fn(a, b)
		case h.tagA == tb && h.tagB == ta:
			h.fn(b, a)
		}
	}
}

// Lock marks the world as mid-solve.
func (w *World) Lock() { w.locked = true }

// Unlock clears the mid-solve mark.
func (w *World) Unlock() { w.locked = false }

// Locked implements physics.World.
func (w *World) Locked() bool { return w.locked }

// Step implements physics.World with explicit Euler integration.
func (w *World) Step(dt float64) {
	w.locked = true
	for _, b := range w.bodies {
		if b.def.Static {
			continue
		}
		b.vel = r2.Add(b.vel, r2.Scale(dt, w.Gravity))
		b.pos = r2.Add(b.pos, r2.Scale(dt, b.vel))
		b.angle += b.angVel * dt
	}
	w.locked = false
	w.Steps++
}

// Stats implements physics.World. The static body is not counted.
func (w *World) Stats() physics.Stats {
	return physics.Stats{
		Bodies:      len(w.bodies) - 1,
		Shapes:      len(w.shapes),
		Constraints: len(w.constraints),
	}
}
