// Package b2world implements physics.World on github.com/ByteArena/box2d.
//
// Box2D has no damped spring, rotary limit or velocity motor joint, so those
// kinds are solved here as forces and impulses applied before every step.
// Slide joints map to rope joints (the minimum is ignored), pivots to
// revolute joints and fixed angles to motor joints with no linear force.
package b2world

import (
	"fmt"
	"math"

	"github.com/ByteArena/box2d"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ShamylZakariya/Surfacer-sub000/geom"
	"github.com/ShamylZakariya/Surfacer-sub000/physics"
)

// Options configures a new world.
type Options struct {
	Gravity            r2.Vec
	VelocityIterations int
	PositionIterations int
	// Damping is the fraction of velocity kept per second, as in Chipmunk.
	Damping float64
}

type fixture struct {
	fix    *box2d.B2Fixture
	body   physics.BodyID
	filter physics.Filter
	tag    uint32
}

type joint struct {
	def  physics.ConstraintDef
	impl box2d.B2JointInterface // nil for kinds solved in preStep
}

type handler struct {
	tagA, tagB uint32
	fn         func(a, b physics.ShapeID)
}

// World wraps a box2d.B2World.
type World struct {
	world   *box2d.B2World
	opts    Options
	inStep  bool
	damping float64

	nextID      uint32
	static      physics.BodyID
	bodies      map[physics.BodyID]*box2d.B2Body
	shapes      map[physics.ShapeID]*fixture
	constraints map[physics.ConstraintID]*joint
	order       []physics.ConstraintID
	refs        map[physics.BodyID]int
	handlers    []handler
}

var _ physics.World = (*World)(nil)

// New creates a world configured by opts.
func New(opts Options) *World {
	if opts.VelocityIterations <= 0 {
		opts.VelocityIterations = 8
	}
	if opts.PositionIterations <= 0 {
		opts.PositionIterations = 3
	}
	bw := box2d.MakeB2World(vec(opts.Gravity))
	w := &World{
		world:       &bw,
		opts:        opts,
		bodies:      make(map[physics.BodyID]*box2d.B2Body),
		shapes:      make(map[physics.ShapeID]*fixture),
		constraints: make(map[physics.ConstraintID]*joint),
		refs:        make(map[physics.BodyID]int),
	}
	if opts.Damping > 0 && opts.Damping < 1 {
		w.damping = -math.Log(opts.Damping)
	}
	w.world.SetContactListener(&listener{w: w})
	w.static = w.AddBody(physics.BodyDef{Static: true})
	return w
}

func (w *World) id() uint32 {
	w.nextID++
	return w.nextID
}

func vec(v r2.Vec) box2d.B2Vec2 { return box2d.MakeB2Vec2(v.X, v.Y) }
func unvec(v box2d.B2Vec2) r2.Vec { return r2.Vec{X: v.X, Y: v.Y} }

func filter(f physics.Filter) box2d.B2Filter {
	out := box2d.MakeB2Filter()
	out.CategoryBits = uint16(f.Categories)
	out.MaskBits = uint16(f.Mask)
	if f.Group != 0 {
		out.GroupIndex = -int16(f.Group & 0x7fff)
	}
	return out
}

func (w *World) body(id physics.BodyID) *box2d.B2Body {
	b, ok := w.bodies[id]
	if !ok {
		panic(fmt.Sprintf("b2world: unknown body %d", id))
	}
	return b
}

func (w *World) shape(id physics.ShapeID) *fixture {
	s, ok := w.shapes[id]
	if !ok {
		panic(fmt.Sprintf("b2world: unknown shape %d", id))
	}
	return s
}

func (w *World) constraint(id physics.ConstraintID) *joint {
	c, ok := w.constraints[id]
	if !ok {
		panic(fmt.Sprintf("b2world: unknown constraint %d", id))
	}
	return c
}

// StaticBody implements physics.World.
func (w *World) StaticBody() physics.BodyID { return w.static }

// AddBody implements physics.World.
func (w *World) AddBody(def physics.BodyDef) physics.BodyID {
	bd := box2d.MakeB2BodyDef()
	if def.Static {
		bd.Type = box2d.B2BodyType.B2_staticBody
	} else {
		bd.Type = box2d.B2BodyType.B2_dynamicBody
		bd.LinearDamping = w.damping
		bd.AngularDamping = w.damping
	}
	bd.Position = vec(def.Position)
	bd.LinearVelocity = vec(def.Velocity)
	bd.Angle = def.Angle

	id := physics.BodyID(w.id())
	b := w.world.CreateBody(&bd)
	b.SetUserData(id)
	w.bodies[id] = b
	return id
}

// RemoveBody implements physics.World.
func (w *World) RemoveBody(id physics.BodyID) {
	b := w.body(id)
	if n := w.refs[id]; n > 0 {
		panic(fmt.Sprintf("b2world: body %d removed with %d shapes or constraints attached", id, n))
	}
	w.world.DestroyBody(b)
	delete(w.bodies, id)
	delete(w.refs, id)
}

func (w *World) addFixture(body physics.BodyID, fd *box2d.B2FixtureDef, f physics.Filter, tag uint32) physics.ShapeID {
	id := physics.ShapeID(w.id())
	fd.Filter = filter(f)
	fd.UserData = id
	b := w.body(body)
	fix := b.CreateFixtureFromDef(fd)
	w.shapes[id] = &fixture{fix: fix, body: body, filter: f, tag: tag}
	w.refs[body]++
	return id
}

// AddCircle implements physics.World.
func (w *World) AddCircle(body physics.BodyID, def physics.CircleDef) physics.ShapeID {
	shape := box2d.MakeB2CircleShape()
	shape.M_radius = def.Radius
	shape.M_p = vec(def.Offset)

	fd := box2d.MakeB2FixtureDef()
	fd.Shape = &shape
	fd.Density = def.Density
	fd.Friction = def.Friction
	fd.Restitution = def.Elasticity
	return w.addFixture(body, &fd, def.Filter, def.ContactTag)
}

// AddSegment implements physics.World. Box2D edges have no thickness, so
// def.Radius is ignored.
func (w *World) AddSegment(body physics.BodyID, def physics.SegmentDef) physics.ShapeID {
	shape := box2d.MakeB2EdgeShape()
	shape.Set(vec(def.A), vec(def.B))

	fd := box2d.MakeB2FixtureDef()
	fd.Shape = &shape
	fd.Friction = def.Friction
	fd.Restitution = def.Elasticity
	return w.addFixture(body, &fd, def.Filter, def.ContactTag)
}

// RemoveShape implements physics.World.
func (w *World) RemoveShape(id physics.ShapeID) {
	s := w.shape(id)
	w.body(s.body).DestroyFixture(s.fix)
	w.refs[s.body]--
	delete(w.shapes, id)
}

// AddConstraint implements physics.World.
func (w *World) AddConstraint(def physics.ConstraintDef) physics.ConstraintID {
	a, b := w.body(def.A), w.body(def.B)

	j := &joint{def: def}
	switch def.Kind {
	case physics.Slide:
		jd := box2d.MakeB2RopeJointDef()
		jd.BodyA, jd.BodyB = a, b
		jd.LocalAnchorA = vec(def.AnchorA)
		jd.LocalAnchorB = vec(def.AnchorB)
		jd.MaxLength = math.Max(def.Max, 2*box2d.B2_linearSlop)
		j.impl = w.world.CreateJoint(&jd)
	case physics.Pivot:
		jd := box2d.MakeB2RevoluteJointDef()
		jd.Initialize(a, b, vec(def.Pivot))
		j.impl = w.world.CreateJoint(&jd)
	case physics.FixedAngle:
		jd := box2d.MakeB2MotorJointDef()
		jd.Initialize(a, b)
		jd.AngularOffset = def.Phase
		jd.MaxForce = 0
		jd.MaxTorque = math.MaxFloat32
		if def.MaxForce > 0 {
			jd.MaxTorque = def.MaxForce
		}
		j.impl = w.world.CreateJoint(&jd)
	case physics.DampedSpring, physics.RotaryLimit, physics.Motor:
	default:
		panic(fmt.Sprintf("b2world: unsupported constraint %s", def.Kind))
	}

	id := physics.ConstraintID(w.id())
	w.constraints[id] = j
	w.order = append(w.order, id)
	w.refs[def.A]++
	w.refs[def.B]++
	return id
}

// RemoveConstraint implements physics.World.
func (w *World) RemoveConstraint(id physics.ConstraintID) {
	j := w.constraint(id)
	if j.impl != nil {
		w.world.DestroyJoint(j.impl)
	}
	w.refs[j.def.A]--
	w.refs[j.def.B]--
	delete(w.constraints, id)
	for i, c := range w.order {
		if c == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

// Position implements physics.World.
func (w *World) Position(id physics.BodyID) r2.Vec { return unvec(w.body(id).GetPosition()) }

// SetPosition implements physics.World.
func (w *World) SetPosition(id physics.BodyID, p r2.Vec) {
	b := w.body(id)
	b.SetTransform(vec(p), b.GetAngle())
}

// Velocity implements physics.World.
func (w *World) Velocity(id physics.BodyID) r2.Vec {
	return unvec(w.body(id).GetLinearVelocity())
}

// SetVelocity implements physics.World.
func (w *World) SetVelocity(id physics.BodyID, v r2.Vec) { w.body(id).SetLinearVelocity(vec(v)) }

// Angle implements physics.World.
func (w *World) Angle(id physics.BodyID) float64 { return w.body(id).GetAngle() }

// SetAngle implements physics.World.
func (w *World) SetAngle(id physics.BodyID, a float64) {
	b := w.body(id)
	b.SetTransform(b.GetPosition(), a)
}

// AngularVelocity implements physics.World.
func (w *World) AngularVelocity(id physics.BodyID) float64 {
	return w.body(id).GetAngularVelocity()
}

// SetAngularVelocity implements physics.World.
func (w *World) SetAngularVelocity(id physics.BodyID, v float64) {
	w.body(id).SetAngularVelocity(v)
}

// Mass implements physics.World.
func (w *World) Mass(id physics.BodyID) float64 { return w.body(id).GetMass() }

// ApplyImpulse implements physics.World.
func (w *World) ApplyImpulse(id physics.BodyID, impulse, point r2.Vec) {
	w.body(id).ApplyLinearImpulse(vec(impulse), vec(point), true)
}

// Activate implements physics.World.
func (w *World) Activate(id physics.BodyID) { w.body(id).SetAwake(true) }

// SetCircleRadius implements physics.World.
func (w *World) SetCircleRadius(id physics.ShapeID, radius float64) {
	s := w.shape(id)
	c, ok := s.fix.GetShape().(*box2d.B2CircleShape)
	if !ok {
		panic(fmt.Sprintf("b2world: shape %d is not a circle", id))
	}
	c.M_radius = radius
	w.body(s.body).ResetMassData()
}

// ShapeBody implements physics.World.
func (w *World) ShapeBody(id physics.ShapeID) physics.BodyID { return w.shape(id).body }

// ShapeBB implements physics.World.
func (w *World) ShapeBB(id physics.ShapeID) geom.BB {
	box := w.shape(id).fix.GetAABB(0)
	return geom.BB{L: box.LowerBound.X, B: box.LowerBound.Y, R: box.UpperBound.X, T: box.UpperBound.Y}
}

// SetSpring implements physics.World.
func (w *World) SetSpring(id physics.ConstraintID, restLength, stiffness, damping float64) {
	j := w.constraint(id)
	if j.def.Kind != physics.DampedSpring {
		panic(fmt.Sprintf("b2world: constraint %d is not a spring", id))
	}
	j.def.RestLength, j.def.Stiffness, j.def.Damping = restLength, stiffness, damping
}

// SetSlideLimits implements physics.World.
func (w *World) SetSlideLimits(id physics.ConstraintID, min, max float64) {
	j := w.constraint(id)
	rope, ok := j.impl.(*box2d.B2RopeJoint)
	if !ok {
		panic(fmt.Sprintf("b2world: constraint %d is not a slide joint", id))
	}
	j.def.Min, j.def.Max = min, max
	rope.SetMaxLength(math.Max(max, 2*box2d.B2_linearSlop))
}

// SetMotorRate implements physics.World.
func (w *World) SetMotorRate(id physics.ConstraintID, rate float64) {
	j := w.constraint(id)
	if j.def.Kind != physics.Motor {
		panic(fmt.Sprintf("b2world: constraint %d is not a motor", id))
	}
	j.def.Rate = rate
}

// BBQuery implements physics.World.
func (w *World) BBQuery(bb geom.BB, f physics.Filter, fn func(physics.ShapeID)) {
	aabb := box2d.MakeB2AABB()
	aabb.LowerBound = box2d.MakeB2Vec2(bb.L, bb.B)
	aabb.UpperBound = box2d.MakeB2Vec2(bb.R, bb.T)
	w.world.QueryAABB(func(fix *box2d.B2Fixture) bool {
		id, ok := fix.GetUserData().(physics.ShapeID)
		if !ok {
			return true
		}
		if s, live := w.shapes[id]; live && f.Matches(s.filter) {
			fn(id)
		}
		return true
	}, aabb)
}

// OnContact implements physics.World.
func (w *World) OnContact(tagA, tagB uint32, fn func(a, b physics.ShapeID)) {
	w.handlers = append(w.handlers, handler{tagA: tagA, tagB: tagB, fn: fn})
}

// Locked implements physics.World.
func (w *World) Locked() bool { return w.inStep || w.world.IsLocked() }

// Step implements physics.World.
func (w *World) Step(dt float64) {
	w.preStep(dt)
	w.inStep = true
	defer func() { w.inStep = false }()
	w.world.Step(dt, w.opts.VelocityIterations, w.opts.PositionIterations)
}

// preStep applies the constraint kinds Box2D lacks, in creation order.
func (w *World) preStep(dt float64) {
	for _, id := range w.order {
		j := w.constraints[id]
		a, b := w.bodies[j.def.A], w.bodies[j.def.B]
		switch j.def.Kind {
		case physics.DampedSpring:
			applySpring(a, b, j.def)
		case physics.Motor:
			applyMotor(a, b, j.def, dt)
		case physics.RotaryLimit:
			applyRotaryLimit(a, b, j.def, dt)
		}
	}
}

func applySpring(a, b *box2d.B2Body, def physics.ConstraintDef) {
	pa := a.GetWorldPoint(vec(def.AnchorA))
	pb := b.GetWorldPoint(vec(def.AnchorB))
	delta := r2.Sub(unvec(pb), unvec(pa))
	n, dist := geom.SafeUnit(delta)
	if dist == 0 {
		return
	}
	va := unvec(a.GetLinearVelocityFromWorldPoint(pa))
	vb := unvec(b.GetLinearVelocityFromWorldPoint(pb))
	relVel := r2.Dot(r2.Sub(vb, va), n)

	mag := def.Stiffness*(def.RestLength-dist) - def.Damping*relVel
	force := vec(r2.Scale(mag, n))
	b.ApplyForce(force, pb, true)
	a.ApplyForce(box2d.MakeB2Vec2(-force.X, -force.Y), pa, true)
}

func inertia(b *box2d.B2Body) float64 {
	if b.GetType() != box2d.B2BodyType.B2_dynamicBody {
		return math.Inf(1)
	}
	return b.GetInertia()
}

// applyRelativeSpin drives wB - wA toward target with an angular impulse,
// bounded by maxTorque*dt when maxTorque is positive.
func applyRelativeSpin(a, b *box2d.B2Body, target, maxTorque, dt float64) {
	ia, ib := inertia(a), inertia(b)
	k := 0.0
	if !math.IsInf(ia, 1) && ia > 0 {
		k += 1 / ia
	}
	if !math.IsInf(ib, 1) && ib > 0 {
		k += 1 / ib
	}
	if k == 0 {
		return
	}
	impulse := (target - (b.GetAngularVelocity() - a.GetAngularVelocity())) / k
	if maxTorque > 0 {
		impulse = geom.Clamp(impulse, -maxTorque*dt, maxTorque*dt)
	}
	b.ApplyAngularImpulse(impulse, true)
	a.ApplyAngularImpulse(-impulse, true)
}

// applyMotor matches Chipmunk's simple motor, which holds wB - wA at -rate.
func applyMotor(a, b *box2d.B2Body, def physics.ConstraintDef, dt float64) {
	applyRelativeSpin(a, b, -def.Rate, def.MaxForce, dt)
}

func applyRotaryLimit(a, b *box2d.B2Body, def physics.ConstraintDef, dt float64) {
	rel := b.GetAngle() - a.GetAngle()
	relVel := b.GetAngularVelocity() - a.GetAngularVelocity()
	switch {
	case rel < def.Min && relVel < 0:
		applyRelativeSpin(a, b, (def.Min-rel)/dt, def.MaxForce, dt)
	case rel > def.Max && relVel > 0:
		applyRelativeSpin(a, b, (def.Max-rel)/dt, def.MaxForce, dt)
	}
}

// Stats implements physics.World. The world's static body is not counted.
func (w *World) Stats() physics.Stats {
	return physics.Stats{
		Bodies:      len(w.bodies) - 1,
		Shapes:      len(w.shapes),
		Constraints: len(w.constraints),
	}
}

// listener forwards contact begins to the registered handlers.
type listener struct {
	w *World
}

func (l *listener) BeginContact(contact box2d.B2ContactInterface) {
	a, okA := contact.GetFixtureA().GetUserData().(physics.ShapeID)
	b, okB := contact.GetFixtureB().GetUserData().(physics.ShapeID)
	if !okA || !okB {
		return
	}
	sa, sb := l.w.shapes[a], l.w.shapes[b]
	if sa == nil || sb == nil {
		return
	}
	for _, h := range l.w.handlers {
		switch {
		case h.tagA == sa.tag && h.tagB == sb.tag:
			h.fn(a, b)
		case h.tagA == sb.tag && h.tagB == sa.tag:
			h.fn(b, a)
		}
	}
}

func (l *listener) EndContact(box2d.B2ContactInterface) {}

func (l *listener) PreSolve(box2d.B2ContactInterface, box2d.B2Manifold) {}

func (l *listener) PostSolve(box2d.B2ContactInterface, *box2d.B2ContactImpulse) {}
