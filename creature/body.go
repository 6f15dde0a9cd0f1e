package creature

import (
	"log/slog"
	"math"
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ShamylZakariya/Surfacer-sub000/components"
	"github.com/ShamylZakariya/Surfacer-sub000/geom"
	"github.com/ShamylZakariya/Surfacer-sub000/lifecycle"
	"github.com/ShamylZakariya/Surfacer-sub000/physics"
)

// minShapeRadius keeps physics circles non-degenerate at lifecycle 0.
const minShapeRadius = 1e-3

var groups atomic.Uint32

// nextGroup returns a collision group unique to one creature.
func nextGroup() uint32 {
	return 1<<16 + groups.Add(1)
}

// Segment is one tethered body and shape of a creature.
type Segment struct {
	body  physics.BodyID
	shape physics.ShapeID

	radius float64
	offset r2.Vec
	scale  float64

	slide     physics.ConstraintID
	slideMax  float64
	spring    physics.ConstraintID
	hasSpring bool
	motor     physics.ConstraintID
	hasMotor  bool

	position   r2.Vec
	angle      float64
	drawRadius float64
	opacity    float64
}

// Body returns the segment's physics body.
func (s *Segment) Body() physics.BodyID { return s.body }

// Shape returns the segment's physics shape.
func (s *Segment) Shape() physics.ShapeID { return s.shape }

// Radius returns the nominal segment radius.
func (s *Segment) Radius() float64 { return s.radius }

// Offset returns the template position relative to the center.
func (s *Segment) Offset() r2.Vec { return s.offset }

// Scale returns the current lifecycle*pulse factor.
func (s *Segment) Scale() float64 { return s.scale }

// Option configures a Body at build time.
type Option func(*Body)

// WithQueue defers teardown through q while the world is locked.
func WithQueue(q *physics.Queue) Option {
	return func(b *Body) { b.queue = q }
}

// WithPulsePhase offsets the breathing pulse, so neighbors do not pulse in step.
func WithPulsePhase(phase float64) Option {
	return func(b *Body) { b.pulsePhase = phase }
}

// WithName labels the creature in logs.
func WithName(name string) Option {
	return func(b *Body) { b.name = name }
}

// Body is a built creature. It exclusively owns every physics handle it
// allocated, through its arena.
type Body struct {
	params     Params
	world      physics.World
	queue      *physics.Queue
	arena      *physics.Arena
	clock      *lifecycle.Clock
	name       string
	pulsePhase float64

	central      physics.BodyID
	centralShape physics.ShapeID
	anchor       physics.ConstraintID // motor or fixed-angle lock to the world
	segments     []*Segment
	perimeter    []physics.ConstraintID
	perimeterMax []float64
	organs       []*Organ
	shapes       map[physics.ShapeID]struct{}

	speed     float64
	pulse     float64
	particles []components.Particle
	bb        geom.BB
	torndown  bool
}

// Build constructs a creature's topology in w. It panics on an unknown
// topology.
func Build(w physics.World, params Params, opts ...Option) *Body {
	if params.Filter.Group == 0 {
		params.Filter.Group = nextGroup()
	}
	b := &Body{
		params: params,
		world:  w,
		clock:  lifecycle.NewClock(params.Lifecycle),
		name:   params.Topology.String(),
		shapes: make(map[physics.ShapeID]struct{}),
		bb:     geom.InvalidBB(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.arena = physics.NewArena(w, b.queue)

	switch params.Topology {
	case RadialTethered:
		buildRadial(b)
	case ChainMotorized:
		buildChain(b)
	default:
		panic("creature: unknown topology " + params.Topology.String())
	}

	b.particles = make([]components.Particle, 0, len(b.segments)+1)
	b.Step(0)

	slog.Debug("creature built",
		"name", b.name,
		"topology", params.Topology.String(),
		"segments", len(b.segments),
		"constraints", len(b.arena.Constraints()),
	)
	return b
}

func (b *Body) shapeDef(radius float64) physics.CircleDef {
	return physics.CircleDef{
		Radius:     radius,
		Density:    b.params.Density,
		Friction:   b.params.Friction,
		Elasticity: b.params.Elasticity,
		Filter:     b.params.Filter,
		ContactTag: b.params.ContactTag,
	}
}

// addCentral creates the central body and its shape.
func (b *Body) addCentral() {
	b.central = b.arena.AddBody(physics.BodyDef{Position: b.params.Position})
	b.centralShape = b.arena.AddCircle(b.central, b.shapeDef(b.params.CentralRadius))
	b.shapes[b.centralShape] = struct{}{}
}

// addSegment creates a segment at the i-th ring position and slide-joints it
// to the center.
func (b *Body) addSegment(i int) *Segment {
	p := b.params
	angle := 2 * math.Pi * float64(i) / float64(p.NumParticles)
	seg := &Segment{
		radius: p.SegmentRadius,
		offset: geom.Polar(p.Radius, angle),
		scale:  1,
	}
	seg.body = b.arena.AddBody(physics.BodyDef{Position: r2.Add(p.Position, seg.offset), Angle: angle})
	seg.shape = b.arena.AddCircle(seg.body, b.shapeDef(p.SegmentRadius))
	b.shapes[seg.shape] = struct{}{}

	seg.slideMax = p.Radius
	seg.slide = b.arena.AddConstraint(physics.ConstraintDef{
		Kind: physics.Slide,
		A:    b.central,
		B:    seg.body,
		Min:  0,
		Max:  seg.slideMax,
	})
	b.segments = append(b.segments, seg)
	return seg
}

// Step advances the lifecycle, retunes every constraint, applies locomotion
// and refreshes the snapshot and bounding box.
func (b *Body) Step(dt float64) {
	if b.torndown {
		return
	}
	b.clock.Advance(dt)
	lc := b.clock.Value()

	b.pulse = 1
	if b.params.PulsePeriod > 0 {
		b.pulse += b.params.PulseMagnitude * math.Sin(2*math.Pi*b.clock.Age()/b.params.PulsePeriod+b.pulsePhase)
	}

	center := b.world.Position(b.central)
	for _, seg := range b.segments {
		b.stepSegment(seg, center, lc)
	}

	switch b.params.Topology {
	case RadialTethered:
		stepRadial(b, lc)
	case ChainMotorized:
		stepChain(b, lc)
	}
	for _, o := range b.organs {
		o.refresh(b.world)
	}

	b.bb = geom.InvalidBB()
	for _, seg := range b.segments {
		b.bb = b.bb.Expand(geom.ForCircle(seg.position, seg.drawRadius))
	}
}

func (b *Body) stepSegment(seg *Segment, center r2.Vec, lc float64) {
	w := b.world
	seg.scale = lc * b.pulse
	seg.drawRadius = seg.radius * seg.scale
	w.SetCircleRadius(seg.shape, math.Max(seg.drawRadius, minShapeRadius))

	w.SetSlideLimits(seg.slide, 0, seg.slideMax*lc)
	if seg.hasSpring {
		w.SetSpring(seg.spring, b.params.Radius, b.params.SpringStiffness*lc, b.params.SpringDamping)
	}

	seg.position = w.Position(seg.body)
	seg.angle = w.Angle(seg.body)

	dir, _ := geom.SafeUnit(r2.Sub(center, seg.position))
	seg.opacity = geom.Saturate(0.75 + 0.25*r2.Dot(dir, geom.Up) + (b.pulse - 1))
}

func (b *Body) appendSegmentParticles() {
	for _, seg := range b.segments {
		b.particles = append(b.particles, components.Particle{
			Position:   seg.position,
			Radius:     seg.radius,
			DrawRadius: seg.drawRadius,
			Angle:      seg.angle,
			Opacity:    seg.opacity,
		})
	}
}

// locomotionRate returns the motor rate for the current speed.
func (b *Body) locomotionRate() float64 {
	c := b.params.Circumference()
	if c <= 0 {
		return 0
	}
	return b.speed / c
}

// SetLifecycle sets the lifecycle scalar of an externally driven creature.
// It has no effect on a self-timed creature.
func (b *Body) SetLifecycle(v float64) { b.clock.Set(v) }

// Finish starts the exit fade of a self-timed creature.
func (b *Body) Finish() {
	if !b.clock.Finished() {
		slog.Debug("creature finished", "name", b.name, "age", b.clock.Age())
	}
	b.clock.Finish()
}

// Finished reports whether Finish has been called.
func (b *Body) Finished() bool { return b.clock.Finished() }

// Lifecycle returns the current lifecycle scalar in [0, 1].
func (b *Body) Lifecycle() float64 { return b.clock.Value() }

// Age returns seconds since build.
func (b *Body) Age() float64 { return b.clock.Age() }

// Done reports whether a finished creature has fully faded.
func (b *Body) Done() bool { return b.clock.Done() }

// SetSpeed sets the desired linear speed; positive rolls toward +x.
func (b *Body) SetSpeed(v float64) { b.speed = v }

// Speed returns the desired linear speed.
func (b *Body) Speed() float64 { return b.speed }

// Params returns the parameter block the creature was built with.
func (b *Body) Params() Params { return b.params }

// Topology returns the creature's topology.
func (b *Body) Topology() Topology { return b.params.Topology }

// Particles returns the render snapshot: one entry per segment followed by
// one for the center. The slice is reused by the next Step.
func (b *Body) Particles() []components.Particle { return b.particles }

// BB returns the bounds of every segment's draw circle.
func (b *Body) BB() geom.BB { return b.bb }

// Position returns the central body's position.
func (b *Body) Position() r2.Vec { return b.world.Position(b.central) }

// CentralBody returns the body organs and other objects may anchor to.
func (b *Body) CentralBody() physics.BodyID { return b.central }

// Constraints returns every constraint the creature owns, for debug drawing.
func (b *Body) Constraints() []physics.ConstraintID { return b.arena.Constraints() }

// Segments returns the segments in ring order. The slice must not be modified.
func (b *Body) Segments() []*Segment { return b.segments }

// Owns reports whether s belongs to this creature.
func (b *Body) Owns(s physics.ShapeID) bool {
	_, ok := b.shapes[s]
	return ok
}

// TornDown reports whether Teardown has been called.
func (b *Body) TornDown() bool { return b.torndown }

// Teardown frees every constraint, then every shape, then every body with the
// central body last. While the world is locked the frees are queued. Calling
// it more than once is a no-op.
func (b *Body) Teardown() {
	if b.torndown {
		return
	}
	b.torndown = true
	b.arena.Release()
	slog.Debug("creature torn down", "name", b.name, "deferred", b.world.Locked())
}
