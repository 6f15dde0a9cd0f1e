package liquid

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ShamylZakariya/Surfacer-sub000/components"
	"github.com/ShamylZakariya/Surfacer-sub000/geom"
	"github.com/ShamylZakariya/Surfacer-sub000/lifecycle"
	"github.com/ShamylZakariya/Surfacer-sub000/physics"
)

// SleepSpeedThreshold is the linear speed below which an unchanged particle
// is left undamped, so a settled pool is not woken every tick.
const SleepSpeedThreshold = 0.05

// Option configures a Field.
type Option func(*Field)

// WithQueue routes frees through q while the world is locked.
func WithQueue(q *physics.Queue) Option {
	return func(f *Field) { f.queue = q }
}

// WithName labels the field in logs.
func WithName(name string) Option {
	return func(f *Field) { f.name = name }
}

// Field owns a pool of liquid particles.
//
// Particles keep their relative order across steps; expired ones are removed
// in place. Field is not safe for concurrent use.
type Field struct {
	world   physics.World
	queue   *physics.Queue
	cfg     Config
	name    string
	clumper *ClumpingForceField

	particles []*Particle
	byShape   map[physics.ShapeID]*Particle

	dirty    bool
	bb       geom.BB
	snapshot []components.Particle

	spawned, expired int
}

// NewField returns an empty field allocating in w.
func NewField(w physics.World, cfg Config, opts ...Option) *Field {
	f := &Field{
		world:   w,
		cfg:     cfg,
		name:    "liquid",
		byShape: make(map[physics.ShapeID]*Particle),
		bb:      geom.InvalidBB(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.clumper = NewClumpingForceField(w, cfg.ClumpingForce, cfg.Filter.Categories, f.particleFor)
	return f
}

func (f *Field) particleFor(s physics.ShapeID) *Particle { return f.byShape[s] }

// Config returns the field's parameter block.
func (f *Field) Config() Config { return f.cfg }

// Name returns the field's log label.
func (f *Field) Name() string { return f.name }

// Attack returns the damage this field deals on contact.
func (f *Field) Attack() Attack { return f.cfg.Attack }

// Clumping returns the field's cohesion force.
func (f *Field) Clumping() *ClumpingForceField { return f.clumper }

// Spawn allocates one particle and appends it to the field.
// Spec values are not validated.
func (f *Field) Spawn(spec ParticleSpec) *Particle {
	density := orDefault(spec.Density, f.cfg.Density)
	friction := orDefault(spec.Friction, f.cfg.Friction)
	elasticity := orDefault(spec.Elasticity, f.cfg.Elasticity)
	visual := orDefault(spec.VisualRadiusScale, 1)

	p := &Particle{
		radius:            spec.Radius,
		visualRadiusScale: visual,
		linearDamping:     spec.LinearDamping,
		angularDamping:    spec.AngularDamping,
		lifespan:          spec.Lifespan,
		entranceDuration:  spec.EntranceDuration,
		exitDuration:      spec.ExitDuration,
	}
	p.currentRadius = p.radiusForAge()

	p.body = f.world.AddBody(physics.BodyDef{Position: spec.Position, Velocity: spec.Velocity})
	p.shape = f.world.AddCircle(p.body, physics.CircleDef{
		Radius:     p.currentRadius,
		Density:    density,
		Friction:   friction,
		Elasticity: elasticity,
		Filter:     f.cfg.Filter,
		ContactTag: f.cfg.ContactTag,
	})

	f.particles = append(f.particles, p)
	f.byShape[p.shape] = p
	f.spawned++
	f.dirty = true
	return p
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// latticeEpsilon absorbs rounding at the edge of a circular fill.
const latticeEpsilon = 1e-9

// SpawnCircularFill spawns particles on a square lattice of pitch
// 2*spec.Radius covering the circle at center, keeping lattice points within
// radius of center. It returns how many were spawned.
func (f *Field) SpawnCircularFill(spec ParticleSpec, center r2.Vec, radius float64) int {
	step := 2 * spec.Radius
	if step <= 0 {
		return 0
	}
	cells := int(math.Floor(2*radius/step+latticeEpsilon)) + 1
	n := 0
	for i := 0; i < cells; i++ {
		y := center.Y - radius + float64(i)*step
		for j := 0; j < cells; j++ {
			pos := r2.Vec{X: center.X - radius + float64(j)*step, Y: y}
			if geom.Dist(pos, center) > radius+latticeEpsilon {
				continue
			}
			s := spec
			s.Position = pos
			f.Spawn(s)
			n++
		}
	}
	slog.Debug("liquid fill", "field", f.name, "center_x", center.X, "center_y", center.Y, "radius", radius, "spawned", n)
	return n
}

// Step ages every particle, resizes its shape, removes the expired, applies
// clumping and damping, and recomputes the bounding box.
func (f *Field) Step(dt float64) {
	w := f.world

	live := f.particles[:0]
	for _, p := range f.particles {
		p.age += dt
		r := p.radiusForAge()
		p.resized = r != p.currentRadius
		if p.resized {
			p.currentRadius = r
			w.SetCircleRadius(p.shape, r)
		}
		if lifecycle.Expired(p.age, p.lifespan) {
			f.free(p)
			f.expired++
			continue
		}
		live = append(live, p)
	}
	for i := len(live); i < len(f.particles); i++ {
		f.particles[i] = nil
	}
	f.particles = live

	if f.clumper.Force() > 0 {
		for _, p := range f.particles {
			f.clumper.Apply(p, dt)
		}
	}

	for _, p := range f.particles {
		v := w.Velocity(p.body)
		if !p.resized && r2.Norm(v) <= SleepSpeedThreshold {
			continue
		}
		w.SetVelocity(p.body, r2.Scale(1-geom.Saturate(p.linearDamping), v))
		w.SetAngularVelocity(p.body, w.AngularVelocity(p.body)*(1-geom.Saturate(p.angularDamping)))
		if p.resized {
			w.Activate(p.body)
		}
	}

	f.refresh()
}

func (f *Field) free(p *Particle) {
	delete(f.byShape, p.shape)
	body, shape := p.body, p.shape
	f.queue.Run(f.world, func(w physics.World) {
		w.RemoveShape(shape)
		w.RemoveBody(body)
	})
}

// Clear frees every particle and empties the field.
func (f *Field) Clear() {
	n := len(f.particles)
	for _, p := range f.particles {
		f.free(p)
	}
	f.particles = nil
	f.dirty = true
	f.refresh()
	if n > 0 {
		slog.Debug("liquid cleared", "field", f.name, "freed", n)
	}
}

func (f *Field) refresh() {
	w := f.world
	f.bb = geom.InvalidBB()
	f.snapshot = f.snapshot[:0]
	for _, p := range f.particles {
		pos := w.Position(p.body)
		draw := p.DrawRadius()
		f.bb = f.bb.Expand(geom.ForCircle(pos, draw))
		f.snapshot = append(f.snapshot, components.Particle{
			Position:   pos,
			Radius:     p.radius,
			DrawRadius: draw,
			Angle:      w.Angle(p.body),
			Opacity:    p.currentRadius / p.radius,
		})
	}
	f.dirty = false
}

// Particles returns the render snapshot, in particle order. The slice is
// reused by the next Step and must not be modified.
func (f *Field) Particles() []components.Particle {
	if f.dirty {
		f.refresh()
	}
	return f.snapshot
}

// Live returns the field's particles in order. The slice must not be modified.
func (f *Field) Live() []*Particle { return f.particles }

// ParticleCount returns the number of live particles.
func (f *Field) ParticleCount() int { return len(f.particles) }

// BB returns the bounds of every particle's draw circle; invalid when empty.
func (f *Field) BB() geom.BB {
	if f.dirty {
		f.refresh()
	}
	return f.bb
}

// Owns reports whether s is one of this field's particle shapes.
func (f *Field) Owns(s physics.ShapeID) bool {
	_, ok := f.byShape[s]
	return ok
}

// Particle returns the particle owning s, or nil.
func (f *Field) Particle(s physics.ShapeID) *Particle { return f.byShape[s] }

// Counts returns how many particles have been spawned and have expired over
// the field's life.
func (f *Field) Counts() (spawned, expired int) { return f.spawned, f.expired }

// MeanRadiusFraction returns the mean CurrentRadius/Radius over live
// particles, or NaN when empty.
func (f *Field) MeanRadiusFraction() float64 {
	if len(f.particles) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, p := range f.particles {
		sum += p.currentRadius / p.radius
	}
	return sum / float64(len(f.particles))
}
