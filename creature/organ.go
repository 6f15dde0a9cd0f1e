package creature

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ShamylZakariya/Surfacer-sub000/components"
	"github.com/ShamylZakariya/Surfacer-sub000/physics"
)

// OrganSpec describes a small body pinned to a creature's center.
// Offset is relative to the central body; MinAngle and MaxAngle bound how far
// the organ may swing relative to the center.
type OrganSpec struct {
	Offset   r2.Vec
	Radius   float64
	Density  float64
	MinAngle float64
	MaxAngle float64
}

// Organ is an attached body, freed together with its creature.
type Organ struct {
	spec  OrganSpec
	body  physics.BodyID
	shape physics.ShapeID
	pivot physics.ConstraintID
	limit physics.ConstraintID

	particle components.Particle
}

// Body returns the organ's physics body.
func (o *Organ) Body() physics.BodyID { return o.body }

// Shape returns the organ's physics shape.
func (o *Organ) Shape() physics.ShapeID { return o.shape }

// Particle returns the organ's render snapshot as of the last step.
func (o *Organ) Particle() components.Particle { return o.particle }

func (o *Organ) refresh(w physics.World) {
	o.particle = components.Particle{
		Position:   w.Position(o.body),
		Radius:     o.spec.Radius,
		DrawRadius: o.spec.Radius,
		Angle:      w.Angle(o.body),
		Opacity:    1,
	}
}

// Attach pins a new organ to the central body with a pivot and a rotary
// limit. The organ shares the creature's collision group.
// It must not be called while the world is locked.
func (b *Body) Attach(spec OrganSpec) *Organ {
	if b.torndown {
		panic("creature: Attach after Teardown")
	}
	density := spec.Density
	if density == 0 {
		density = b.params.Density
	}
	pos := r2.Add(b.world.Position(b.central), spec.Offset)

	o := &Organ{spec: spec}
	o.body = b.arena.AddBody(physics.BodyDef{Position: pos})
	def := b.shapeDef(spec.Radius)
	def.Density = density
	o.shape = b.arena.AddCircle(o.body, def)
	o.pivot = b.arena.AddConstraint(physics.ConstraintDef{
		Kind:  physics.Pivot,
		A:     b.central,
		B:     o.body,
		Pivot: pos,
	})
	o.limit = b.arena.AddConstraint(physics.ConstraintDef{
		Kind: physics.RotaryLimit,
		A:    b.central,
		B:    o.body,
		Min:  spec.MinAngle,
		Max:  spec.MaxAngle,
	})
	o.refresh(b.world)

	b.shapes[o.shape] = struct{}{}
	b.organs = append(b.organs, o)
	return o
}

// Organs returns the attached organs. The slice must not be modified.
func (b *Body) Organs() []*Organ { return b.organs }
