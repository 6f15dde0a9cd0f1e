package creature

import (
	"github.com/ShamylZakariya/Surfacer-sub000/components"
	"github.com/ShamylZakariya/Surfacer-sub000/geom"
	"github.com/ShamylZakariya/Surfacer-sub000/physics"
)

// buildRadial lays out the radial-tethered topology: a motorized center, a
// ring of segments each slide-jointed and sprung to it, and a perimeter of
// slide joints between neighbors.
func buildRadial(b *Body) {
	p := b.params
	w := b.world

	b.addCentral()
	b.anchor = b.arena.AddConstraint(physics.ConstraintDef{
		Kind:     physics.Motor,
		A:        w.StaticBody(),
		B:        b.central,
		Rate:     0,
		MaxForce: p.MotorMaxForce,
	})

	for i := 0; i < p.NumParticles; i++ {
		seg := b.addSegment(i)
		seg.hasSpring = true
		seg.spring = b.arena.AddConstraint(physics.ConstraintDef{
			Kind:       physics.DampedSpring,
			A:          b.central,
			B:          seg.body,
			RestLength: p.Radius,
			Stiffness:  0,
			Damping:    p.SpringDamping,
		})
	}

	n := len(b.segments)
	for i, seg := range b.segments {
		next := b.segments[(i+1)%n]
		sep := geom.Dist(seg.offset, next.offset)
		b.perimeter = append(b.perimeter, b.arena.AddConstraint(physics.ConstraintDef{
			Kind: physics.Slide,
			A:    seg.body,
			B:    next.body,
			Min:  0,
			Max:  sep,
		}))
		b.perimeterMax = append(b.perimeterMax, sep)
	}
}

// stepRadial retunes the perimeter, drives the central motor and appends
// the center particle after the segments.
func stepRadial(b *Body, lc float64) {
	w := b.world
	for i, c := range b.perimeter {
		w.SetSlideLimits(c, 0, b.perimeterMax[i]*lc)
	}
	w.SetMotorRate(b.anchor, b.locomotionRate())

	b.particles = b.particles[:0]
	b.appendSegmentParticles()
	b.particles = append(b.particles, components.Particle{
		Position:   w.Position(b.central),
		Radius:     b.params.CentralRadius,
		DrawRadius: b.params.CentralRadius * lc * b.pulse,
		Angle:      w.Angle(b.central),
		Opacity:    1,
	})
}
