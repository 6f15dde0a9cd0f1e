package creature

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ShamylZakariya/Surfacer-sub000/components"
	"github.com/ShamylZakariya/Surfacer-sub000/physics"
)

// buildChain lays out the chain-motorized topology: a center held at a fixed
// angle and segments that are each slide-jointed to it and motorized against
// the world.
func buildChain(b *Body) {
	p := b.params
	w := b.world

	b.addCentral()
	b.anchor = b.arena.AddConstraint(physics.ConstraintDef{
		Kind:  physics.FixedAngle,
		A:     w.StaticBody(),
		B:     b.central,
		Phase: 0,
		Ratio: 1,
	})

	for i := 0; i < p.NumParticles; i++ {
		seg := b.addSegment(i)
		seg.hasMotor = true
		seg.motor = b.arena.AddConstraint(physics.ConstraintDef{
			Kind:     physics.Motor,
			A:        w.StaticBody(),
			B:        seg.body,
			Rate:     0,
			MaxForce: p.MotorMaxForce,
		})
	}
}

// stepChain drives every segment motor and appends the crown particle, whose
// position and angle average the segments'.
func stepChain(b *Body, _ float64) {
	w := b.world
	rate := 0.0
	if n := len(b.segments); n > 0 {
		rate = b.locomotionRate() / math.Sqrt(float64(n))
	}

	var sum r2.Vec
	angle := 0.0
	for _, seg := range b.segments {
		w.SetMotorRate(seg.motor, rate)
		sum = r2.Add(sum, seg.position)
		angle += seg.angle
	}

	b.particles = b.particles[:0]
	b.appendSegmentParticles()

	crown := components.Particle{Position: w.Position(b.central), Opacity: 1}
	if n := float64(len(b.segments)); n > 0 {
		crown.Position = r2.Scale(1/n, sum)
		crown.Angle = angle / n
	}
	b.particles = append(b.particles, crown)
}
