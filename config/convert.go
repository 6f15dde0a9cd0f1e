package config

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ShamylZakariya/Surfacer-sub000/creature"
	"github.com/ShamylZakariya/Surfacer-sub000/lifecycle"
	"github.com/ShamylZakariya/Surfacer-sub000/liquid"
	"github.com/ShamylZakariya/Surfacer-sub000/physics"
)

// FieldConfig converts the liquid block to a field parameter block.
func (l LiquidConfig) FieldConfig() (liquid.Config, error) {
	injury, err := liquid.ParseInjury(l.Attack.Injury)
	if err != nil {
		return liquid.Config{}, err
	}
	return liquid.Config{
		Density:       l.Density,
		Friction:      l.Friction,
		Elasticity:    l.Elasticity,
		ClumpingForce: l.ClumpingForce,
		Filter:        physics.Filter{Categories: l.Categories, Mask: l.Mask},
		ContactTag:    l.ContactTag,
		Attack:        liquid.Attack{Strength: l.Attack.Strength, Injury: injury},
	}, nil
}

// ParticleSpec returns the liquid's particle template placed at pos.
func (l LiquidConfig) ParticleSpec(pos r2.Vec) liquid.ParticleSpec {
	p := l.Particle
	return liquid.ParticleSpec{
		Position:          pos,
		Radius:            p.Radius,
		VisualRadiusScale: p.VisualRadiusScale,
		LinearDamping:     p.LinearDamping,
		AngularDamping:    p.AngularDamping,
		Lifespan:          p.Lifespan,
		EntranceDuration:  p.Entrance,
		ExitDuration:      p.Exit,
	}
}

// Params converts the creature block to a build parameter block, starting
// from the topology's defaults so unset fields stay usable.
func (c CreatureConfig) Params() (creature.Params, error) {
	t, err := creature.ParseTopology(c.Topology)
	if err != nil {
		return creature.Params{}, err
	}
	p := creature.DefaultParams(t)
	setIf(&p.Radius, c.Radius)
	if c.NumParticles > 0 {
		p.NumParticles = c.NumParticles
	}
	setIf(&p.SegmentRadius, c.SegmentRadius)
	setIf(&p.CentralRadius, c.CentralRadius)
	setIf(&p.Density, c.Density)
	setIf(&p.Friction, c.Friction)
	setIf(&p.Elasticity, c.Elasticity)
	setIf(&p.SpringStiffness, c.SpringStiffness)
	setIf(&p.SpringDamping, c.SpringDamping)
	setIf(&p.MotorMaxForce, c.MotorMaxForce)
	setIf(&p.PulsePeriod, c.PulsePeriod)
	setIf(&p.PulseMagnitude, c.PulseMagnitude)

	if c.External {
		p.Lifecycle = lifecycle.ExternallyDriven()
	} else {
		p.Lifecycle = lifecycle.SelfTimed(c.Intro, c.Extro)
	}
	p.Filter = physics.Filter{Categories: c.Categories, Mask: c.Mask}
	p.ContactTag = c.ContactTag
	return p, nil
}

func setIf(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}
