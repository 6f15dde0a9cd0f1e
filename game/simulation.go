package game

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ShamylZakariya/Surfacer-sub000/lifecycle"
	"github.com/ShamylZakariya/Surfacer-sub000/physics"
	"github.com/ShamylZakariya/Surfacer-sub000/telemetry"
)

// updateLiquids runs emitters, then steps every field.
func (l *Level) updateLiquids() {
	query := l.liquidFilter.Query()
	for query.Next() {
		ref, ext := query.Get()

		spawned0, expired0 := ref.Field.Counts()
		for _, em := range ref.Emitters {
			em.Emit(ref.Field, l.dt)
		}
		ref.Field.Step(l.dt)
		spawned, expired := ref.Field.Counts()

		if n := spawned - spawned0; n > 0 {
			l.collector.Record(telemetry.NewParticlesSpawnedEvent(l.tick, ref.Name, n))
		}
		if n := expired - expired0; n > 0 {
			l.collector.Record(telemetry.NewParticlesExpiredEvent(l.tick, ref.Name, n))
		}
		ext.BB = ref.Field.BB()
	}
}

// updateCreatures drives each creature's wander speed and lifecycle, steps it,
// and mirrors its transform and bounds into the ECS.
//
// Desired speed follows 2D simplex noise over (seed, time*wanderScale) and is
// smoothed by the creature's spring. A dead creature's target speed is zero.
func (l *Level) updateCreatures() {
	t := float64(l.tick) * l.dt

	query := l.creatureFilter.Query()
	for query.Next() {
		ref, tr, ext, health, loco := query.Get()
		body := ref.Body

		if health.Dead {
			loco.Desired = 0
		} else {
			loco.Desired = loco.MaxSpeed * l.noise.Eval2(loco.Seed, t*ref.WanderScale)
		}
		loco.Speed, loco.Vel = ref.Spring.Update(loco.Speed, loco.Vel, loco.Desired)
		body.SetSpeed(loco.Speed)

		// Externally driven creatures shrink as they are hurt.
		if body.Params().Lifecycle.Kind == lifecycle.KindExternallyDriven {
			body.SetLifecycle(health.Fraction())
		}

		body.Step(l.dt)

		prev := tr.Position
		tr.Position = body.Position()
		tr.Angle = l.world.Angle(body.CentralBody())
		ext.BB = body.BB()
		l.lifetimes.Update(ref.ID, body.Lifecycle(), r2.Norm(r2.Sub(tr.Position, prev)))
	}
}

// onHazardContact runs inside the physics step; it only records the touch.
func (l *Level) onHazardContact(a, b physics.ShapeID) {
	for _, name := range l.cfg.Derived.LiquidNames {
		field := l.Liquid(name)
		if field == nil || !field.Owns(a) {
			continue
		}
		if attack := field.Attack(); attack.Strength > 0 {
			l.contacts = append(l.contacts, hazardContact{liquid: name, attack: attack, creature: b})
		}
		return
	}
}

// resolveHazards applies Strength*dt damage per recorded contact and finishes
// creatures whose health runs out.
func (l *Level) resolveHazards() {
	if len(l.contacts) == 0 {
		return
	}

	query := l.creatureFilter.Query()
	for query.Next() {
		ref, _, _, health, _ := query.Get()
		if health.Dead {
			continue
		}

		for _, c := range l.contacts {
			if !ref.Body.Owns(c.creature) {
				continue
			}
			dmg := c.attack.Strength * l.dt
			if dmg > health.Value {
				dmg = health.Value
			}
			health.Value -= dmg
			l.lifetimes.RecordHazard(ref.ID, dmg)
			l.collector.Record(telemetry.NewHazardContactEvent(l.tick, ref.ID, c.liquid, dmg))
			if health.Value <= 0 {
				break
			}
		}

		if health.Value <= 0 {
			health.Value = 0
			health.Dead = true
			ref.Body.Finish()
			l.lifetimes.RecordDeath(ref.ID, l.tick)
			l.collector.Record(telemetry.NewCreatureKilledEvent(l.tick, ref.ID, ref.Kind))
		}
	}

	l.contacts = l.contacts[:0]
}
