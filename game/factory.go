package game

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/charmbracelet/harmonica"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ShamylZakariya/Surfacer-sub000/components"
	"github.com/ShamylZakariya/Surfacer-sub000/config"
	"github.com/ShamylZakariya/Surfacer-sub000/creature"
	"github.com/ShamylZakariya/Surfacer-sub000/geom"
	"github.com/ShamylZakariya/Surfacer-sub000/liquid"
	"github.com/ShamylZakariya/Surfacer-sub000/physics"
	"github.com/ShamylZakariya/Surfacer-sub000/telemetry"
)

// groundFriction is shared by every static segment.
const groundFriction = 1.0

// addGround attaches the configured static segments to the world's static body.
func (l *Level) addGround() {
	static := l.world.StaticBody()
	for _, seg := range l.cfg.Level.Ground {
		s := l.world.AddSegment(static, physics.SegmentDef{
			A:        r2.Vec{X: seg.X1, Y: seg.Y1},
			B:        r2.Vec{X: seg.X2, Y: seg.Y2},
			Radius:   seg.Radius,
			Friction: groundFriction,
			Filter:   physics.FilterAll,
		})
		l.ground = append(l.ground, s)
	}
}

// addLiquid creates the entity and field for one configured liquid.
func (l *Level) addLiquid(name string) error {
	lc := l.cfg.Liquids[name]
	fc, err := lc.FieldConfig()
	if err != nil {
		return fmt.Errorf("liquid %s: %w", name, err)
	}
	field := liquid.NewField(l.world, fc, liquid.WithQueue(l.queue), liquid.WithName(name))

	ref := LiquidRef{Name: name, Field: field}
	ext := components.Extent{BB: geom.InvalidBB()}
	l.liquids[name] = l.liquidMapper.NewEntity(&ref, &ext)
	return nil
}

// FillPool spawns a circular fill of the pool's liquid and, when the pool
// emits, attaches an emitter at its center. It returns the particles spawned.
func (l *Level) FillPool(pool config.PoolConfig) int {
	e, ok := l.liquids[pool.Liquid]
	if !ok {
		slog.Warn("pool references unknown liquid", "liquid", pool.Liquid)
		return 0
	}
	ref, ext := l.liquidMapper.Get(e)
	lc := l.cfg.Liquids[pool.Liquid]
	center := r2.Vec{X: pool.X, Y: pool.Y}
	spec := lc.ParticleSpec(center)

	n := ref.Field.SpawnCircularFill(spec, center, pool.Radius)
	ext.BB = ref.Field.BB()
	l.collector.Record(telemetry.NewParticlesSpawnedEvent(l.tick, pool.Liquid, n))

	if pool.Emit && lc.Emitter.Rate > 0 {
		ref.Emitters = append(ref.Emitters,
			liquid.NewEmitter(spec, lc.Emitter.Rate, lc.Emitter.Jitter, l.rng.Int63()))
	}
	return n
}

// registerHazards installs one contact handler per (attacking liquid tag,
// creature tag) pair.
func (l *Level) registerHazards() {
	liquidTags := make(map[uint32]struct{})
	for _, name := range l.cfg.Derived.LiquidNames {
		lc := l.cfg.Liquids[name]
		if lc.ContactTag != 0 && lc.Attack.Strength > 0 {
			liquidTags[lc.ContactTag] = struct{}{}
		}
	}
	creatureTags := make(map[uint32]struct{})
	for _, name := range l.cfg.Derived.CreatureNames {
		if tag := l.cfg.Creatures[name].ContactTag; tag != 0 {
			creatureTags[tag] = struct{}{}
		}
	}

	for _, lt := range sortedTags(liquidTags) {
		for _, ct := range sortedTags(creatureTags) {
			if lt == ct {
				continue
			}
			l.world.OnContact(lt, ct, l.onHazardContact)
		}
	}
}

func sortedTags(set map[uint32]struct{}) []uint32 {
	tags := make([]uint32, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// SpawnCreature builds one creature from its spawn entry and registers it in the ECS.
func (l *Level) SpawnCreature(s config.SpawnConfig) (*creature.Body, error) {
	cc, ok := l.cfg.Creatures[s.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown creature %q", s.Kind)
	}
	params, err := cc.Params()
	if err != nil {
		return nil, fmt.Errorf("creature %s: %w", s.Kind, err)
	}
	params.Position = r2.Vec{X: s.X, Y: s.Y}

	id := l.nextID
	l.nextID++

	body := creature.Build(l.world, params,
		creature.WithQueue(l.queue),
		creature.WithName(fmt.Sprintf("%s-%d", s.Kind, id)),
		creature.WithPulsePhase(2*math.Pi*l.rng.Float64()),
	)
	for i := 0; i < s.Organs; i++ {
		body.Attach(organSpec(params, i, s.Organs))
	}

	ref := CreatureRef{
		ID:          id,
		Kind:        s.Kind,
		Body:        body,
		WanderScale: cc.WanderScale,
		Spring:      harmonica.NewSpring(l.dt, cc.SmoothFrequency, cc.SmoothDamping),
	}
	tr := components.Transform{Position: body.Position()}
	ext := components.Extent{BB: body.BB()}
	health := components.Health{Value: cc.Health, Max: cc.Health}
	loco := components.Locomotion{
		Seed:     l.rng.Float64() * 1000,
		MaxSpeed: cc.MaxSpeed,
	}
	l.creatureMapper.NewEntity(&ref, &tr, &ext, &health, &loco)
	l.creatures++

	l.lifetimes.Register(id, s.Kind, l.tick)
	l.collector.Record(telemetry.NewCreatureBuiltEvent(l.tick, id, s.Kind))
	return body, nil
}

// organSpec spreads n organs evenly around the inner half of the creature's
// central body.
func organSpec(p creature.Params, i, n int) creature.OrganSpec {
	a := 2 * math.Pi * float64(i) / float64(n)
	r := 0.5 * p.CentralRadius
	return creature.OrganSpec{
		Offset:   geom.Polar(0.5*p.Radius, a),
		Radius:   r,
		Density:  p.Density,
		MinAngle: -math.Pi / 4,
		MaxAngle: math.Pi / 4,
	}
}
