// Package game owns a running level: the physics world, the ECS of liquids
// and creatures living in it, and the tick loop that drives them.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/charmbracelet/harmonica"
	"github.com/mlange-42/ark/ecs"
	"github.com/ojrac/opensimplex-go"

	"github.com/ShamylZakariya/Surfacer-sub000/components"
	"github.com/ShamylZakariya/Surfacer-sub000/config"
	"github.com/ShamylZakariya/Surfacer-sub000/creature"
	"github.com/ShamylZakariya/Surfacer-sub000/liquid"
	"github.com/ShamylZakariya/Surfacer-sub000/physics"
	"github.com/ShamylZakariya/Surfacer-sub000/physics/b2world"
	"github.com/ShamylZakariya/Surfacer-sub000/physics/cpworld"
	"github.com/ShamylZakariya/Surfacer-sub000/telemetry"
)

// LiquidRef is the ECS component of a liquid entity: one field per liquid
// kind, fed by any number of emitters.
type LiquidRef struct {
	Name     string
	Field    *liquid.Field
	Emitters []*liquid.Emitter
}

// CreatureRef is the ECS component of a creature entity.
type CreatureRef struct {
	ID          uint32
	Kind        string
	Body        *creature.Body
	WanderScale float64
	Spring      harmonica.Spring
}

// hazardContact is a liquid/creature touch reported while the world was locked.
type hazardContact struct {
	liquid   string
	attack   liquid.Attack
	creature physics.ShapeID
}

// NewPhysicsWorld builds the backend selected by the physics config.
func NewPhysicsWorld(cfg *config.Config) (physics.World, error) {
	pc := cfg.Physics
	switch pc.Engine {
	case "chipmunk":
		return cpworld.New(cpworld.Options{
			Gravity:    cfg.Derived.Gravity,
			Iterations: pc.Iterations,
			Damping:    pc.Damping,
		}), nil
	case "box2d":
		return b2world.New(b2world.Options{
			Gravity:            cfg.Derived.Gravity,
			VelocityIterations: pc.Iterations,
			PositionIterations: pc.PositionIterations,
			Damping:            pc.Damping,
		}), nil
	}
	return nil, fmt.Errorf("unknown physics engine %q", pc.Engine)
}

// Level holds the complete simulation state.
type Level struct {
	cfg   *config.Config
	dt    float64
	world physics.World
	queue *physics.Queue
	ecs   *ecs.World
	rng   *rand.Rand
	noise opensimplex.Noise

	liquidMapper *ecs.Map2[LiquidRef, components.Extent]
	liquidFilter *ecs.Filter2[LiquidRef, components.Extent]

	creatureMapper *ecs.Map5[
		CreatureRef,
		components.Transform,
		components.Extent,
		components.Health,
		components.Locomotion,
	]
	creatureFilter *ecs.Filter5[
		CreatureRef,
		components.Transform,
		components.Extent,
		components.Health,
		components.Locomotion,
	]
	creatureMap *ecs.Map1[CreatureRef]

	liquids  map[string]ecs.Entity
	ground   []physics.ShapeID
	contacts []hazardContact

	// State
	tick      int32
	nextID    uint32
	creatures int

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	bookmarks     *telemetry.BookmarkDetector
	lifetimes     *telemetry.LifetimeTracker
	output        *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
}

// NewLevel builds the configured level in w: ground, liquid pools, hazard
// contact handlers and the initial creatures.
func NewLevel(cfg *config.Config, w physics.World, opts Options) (*Level, error) {
	world := ecs.NewWorld()

	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Level.Seed
	}
	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	l := &Level{
		cfg:   cfg,
		dt:    cfg.Physics.DT,
		world: w,
		queue: physics.NewQueue(),
		ecs:   world,
		rng:   rand.New(rand.NewSource(seed)),
		noise: opensimplex.New(seed),

		liquidMapper: ecs.NewMap2[LiquidRef, components.Extent](world),
		liquidFilter: ecs.NewFilter2[LiquidRef, components.Extent](world),
		creatureMapper: ecs.NewMap5[
			CreatureRef,
			components.Transform,
			components.Extent,
			components.Health,
			components.Locomotion,
		](world),
		creatureFilter: ecs.NewFilter5[
			CreatureRef,
			components.Transform,
			components.Extent,
			components.Health,
			components.Locomotion,
		](world),
		creatureMap: ecs.NewMap1[CreatureRef](world),

		liquids: make(map[string]ecs.Entity),

		collector:     telemetry.NewCollector(statsWindow, cfg.Physics.DT),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarks:     telemetry.NewBookmarkDetector(10),
		lifetimes:     telemetry.NewLifetimeTracker(),
		output:        output,
		logStats:      opts.LogStats,
	}

	l.addGround()
	for _, name := range cfg.Derived.LiquidNames {
		if err := l.addLiquid(name); err != nil {
			output.Close()
			return nil, err
		}
	}
	for _, pool := range cfg.Level.Pools {
		l.FillPool(pool)
	}
	l.registerHazards()
	for _, s := range cfg.Level.Creatures {
		if _, err := l.SpawnCreature(s); err != nil {
			output.Close()
			return nil, err
		}
	}

	slog.Info("level ready",
		"engine", cfg.Physics.Engine,
		"seed", seed,
		"liquids", len(l.liquids),
		"creatures", l.creatures,
		"bodies", w.Stats().Bodies,
	)
	return l, nil
}

// Update runs a single tick of the simulation.
func (l *Level) Update() {
	l.perfCollector.StartTick()

	// 1. Run mutations deferred while the world was locked
	l.perfCollector.StartPhase(telemetry.PhaseDrain)
	if n := l.queue.Drain(l.world); n > 0 {
		l.collector.Record(telemetry.NewDeferredDrainedEvent(l.tick, n))
	}

	// 2. Emit, age, clump and damp liquids
	l.perfCollector.StartPhase(telemetry.PhaseLiquids)
	l.updateLiquids()

	// 3. Drive locomotion and step creatures
	l.perfCollector.StartPhase(telemetry.PhaseCreatures)
	l.updateCreatures()

	// 4. Physics
	l.perfCollector.StartPhase(telemetry.PhasePhysics)
	l.world.Step(l.dt)

	// 5. Apply damage from contacts reported during the step
	l.perfCollector.StartPhase(telemetry.PhaseHazards)
	l.resolveHazards()

	// 6. Tear down creatures that finished fading
	l.perfCollector.StartPhase(telemetry.PhaseCleanup)
	l.cleanupDone()

	l.tick++

	l.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	l.flushTelemetry()

	l.perfCollector.EndTick()
}

// Unload tears down every creature and liquid, removes the ground and closes
// output files.
func (l *Level) Unload() error {
	var toRemove []ecs.Entity
	query := l.creatureFilter.Query()
	for query.Next() {
		toRemove = append(toRemove, query.Entity())
	}
	for _, e := range toRemove {
		l.removeCreature(e)
	}

	lq := l.liquidFilter.Query()
	for lq.Next() {
		ref, _ := lq.Get()
		ref.Field.Clear()
	}

	l.queue.Drain(l.world)
	for _, s := range l.ground {
		l.world.RemoveShape(s)
	}
	l.ground = nil

	return l.output.Close()
}

// SetStatsCallback registers fn to receive every flushed stats window.
func (l *Level) SetStatsCallback(fn func(telemetry.WindowStats)) {
	l.statsCallback = fn
}

// Tick returns the current simulation tick.
func (l *Level) Tick() int32 {
	return l.tick
}

// World returns the physics world.
func (l *Level) World() physics.World {
	return l.world
}

// Queue returns the deferred-mutation queue drained at the start of each tick.
func (l *Level) Queue() *physics.Queue {
	return l.queue
}

// Liquid returns the field of the named liquid, or nil.
func (l *Level) Liquid(name string) *liquid.Field {
	e, ok := l.liquids[name]
	if !ok {
		return nil
	}
	ref, _ := l.liquidMapper.Get(e)
	return ref.Field
}

// CreatureCount returns the number of live creatures.
func (l *Level) CreatureCount() int {
	return l.creatures
}

// Creatures returns every live creature body.
func (l *Level) Creatures() []*creature.Body {
	bodies := make([]*creature.Body, 0, l.creatures)
	query := l.creatureFilter.Query()
	for query.Next() {
		ref, _, _, _, _ := query.Get()
		bodies = append(bodies, ref.Body)
	}
	return bodies
}

// Health returns the health of the creature owning body, and whether it was found.
func (l *Level) Health(body *creature.Body) (components.Health, bool) {
	var h components.Health
	found := false
	query := l.creatureFilter.Query()
	for query.Next() {
		ref, _, _, health, _ := query.Get()
		if ref.Body == body {
			h, found = *health, true
		}
	}
	return h, found
}
