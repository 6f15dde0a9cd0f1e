package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/ShamylZakariya/Surfacer-sub000/config"
	"github.com/ShamylZakariya/Surfacer-sub000/game"
	"github.com/ShamylZakariya/Surfacer-sub000/geom"
	"github.com/ShamylZakariya/Surfacer-sub000/liquid"
	"github.com/ShamylZakariya/Surfacer-sub000/physics"
)

// floorHalfWidth is half the length of the floor the pool settles on.
const floorHalfWidth = 100

// lossWeight scales the penalty for particles that fell off or expired.
const lossWeight = 2.0

// FitnessEvaluator settles a circular fill and scores how compact it stays.
type FitnessEvaluator struct {
	params     *ParamVector
	configPath string
	newWorld   func(*config.Config) (physics.World, error)

	mu         sync.Mutex
	lastSpread float64
	lastRetain float64
}

// NewFitnessEvaluator creates a new evaluator. Every evaluation reloads the
// config from configPath so runs never share mutable state.
func NewFitnessEvaluator(params *ParamVector, configPath string) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		configPath: configPath,
		newWorld:   game.NewPhysicsWorld,
	}
}

// LastResult returns the spread and retained fraction of the most recent run.
func (fe *FitnessEvaluator) LastResult() (spread, retained float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSpread, fe.lastRetain
}

// settleResult is the state of a fill after settling.
type settleResult struct {
	spawned   int
	positions []r2.Vec
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg, err := config.Load(fe.configPath)
	if err != nil {
		return math.Inf(1)
	}
	fe.params.ApplyToConfig(cfg, x)

	r, err := fe.settle(cfg)
	if err != nil {
		return math.Inf(1)
	}
	spread, retained := score(r, cfg.Tuning.FillRadius)
	fitness := spread + lossWeight*(1-retained)

	fe.mu.Lock()
	fe.lastSpread, fe.lastRetain = spread, retained
	fe.mu.Unlock()
	return fitness
}

// settle fills a pool of the tuned liquid on a flat floor and steps it for
// cfg.Tuning.Settle seconds.
func (fe *FitnessEvaluator) settle(cfg *config.Config) (*settleResult, error) {
	w, err := fe.newWorld(cfg)
	if err != nil {
		return nil, err
	}
	lc := cfg.Liquids[fe.params.Liquid]
	fc, err := lc.FieldConfig()
	if err != nil {
		return nil, err
	}

	floor := w.AddSegment(w.StaticBody(), physics.SegmentDef{
		A:        r2.Vec{X: -floorHalfWidth},
		B:        r2.Vec{X: floorHalfWidth},
		Radius:   0.5,
		Friction: 1,
		Filter:   physics.FilterAll,
	})

	field := liquid.NewField(w, fc, liquid.WithName(fe.params.Liquid))
	radius := cfg.Tuning.FillRadius
	center := r2.Vec{Y: radius + 1}
	spawned := field.SpawnCircularFill(lc.ParticleSpec(center), center, radius)

	dt := cfg.Physics.DT
	ticks := int(cfg.Tuning.Settle / dt)
	for i := 0; i < ticks; i++ {
		field.Step(dt)
		w.Step(dt)
	}

	r := &settleResult{spawned: spawned}
	for _, p := range field.Live() {
		pos := w.Position(p.Body())
		if pos.Y < -1 {
			continue // fell off the floor
		}
		r.positions = append(r.positions, pos)
	}

	field.Clear()
	w.RemoveShape(floor)
	return r, nil
}

// score returns the spread of the settled pool in units of the fill radius
// (mean plus standard deviation of distance to the centroid) and the fraction
// of spawned particles still on the floor.
func score(r *settleResult, fillRadius float64) (spread, retained float64) {
	if r.spawned == 0 || len(r.positions) == 0 {
		return 0, 0
	}
	retained = float64(len(r.positions)) / float64(r.spawned)

	var centroid r2.Vec
	for _, p := range r.positions {
		centroid = r2.Add(centroid, p)
	}
	centroid = r2.Scale(1/float64(len(r.positions)), centroid)

	dists := make([]float64, len(r.positions))
	for i, p := range r.positions {
		dists[i] = geom.Dist(p, centroid)
	}
	mean, std := stat.PopMeanStdDev(dists, nil)
	if fillRadius <= 0 {
		fillRadius = 1
	}
	return (mean + std) / fillRadius, retained
}
