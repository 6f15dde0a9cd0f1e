package main

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ShamylZakariya/Surfacer-sub000/config"
	"github.com/ShamylZakariya/Surfacer-sub000/physics"
	"github.com/ShamylZakariya/Surfacer-sub000/physics/physicstest"
)

func TestScore(t *testing.T) {
	r := &settleResult{
		spawned: 8,
		positions: []r2.Vec{
			{X: 1}, {X: -1}, {Y: 1}, {Y: -1},
		},
	}
	spread, retained := score(r, 2)
	if retained != 0.5 {
		t.Errorf("retained = %v, want 0.5", retained)
	}
	// Every point is 1 from the centroid: mean 1, std 0.
	if math.Abs(spread-0.5) > 1e-12 {
		t.Errorf("spread = %v, want 0.5", spread)
	}

	if s, k := score(&settleResult{}, 1); s != 0 || k != 0 {
		t.Errorf("empty score = %v, %v", s, k)
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv, err := NewParamVector(cfg, "acid")
	if err != nil {
		t.Fatal(err)
	}
	if pv.Specs[0].Default != cfg.Liquids["acid"].ClumpingForce {
		t.Errorf("default clumping = %v, want config value", pv.Specs[0].Default)
	}

	pv.ApplyToConfig(cfg, []float64{500, -1, 0.5})
	lc := cfg.Liquids["acid"]
	if lc.ClumpingForce != 200 {
		t.Errorf("clumping = %v, want clamped 200", lc.ClumpingForce)
	}
	if lc.Particle.LinearDamping != 0 {
		t.Errorf("linear damping = %v, want clamped 0", lc.Particle.LinearDamping)
	}
	if lc.Particle.AngularDamping != 0.5 {
		t.Errorf("angular damping = %v, want 0.5", lc.Particle.AngularDamping)
	}

	if _, err := NewParamVector(cfg, "mercury"); err == nil {
		t.Error("expected error for unknown liquid")
	}
}

func TestEvaluateReleasesWorld(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv, err := NewParamVector(cfg, "acid")
	if err != nil {
		t.Fatal(err)
	}

	var worlds []*physicstest.World
	fe := NewFitnessEvaluator(pv, "")
	fe.newWorld = func(*config.Config) (physics.World, error) {
		w := physicstest.New()
		worlds = append(worlds, w)
		return w, nil
	}

	// No collisions in the fake world: clumping would tunnel particles apart.
	x := pv.DefaultVector()
	x[0] = 0
	fitness := fe.Evaluate(x)
	if math.IsInf(fitness, 0) || math.IsNaN(fitness) {
		t.Fatalf("fitness = %v", fitness)
	}
	spread, retained := fe.LastResult()
	if retained != 1 {
		t.Errorf("retained = %v, want 1 at rest", retained)
	}
	if spread <= 0 {
		t.Errorf("spread = %v, want positive", spread)
	}

	if len(worlds) != 1 {
		t.Fatalf("worlds = %d, want 1", len(worlds))
	}
	if got := worlds[0].Stats(); got != (physics.Stats{}) {
		t.Errorf("stats after evaluate = %+v, want zero", got)
	}
}
