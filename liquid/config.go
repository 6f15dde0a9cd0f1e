// Package liquid simulates pools of free particles (acid, lava) that age,
// grow and shrink, cohere through a clumping force, and expire.
package liquid

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ShamylZakariya/Surfacer-sub000/physics"
)

// InjuryType tags the kind of damage a hazard field inflicts.
type InjuryType uint8

const (
	InjuryNone InjuryType = iota
	InjuryAcid
	InjuryFire
)

func (t InjuryType) String() string {
	switch t {
	case InjuryNone:
		return "none"
	case InjuryAcid:
		return "acid"
	case InjuryFire:
		return "fire"
	}
	return fmt.Sprintf("InjuryType(%d)", t)
}

// ParseInjury maps a config name to an InjuryType.
func ParseInjury(name string) (InjuryType, error) {
	switch name {
	case "", "none":
		return InjuryNone, nil
	case "acid":
		return InjuryAcid, nil
	case "fire", "lava":
		return InjuryFire, nil
	}
	return InjuryNone, fmt.Errorf("unknown injury type %q", name)
}

// Attack is the damage a hazard field deals per second of contact.
type Attack struct {
	Strength float64
	Injury   InjuryType
}

// Config is the field-level parameter block, set once before the first Step.
type Config struct {
	Density       float64
	Friction      float64
	Elasticity    float64
	ClumpingForce float64
	Filter        physics.Filter
	ContactTag    uint32
	Attack        Attack
}

// DefaultConfig returns a non-hazardous, mildly cohesive field.
func DefaultConfig() Config {
	return Config{
		Density:       1,
		Friction:      0.1,
		Elasticity:    0,
		ClumpingForce: 10,
		Filter:        physics.FilterAll,
	}
}

// ParticleSpec describes a particle at spawn time. Zero Density, Friction or
// Elasticity fall back to the field's Config; a zero VisualRadiusScale is 1.
// A Lifespan of zero or less makes the particle immortal.
type ParticleSpec struct {
	Position          r2.Vec
	Velocity          r2.Vec
	Radius            float64
	Density           float64
	Friction          float64
	Elasticity        float64
	VisualRadiusScale float64
	LinearDamping     float64
	AngularDamping    float64
	Lifespan          float64
	EntranceDuration  float64
	ExitDuration      float64
}
