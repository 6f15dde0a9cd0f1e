// Package creature builds and drives jelly-like soft-body creatures: a ring or
// sack of circular segments tethered to a central body, retuned every tick
// from a lifecycle scalar and pushed along by rotary motors.
package creature

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ShamylZakariya/Surfacer-sub000/lifecycle"
	"github.com/ShamylZakariya/Surfacer-sub000/physics"
)

// Topology is the constraint graph a creature is built with.
type Topology uint8

const (
	// RadialTethered is a ring of segments sprung and slide-jointed to a
	// motorized center, closed by a perimeter of slide joints.
	RadialTethered Topology = iota
	// ChainMotorized is a loose sack of individually motorized segments
	// slide-jointed to a center locked at a fixed angle.
	ChainMotorized
)

func (t Topology) String() string {
	switch t {
	case RadialTethered:
		return "radial_tethered"
	case ChainMotorized:
		return "chain_motorized"
	}
	return fmt.Sprintf("Topology(%d)", t)
}

// ParseTopology accepts a topology name or its creature kind alias.
func ParseTopology(name string) (Topology, error) {
	switch name {
	case "radial_tethered", "protoplasmic":
		return RadialTethered, nil
	case "chain_motorized", "amorphous":
		return ChainMotorized, nil
	}
	return 0, fmt.Errorf("unknown creature topology %q", name)
}

// Params is the creature's parameter block, fixed at build time.
type Params struct {
	Topology      Topology
	Position      r2.Vec
	Radius        float64 // ring radius of segment template offsets
	NumParticles  int
	SegmentRadius float64
	CentralRadius float64

	Density    float64
	Friction   float64
	Elasticity float64

	SpringStiffness float64
	SpringDamping   float64
	MotorMaxForce   float64

	PulsePeriod    float64 // seconds; zero disables the pulse
	PulseMagnitude float64

	Lifecycle  lifecycle.Mode
	Filter     physics.Filter
	ContactTag uint32
}

// DefaultParams returns a complete parameter block for a topology.
func DefaultParams(t Topology) Params {
	p := Params{
		Topology:        t,
		Radius:          2,
		NumParticles:    12,
		SegmentRadius:   0.5,
		CentralRadius:   0.75,
		Density:         1,
		Friction:        1,
		Elasticity:      0.1,
		SpringStiffness: 200,
		SpringDamping:   5,
		MotorMaxForce:   5000,
		PulsePeriod:     2,
		PulseMagnitude:  0.1,
		Lifecycle:       lifecycle.SelfTimed(1, 1),
		Filter:          physics.FilterAll,
	}
	if t == ChainMotorized {
		p.NumParticles = 8
		p.SegmentRadius = 0.8
		p.SpringStiffness = 0
		p.PulseMagnitude = 0.05
	}
	return p
}

// Circumference returns the distance rolled per motor revolution.
func (p Params) Circumference() float64 {
	return 2 * math.Pi * p.Radius
}
