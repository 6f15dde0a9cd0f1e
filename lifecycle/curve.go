// Package lifecycle holds the birth/death ramps shared by liquid particles and
// creatures: the radius-for-age curve and the lifecycle scalar clock.
package lifecycle

import (
	"math"

	"github.com/ShamylZakariya/Surfacer-sub000/geom"
)

const (
	// EntranceFloor is the fraction of the base radius a particle pops in at.
	EntranceFloor = 0.5
	// ExitFloor is the smallest fraction of the base radius reached while
	// fading out. Never zero, so shapes stay non-degenerate until removal.
	ExitFloor = 0.01
)

// RadiusForAge maps an age onto the current radius of something with the
// given lifespan and entrance/exit ramp durations.
//
// During the entrance it grows linearly from half size, during the exit it
// shrinks toward ExitFloor*baseRadius, and in between it is baseRadius.
// A lifespan <= 0 is treated as infinite.
func RadiusForAge(age, lifespan, entrance, exit, baseRadius float64) float64 {
	if lifespan <= 0 {
		lifespan = math.Inf(1)
	}

	if age < entrance {
		if entrance <= 0 {
			return baseRadius
		}
		return math.Max(baseRadius*age/entrance, EntranceFloor*baseRadius)
	}

	exitStart := lifespan - exit
	if age > exitStart {
		if exit <= 0 {
			return ExitFloor * baseRadius
		}
		t := 1 - geom.Saturate((age-exitStart)/exit)
		return math.Max(baseRadius*t, ExitFloor*baseRadius)
	}

	return baseRadius
}

// Expired reports whether age has passed a finite lifespan.
func Expired(age, lifespan float64) bool {
	return lifespan > 0 && age > lifespan
}
