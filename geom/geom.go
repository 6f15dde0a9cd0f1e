// Package geom provides the small amount of 2D math shared by the liquid and
// creature simulations: vector helpers over gonum's r2 and an axis-aligned
// bounding box.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Up is the world up direction (y grows upward, as in the physics world).
var Up = r2.Vec{X: 0, Y: 1}

// Saturate clamps v to the [0, 1] range.
func Saturate(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamp clamps v between lo and hi.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp linearly interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Dist returns the distance between two points.
func Dist(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(b, a))
}

// SafeUnit returns the unit vector of v and its length.
// A zero-length vector yields a zero unit vector instead of NaN.
func SafeUnit(v r2.Vec) (r2.Vec, float64) {
	l := r2.Norm(v)
	if l < 1e-12 {
		return r2.Vec{}, 0
	}
	return r2.Scale(1/l, v), l
}

// Polar returns the point at the given distance and angle from the origin.
func Polar(radius, angle float64) r2.Vec {
	return r2.Vec{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}
}
