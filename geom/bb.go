package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// BB is an axis-aligned bounding box in world units.
// An invalid (empty) box has L > R.
type BB struct {
	L, B, R, T float64
}

// InvalidBB returns an empty box that any Expand call will replace.
func InvalidBB() BB {
	return BB{L: math.Inf(1), B: math.Inf(1), R: math.Inf(-1), T: math.Inf(-1)}
}

// ForCircle returns the box enclosing a circle.
func ForCircle(center r2.Vec, radius float64) BB {
	return BB{
		L: center.X - radius,
		B: center.Y - radius,
		R: center.X + radius,
		T: center.Y + radius,
	}
}

// Valid reports whether the box encloses anything.
func (bb BB) Valid() bool {
	return bb.L <= bb.R && bb.B <= bb.T
}

// Expand returns the union of bb and other. Invalid boxes are ignored.
func (bb BB) Expand(other BB) BB {
	if !other.Valid() {
		return bb
	}
	if !bb.Valid() {
		return other
	}
	return BB{
		L: math.Min(bb.L, other.L),
		B: math.Min(bb.B, other.B),
		R: math.Max(bb.R, other.R),
		T: math.Max(bb.T, other.T),
	}
}

// Center returns the center of the box.
func (bb BB) Center() r2.Vec {
	return r2.Vec{X: (bb.L + bb.R) * 0.5, Y: (bb.B + bb.T) * 0.5}
}

// Width returns the horizontal extent, 0 for an invalid box.
func (bb BB) Width() float64 {
	if !bb.Valid() {
		return 0
	}
	return bb.R - bb.L
}

// Height returns the vertical extent, 0 for an invalid box.
func (bb BB) Height() float64 {
	if !bb.Valid() {
		return 0
	}
	return bb.T - bb.B
}

// Intersects reports whether two valid boxes overlap.
func (bb BB) Intersects(other BB) bool {
	if !bb.Valid() || !other.Valid() {
		return false
	}
	return bb.L <= other.R && other.L <= bb.R && bb.B <= other.T && other.B <= bb.T
}

// Contains reports whether p lies inside the box.
func (bb BB) Contains(p r2.Vec) bool {
	return p.X >= bb.L && p.X <= bb.R && p.Y >= bb.B && p.Y <= bb.T
}
