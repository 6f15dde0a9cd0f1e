// Package components defines the render snapshot shared by liquids and
// creatures, and the ECS components a level attaches to them.
package components

import "gonum.org/v1/gonum/spatial/r2"

// Particle is one element of a read-only render snapshot.
// Radius is nominal; DrawRadius is what a renderer should draw this tick.
type Particle struct {
	Position   r2.Vec
	Radius     float64
	DrawRadius float64
	Angle      float64
	Opacity    float64 // 0..1 shading hint
}
