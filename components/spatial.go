package components

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ShamylZakariya/Surfacer-sub000/geom"
)

// Transform is an entity's world position and heading, mirrored from its
// physics representation once per tick.
type Transform struct {
	Position r2.Vec
	Angle    float64
}

// Extent is an entity's culling bounds, copied from its last step.
type Extent struct {
	BB geom.BB
}
