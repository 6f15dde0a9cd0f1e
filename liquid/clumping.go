package liquid

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ShamylZakariya/Surfacer-sub000/geom"
	"github.com/ShamylZakariya/Surfacer-sub000/physics"
)

// ClumpingForceField pulls same-field particles toward a preferred
// separation band just outside contact.
type ClumpingForceField struct {
	world  physics.World
	force  float64
	filter physics.Filter
	lookup func(physics.ShapeID) *Particle
}

// NewClumpingForceField returns a field applying force to particles found by
// lookup. Shapes lookup does not recognize are ignored.
func NewClumpingForceField(w physics.World, force float64, categories uint32, lookup func(physics.ShapeID) *Particle) *ClumpingForceField {
	return &ClumpingForceField{
		world:  w,
		force:  force,
		filter: physics.Filter{Categories: ^uint32(0), Mask: categories},
		lookup: lookup,
	}
}

// Force returns the field magnitude.
func (c *ClumpingForceField) Force() float64 { return c.force }

// SetForce changes the field magnitude.
func (c *ClumpingForceField) SetForce(force float64) { c.force = force }

// BandScale returns the force scale for two particles with summed radius
// minDist at separation d. It rises 0 to 1 from minDist to the band middle,
// then falls back to 0 at 1.5*minDist, and is 0 outside that range.
func BandScale(d, minDist float64) float64 {
	maxDist := 1.5 * minDist
	if d <= minDist || d >= maxDist {
		return 0
	}
	mid := (minDist + maxDist) / 2
	if d <= mid {
		return (d - minDist) / (mid - minDist)
	}
	return (maxDist - d) / (maxDist - mid)
}

// Apply queries the broad-phase around p and applies equal and opposite
// impulses between p and each neighbor inside the band.
func (c *ClumpingForceField) Apply(p *Particle, dt float64) {
	if c.force <= 0 {
		return
	}
	w := c.world
	posA := w.Position(p.body)
	massA := w.Mass(p.body)
	query := geom.ForCircle(posA, 2*p.currentRadius)

	w.BBQuery(query, c.filter, func(s physics.ShapeID) {
		if s == p.shape {
			return
		}
		q := c.lookup(s)
		if q == nil {
			return
		}
		posB := w.Position(q.body)
		dir, d := geom.SafeUnit(r2.Sub(posB, posA))
		scale := BandScale(d, p.currentRadius+q.currentRadius)
		if scale == 0 {
			return
		}
		k := 0.5 * c.force * dt * scale
		w.ApplyImpulse(p.body, r2.Scale(k*massA, dir), posA)
		w.ApplyImpulse(q.body, r2.Scale(-k*w.Mass(q.body), dir), posB)
	})
}
