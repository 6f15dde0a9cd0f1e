package liquid

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ShamylZakariya/Surfacer-sub000/geom"
)

// Emitter spawns particles into a field at a steady rate, each placed
// uniformly within Jitter of the spec position.
type Emitter struct {
	Spec   ParticleSpec
	Rate   float64 // particles per second
	Jitter float64

	rng   *rand.Rand
	accum float64
}

// NewEmitter returns an emitter seeded for reproducible placement.
func NewEmitter(spec ParticleSpec, rate, jitter float64, seed int64) *Emitter {
	return &Emitter{
		Spec:   spec,
		Rate:   rate,
		Jitter: jitter,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Emit spawns the particles due after dt seconds and returns how many.
func (e *Emitter) Emit(f *Field, dt float64) int {
	if e.Rate <= 0 {
		return 0
	}
	e.accum += e.Rate * dt
	n := int(math.Floor(e.accum))
	e.accum -= float64(n)

	for i := 0; i < n; i++ {
		s := e.Spec
		if e.Jitter > 0 {
			r := e.Jitter * math.Sqrt(e.rng.Float64())
			s.Position = r2.Add(s.Position, geom.Polar(r, 2*math.Pi*e.rng.Float64()))
		}
		f.Spawn(s)
	}
	return n
}
