package liquid

import (
	"github.com/ShamylZakariya/Surfacer-sub000/lifecycle"
	"github.com/ShamylZakariya/Surfacer-sub000/physics"
)

// Particle owns one body and one circle shape in the physics world.
type Particle struct {
	body  physics.BodyID
	shape physics.ShapeID

	radius            float64
	currentRadius     float64
	visualRadiusScale float64
	linearDamping     float64
	angularDamping    float64
	lifespan          float64
	age               float64
	entranceDuration  float64
	exitDuration      float64

	resized bool
}

// Body returns the particle's physics body.
func (p *Particle) Body() physics.BodyID { return p.body }

// Shape returns the particle's physics shape.
func (p *Particle) Shape() physics.ShapeID { return p.shape }

// Radius returns the nominal radius.
func (p *Particle) Radius() float64 { return p.radius }

// CurrentRadius returns the lifecycle-scaled radius, 0 < CurrentRadius <= Radius.
func (p *Particle) CurrentRadius() float64 { return p.currentRadius }

// DrawRadius returns CurrentRadius scaled by the visual radius scale.
func (p *Particle) DrawRadius() float64 { return p.currentRadius * p.visualRadiusScale }

// Age returns seconds since spawn.
func (p *Particle) Age() float64 { return p.age }

// Lifespan returns the particle's lifespan; zero or less is immortal.
func (p *Particle) Lifespan() float64 { return p.lifespan }

func (p *Particle) radiusForAge() float64 {
	return lifecycle.RadiusForAge(p.age, p.lifespan, p.entranceDuration, p.exitDuration, p.radius)
}
