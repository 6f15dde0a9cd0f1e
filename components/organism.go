package components

// Health tracks damage taken by a creature from hazards.
// A creature whose Value reaches zero is finished and fades out.
type Health struct {
	Value float64
	Max   float64
	Dead  bool
}

// Fraction returns Value/Max, or 0 when Max is not positive.
func (h Health) Fraction() float64 {
	if h.Max <= 0 {
		return 0
	}
	return h.Value / h.Max
}

// Locomotion holds a creature's wander state. Desired is the noise-driven
// target speed; Speed and Vel are the smoothed speed and its rate of change.
type Locomotion struct {
	Seed     float64
	MaxSpeed float64
	Desired  float64
	Speed    float64
	Vel      float64
}
