package telemetry

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	creaturesBuilt   int
	creaturesKilled  int
	creaturesRemoved int
	hazardContacts   int
	damage           float64
	particlesSpawned int
	particlesExpired int
	drained          int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Record folds an event into the current window.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventCreatureBuilt:
		c.creaturesBuilt++
	case EventCreatureKilled:
		c.creaturesKilled++
	case EventCreatureRemoved:
		c.creaturesRemoved++
	case EventHazardContact:
		c.hazardContacts++
		c.damage += ev.Amount
	case EventParticlesSpawned:
		c.particlesSpawned += ev.Count
	case EventParticlesExpired:
		c.particlesExpired += ev.Count
	case EventDeferredDrained:
		c.drained += ev.Count
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Sample is the level state observed at the end of a window.
type Sample struct {
	Particles      int
	RadiusFraction float64 // mean current/base radius over all particles
	Creatures      int
	Lifecycles     []float64
	Health         []float64 // health fractions of live creatures

	Bodies      int
	Shapes      int
	Constraints int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, s Sample) WindowStats {
	lcMean, lcP10, lcP50, lcP90 := ComputeDistribution(s.Lifecycles)
	hMean, hStd, _, _, _ := ComputeSpread(s.Health)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Particles:        s.Particles,
		ParticlesSpawned: c.particlesSpawned,
		ParticlesExpired: c.particlesExpired,
		RadiusFraction:   s.RadiusFraction,

		Creatures:        s.Creatures,
		CreaturesBuilt:   c.creaturesBuilt,
		CreaturesKilled:  c.creaturesKilled,
		CreaturesRemoved: c.creaturesRemoved,

		HazardContacts: c.hazardContacts,
		Damage:         c.damage,

		LifecycleMean: lcMean,
		LifecycleP10:  lcP10,
		LifecycleP50:  lcP50,
		LifecycleP90:  lcP90,
		HealthMean:    hMean,
		HealthStd:     hStd,

		Bodies:      s.Bodies,
		Shapes:      s.Shapes,
		Constraints: s.Constraints,
		Drained:     c.drained,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.creaturesBuilt = 0
	c.creaturesKilled = 0
	c.creaturesRemoved = 0
	c.hazardContacts = 0
	c.damage = 0
	c.particlesSpawned = 0
	c.particlesExpired = 0
	c.drained = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
