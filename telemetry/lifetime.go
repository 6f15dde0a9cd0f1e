package telemetry

// LifetimeStats tracks one creature from construction to teardown.
type LifetimeStats struct {
	EntityID        uint32  `csv:"entity"`
	Kind            string  `csv:"kind"`
	BirthTick       int32   `csv:"birth_tick"`
	DeathTick       int32   `csv:"death_tick"`   // tick health ran out; -1 if it never did
	RemovedTick     int32   `csv:"removed_tick"` // tick the creature was torn down
	SurvivalTimeSec float64 `csv:"survival_sec"`

	HazardContacts int     `csv:"hazard_contacts"`
	DamageTaken    float64 `csv:"damage_taken"`
	PeakLifecycle  float64 `csv:"peak_lifecycle"`
	Distance       float64 `csv:"distance"` // path length of the central body
}

// LifetimeTracker manages per-creature lifetime statistics.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for a newly built creature.
func (lt *LifetimeTracker) Register(entityID uint32, kind string, birthTick int32) {
	lt.stats[entityID] = &LifetimeStats{
		EntityID:  entityID,
		Kind:      kind,
		BirthTick: birthTick,
		DeathTick: -1,
	}
}

// Get returns the lifetime stats for an entity, or nil if not found.
func (lt *LifetimeTracker) Get(entityID uint32) *LifetimeStats {
	return lt.stats[entityID]
}

// RecordHazard adds one damaging contact.
func (lt *LifetimeTracker) RecordHazard(entityID uint32, damage float64) {
	if s := lt.stats[entityID]; s != nil {
		s.HazardContacts++
		s.DamageTaken += damage
	}
}

// RecordDeath marks the tick a creature's health ran out.
func (lt *LifetimeTracker) RecordDeath(entityID uint32, tick int32) {
	if s := lt.stats[entityID]; s != nil && s.DeathTick < 0 {
		s.DeathTick = tick
	}
}

// Update tracks peak lifecycle and accumulates distance travelled this tick.
func (lt *LifetimeTracker) Update(entityID uint32, lifecycle, moved float64) {
	if s := lt.stats[entityID]; s != nil {
		if lifecycle > s.PeakLifecycle {
			s.PeakLifecycle = lifecycle
		}
		s.Distance += moved
	}
}

// Remove finalizes and forgets an entity's stats, returning them for output.
func (lt *LifetimeTracker) Remove(entityID uint32, tick int32, dt float64) *LifetimeStats {
	s := lt.stats[entityID]
	if s == nil {
		return nil
	}
	delete(lt.stats, entityID)
	s.RemovedTick = tick
	s.SurvivalTimeSec = float64(tick-s.BirthTick) * dt
	return s
}

// Count returns the number of tracked creatures.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}
