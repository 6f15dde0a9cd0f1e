// Package telemetry provides simulation health tracking, bookmarking and CSV output.
package telemetry

// EventType identifies telemetry events.
type EventType uint8

const (
	EventCreatureBuilt EventType = iota
	EventCreatureKilled
	EventCreatureRemoved
	EventHazardContact
	EventParticlesSpawned
	EventParticlesExpired
	EventDeferredDrained
)

func (t EventType) String() string {
	switch t {
	case EventCreatureBuilt:
		return "creature_built"
	case EventCreatureKilled:
		return "creature_killed"
	case EventCreatureRemoved:
		return "creature_removed"
	case EventHazardContact:
		return "hazard_contact"
	case EventParticlesSpawned:
		return "particles_spawned"
	case EventParticlesExpired:
		return "particles_expired"
	case EventDeferredDrained:
		return "deferred_drained"
	}
	return "unknown"
}

// Event represents a single telemetry event.
type Event struct {
	Type     EventType
	Tick     int32
	EntityID uint32
	Name     string // creature kind or liquid name

	// Optional fields depending on event type
	Count  int     // particles spawned/expired, actions drained
	Amount float64 // damage dealt by a hazard contact
}

// NewCreatureBuiltEvent creates a creature construction event.
func NewCreatureBuiltEvent(tick int32, entityID uint32, kind string) Event {
	return Event{Type: EventCreatureBuilt, Tick: tick, EntityID: entityID, Name: kind}
}

// NewCreatureKilledEvent creates an event for a creature whose health ran out.
func NewCreatureKilledEvent(tick int32, entityID uint32, kind string) Event {
	return Event{Type: EventCreatureKilled, Tick: tick, EntityID: entityID, Name: kind}
}

// NewCreatureRemovedEvent creates an event for a torn-down creature.
func NewCreatureRemovedEvent(tick int32, entityID uint32, kind string) Event {
	return Event{Type: EventCreatureRemoved, Tick: tick, EntityID: entityID, Name: kind}
}

// NewHazardContactEvent creates an event for damage dealt by a liquid to a creature.
func NewHazardContactEvent(tick int32, entityID uint32, liquid string, damage float64) Event {
	return Event{Type: EventHazardContact, Tick: tick, EntityID: entityID, Name: liquid, Amount: damage}
}

// NewParticlesSpawnedEvent creates a spawn event for a liquid.
func NewParticlesSpawnedEvent(tick int32, liquid string, n int) Event {
	return Event{Type: EventParticlesSpawned, Tick: tick, Name: liquid, Count: n}
}

// NewParticlesExpiredEvent creates an expiry event for a liquid.
func NewParticlesExpiredEvent(tick int32, liquid string, n int) Event {
	return Event{Type: EventParticlesExpired, Tick: tick, Name: liquid, Count: n}
}

// NewDeferredDrainedEvent records how many queued world mutations ran this tick.
func NewDeferredDrainedEvent(tick int32, n int) Event {
	return Event{Type: EventDeferredDrained, Tick: tick, Count: n}
}
