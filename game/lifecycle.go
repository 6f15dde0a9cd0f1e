package game

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/ShamylZakariya/Surfacer-sub000/telemetry"
)

// cleanupDone removes creatures whose lifecycle has fully faded.
func (l *Level) cleanupDone() {
	// First pass: collect (must complete before modifying the world)
	var toRemove []ecs.Entity

	query := l.creatureFilter.Query()
	for query.Next() {
		ref, _, _, _, _ := query.Get()
		if ref.Body.Done() {
			toRemove = append(toRemove, query.Entity())
		}
	}

	// Second pass: tear down (query iteration complete)
	for _, e := range toRemove {
		l.removeCreature(e)
	}
}

// removeCreature tears down the creature's physics and deletes its entity.
func (l *Level) removeCreature(e ecs.Entity) {
	ref := l.creatureMap.Get(e)
	ref.Body.Teardown()

	stats := l.lifetimes.Remove(ref.ID, l.tick, l.dt)
	if err := l.output.WriteLifetime(stats); err != nil {
		slog.Error("failed to write lifetime", "error", err)
	}
	l.collector.Record(telemetry.NewCreatureRemovedEvent(l.tick, ref.ID, ref.Kind))

	slog.Debug("creature removed", "id", ref.ID, "kind", ref.Kind, "tick", l.tick)
	l.ecs.RemoveEntity(e)
	l.creatures--
}
