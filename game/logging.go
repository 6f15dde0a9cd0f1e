package game

import (
	"log/slog"
)

// LogState writes one debug line per liquid and creature.
func (l *Level) LogState() {
	slog.Info("level state",
		"tick", l.tick,
		"sim_time", float64(l.tick)*l.dt,
		"creatures", l.creatures,
		"pending", l.queue.Len(),
	)

	lq := l.liquidFilter.Query()
	for lq.Next() {
		ref, ext := lq.Get()
		spawned, expired := ref.Field.Counts()
		slog.Debug("liquid",
			"name", ref.Name,
			"particles", ref.Field.ParticleCount(),
			"spawned", spawned,
			"expired", expired,
			"emitters", len(ref.Emitters),
			"bb", ext.BB,
		)
	}

	cq := l.creatureFilter.Query()
	for cq.Next() {
		ref, tr, _, health, loco := cq.Get()
		slog.Debug("creature",
			"id", ref.ID,
			"kind", ref.Kind,
			"x", tr.Position.X,
			"y", tr.Position.Y,
			"lifecycle", ref.Body.Lifecycle(),
			"health", health.Value,
			"speed", loco.Speed,
			"finished", ref.Body.Finished(),
		)
	}
}
