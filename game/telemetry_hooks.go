package game

import (
	"log/slog"

	"github.com/ShamylZakariya/Surfacer-sub000/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (l *Level) flushTelemetry() {
	if !l.collector.ShouldFlush(l.tick) {
		return
	}

	stats := l.collector.Flush(l.tick, l.sample())
	perfStats := l.perfCollector.Stats(l.dt)

	if l.statsCallback != nil {
		l.statsCallback(stats)
	}

	if l.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := l.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := l.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range l.bookmarks.Check(stats) {
		if l.logStats {
			bm.LogBookmark()
		}
		if err := l.output.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}

// sample gathers the end-of-window state the collector does not see as events.
func (l *Level) sample() telemetry.Sample {
	var s telemetry.Sample

	var fracSum float64
	lq := l.liquidFilter.Query()
	for lq.Next() {
		ref, _ := lq.Get()
		n := ref.Field.ParticleCount()
		if n == 0 {
			continue
		}
		s.Particles += n
		fracSum += ref.Field.MeanRadiusFraction() * float64(n)
	}
	if s.Particles > 0 {
		s.RadiusFraction = fracSum / float64(s.Particles)
	}

	cq := l.creatureFilter.Query()
	for cq.Next() {
		ref, _, _, health, _ := cq.Get()
		s.Creatures++
		s.Lifecycles = append(s.Lifecycles, ref.Body.Lifecycle())
		s.Health = append(s.Health, health.Fraction())
	}

	ws := l.world.Stats()
	s.Bodies = ws.Bodies
	s.Shapes = ws.Shapes
	s.Constraints = ws.Constraints
	return s
}
