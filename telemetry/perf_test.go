package telemetry

import (
	"testing"
	"time"
)

func runTicks(pc *PerfCollector, n int, phases map[Phase]time.Duration) {
	for i := 0; i < n; i++ {
		pc.StartTick()
		for ph := PhaseDrain; ph < numPhases; ph++ {
			if d, ok := phases[ph]; ok {
				pc.StartPhase(ph)
				time.Sleep(d)
			}
		}
		pc.EndTick()
	}
}

func TestPerfCollectorPhases(t *testing.T) {
	pc := NewPerfCollector(10)
	runTicks(pc, 5, map[Phase]time.Duration{
		PhaseLiquids: 50 * time.Microsecond,
		PhasePhysics: 500 * time.Microsecond,
	})

	stats := pc.Stats(1.0 / 60)
	if stats.AvgTickDuration <= 0 {
		t.Fatal("expected positive average tick duration")
	}
	if stats.PhaseAvg[PhaseLiquids] <= 0 || stats.PhaseAvg[PhasePhysics] <= 0 {
		t.Errorf("phase averages = %v", stats.PhaseAvg)
	}
	if stats.PhaseAvg[PhaseHazards] != 0 {
		t.Errorf("untimed phase = %v, want 0", stats.PhaseAvg[PhaseHazards])
	}
	if stats.PhasePct[PhasePhysics] <= stats.PhasePct[PhaseLiquids] {
		t.Errorf("physics %.1f%% should exceed liquids %.1f%%",
			stats.PhasePct[PhasePhysics], stats.PhasePct[PhaseLiquids])
	}
}

func TestPerfCollectorWindowOrder(t *testing.T) {
	pc := NewPerfCollector(5)
	runTicks(pc, 12, map[Phase]time.Duration{PhaseDrain: 0})

	stats := pc.Stats(1.0 / 60)
	if pc.filled != 5 {
		t.Errorf("filled = %d, want window size 5", pc.filled)
	}
	if !(stats.MinTickDuration <= stats.P90TickDuration && stats.P90TickDuration <= stats.MaxTickDuration) {
		t.Errorf("min %v, p90 %v, max %v out of order",
			stats.MinTickDuration, stats.P90TickDuration, stats.MaxTickDuration)
	}
	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

func TestPerfCollectorEmpty(t *testing.T) {
	stats := NewPerfCollector(10).Stats(1.0 / 60)
	if stats != (PerfStats{}) {
		t.Errorf("empty stats = %+v, want zero", stats)
	}
}

func TestPerfCollectorRealtime(t *testing.T) {
	pc := NewPerfCollector(10)
	runTicks(pc, 3, map[Phase]time.Duration{PhasePhysics: time.Millisecond})

	stats := pc.Stats(0.5)
	if stats.Realtime <= 0 {
		t.Fatal("expected positive realtime factor")
	}
	if want := stats.TicksPerSecond * 0.5; stats.Realtime != want {
		t.Errorf("realtime = %v, want ticks/sec * dt = %v", stats.Realtime, want)
	}

	row := stats.ToCSV(42)
	if row.WindowEnd != 42 || row.PhysicsPct <= 0 {
		t.Errorf("csv row = %+v", row)
	}
}

func TestPhaseString(t *testing.T) {
	if got := PhaseCreatures.String(); got != "creatures" {
		t.Errorf("PhaseCreatures = %q", got)
	}
	if got := Phase(200).String(); got != "unknown" {
		t.Errorf("Phase(200) = %q", got)
	}
}
