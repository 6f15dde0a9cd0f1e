package telemetry

import (
	"log/slog"
	"sort"
	"time"
)

// Phase is one timed stage of a level tick.
type Phase uint8

// Tick phases in execution order.
const (
	PhaseDrain Phase = iota
	PhaseLiquids
	PhaseCreatures
	PhasePhysics
	PhaseHazards
	PhaseCleanup
	PhaseTelemetry
	numPhases
)

var phaseNames = [numPhases]string{
	"drain", "liquids", "creatures", "physics", "hazards", "cleanup", "telemetry",
}

func (p Phase) String() string {
	if p < numPhases {
		return phaseNames[p]
	}
	return "unknown"
}

// phaseNone marks that no phase is open.
const phaseNone = numPhases

// perfSample holds timing data for a single tick.
type perfSample struct {
	tick   time.Duration
	phases [numPhases]time.Duration
}

// PerfCollector times tick phases over a rolling window of ticks.
type PerfCollector struct {
	ring    []perfSample
	next    int
	filled  int
	current perfSample

	tickStart  time.Time
	phaseStart time.Time
	open       Phase
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		ring: make([]perfSample, windowSize),
		open: phaseNone,
	}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.current = perfSample{}
	p.open = phaseNone
}

// StartPhase closes the open phase, if any, and opens phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phaseStart = now
	p.open = phase
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.open < numPhases {
		p.current.phases[p.open] += now.Sub(p.phaseStart)
	}
	p.open = phaseNone
}

// EndTick closes the open phase and records the tick in the window.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.current.tick = now.Sub(p.tickStart)

	p.ring[p.next] = p.current
	p.next = (p.next + 1) % len(p.ring)
	if p.filled < len(p.ring) {
		p.filled++
	}
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	P90TickDuration time.Duration

	PhaseAvg [numPhases]time.Duration
	PhasePct [numPhases]float64 // share of the average tick, 0..100

	TicksPerSecond float64
	Realtime       float64 // simulated seconds per wall-clock second
}

// Stats aggregates the window. dt is the simulated time per tick.
func (p *PerfCollector) Stats(dt float64) PerfStats {
	var s PerfStats
	if p.filled == 0 {
		return s
	}

	ticks := make([]float64, p.filled)
	var total time.Duration
	var phaseSum [numPhases]time.Duration
	for i, sample := range p.ring[:p.filled] {
		ticks[i] = float64(sample.tick)
		total += sample.tick
		for ph, d := range sample.phases {
			phaseSum[ph] += d
		}
	}
	sort.Float64s(ticks)

	n := time.Duration(p.filled)
	s.AvgTickDuration = total / n
	s.MinTickDuration = time.Duration(ticks[0])
	s.MaxTickDuration = time.Duration(ticks[len(ticks)-1])
	s.P90TickDuration = time.Duration(Percentile(ticks, 0.9))

	for ph := range phaseSum {
		s.PhaseAvg[ph] = phaseSum[ph] / n
		if s.AvgTickDuration > 0 {
			s.PhasePct[ph] = float64(s.PhaseAvg[ph]) / float64(s.AvgTickDuration) * 100
		}
	}

	if s.AvgTickDuration > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	}
	s.Realtime = s.TicksPerSecond * dt
	return s
}

// LogStats logs performance statistics, skipping phases under 0.1%.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"p90_tick_us", s.P90TickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
		"realtime_x", int(s.Realtime*10) / 10.0,
	}
	for ph, pct := range s.PhasePct {
		if pct > 0.1 {
			attrs = append(attrs, Phase(ph).String()+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("p90_tick_us", s.P90TickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
		slog.Float64("realtime_x", s.Realtime),
	}
	for ph, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(Phase(ph).String()+"_pct", pct))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	P90TickUS    int64   `csv:"p90_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	Realtime     float64 `csv:"realtime_x"`
	DrainPct     float64 `csv:"drain_pct"`
	LiquidsPct   float64 `csv:"liquids_pct"`
	CreaturesPct float64 `csv:"creatures_pct"`
	PhysicsPct   float64 `csv:"physics_pct"`
	HazardsPct   float64 `csv:"hazards_pct"`
	CleanupPct   float64 `csv:"cleanup_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens s into a perf.csv row.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		P90TickUS:    s.P90TickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		Realtime:     s.Realtime,
		DrainPct:     s.PhasePct[PhaseDrain],
		LiquidsPct:   s.PhasePct[PhaseLiquids],
		CreaturesPct: s.PhasePct[PhaseCreatures],
		PhysicsPct:   s.PhasePct[PhasePhysics],
		HazardsPct:   s.PhasePct[PhaseHazards],
		CleanupPct:   s.PhasePct[PhaseCleanup],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
