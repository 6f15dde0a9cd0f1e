package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Liquids at window end, plus flow during the window
	Particles        int     `csv:"particles"`
	ParticlesSpawned int     `csv:"particles_spawned"`
	ParticlesExpired int     `csv:"particles_expired"`
	RadiusFraction   float64 `csv:"radius_fraction"`

	// Creatures at window end, plus events during the window
	Creatures        int `csv:"creatures"`
	CreaturesBuilt   int `csv:"creatures_built"`
	CreaturesKilled  int `csv:"creatures_killed"`
	CreaturesRemoved int `csv:"creatures_removed"`

	// Hazards
	HazardContacts int     `csv:"hazard_contacts"`
	Damage         float64 `csv:"damage"`

	// Lifecycle distribution (sampled at window end)
	LifecycleMean float64 `csv:"lifecycle_mean"`
	LifecycleP10  float64 `csv:"lifecycle_p10"`
	LifecycleP50  float64 `csv:"lifecycle_p50"`
	LifecycleP90  float64 `csv:"lifecycle_p90"`

	HealthMean float64 `csv:"health_mean"`
	HealthStd  float64 `csv:"health_std"`

	// Live physics handles; these return to the level baseline when nothing leaks
	Bodies      int `csv:"bodies"`
	Shapes      int `csv:"shapes"`
	Constraints int `csv:"constraints"`
	Drained     int `csv:"drained"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution calculates mean and percentiles of values.
func ComputeDistribution(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return mean, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// ComputeSpread calculates mean, population std, and percentiles of values.
func ComputeSpread(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return mean, std, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Int("particles_spawned", s.ParticlesSpawned),
		slog.Int("particles_expired", s.ParticlesExpired),
		slog.Float64("radius_fraction", s.RadiusFraction),
		slog.Int("creatures", s.Creatures),
		slog.Int("creatures_built", s.CreaturesBuilt),
		slog.Int("creatures_killed", s.CreaturesKilled),
		slog.Int("creatures_removed", s.CreaturesRemoved),
		slog.Int("hazard_contacts", s.HazardContacts),
		slog.Float64("damage", s.Damage),
		slog.Float64("lifecycle_mean", s.LifecycleMean),
		slog.Float64("lifecycle_p10", s.LifecycleP10),
		slog.Float64("lifecycle_p50", s.LifecycleP50),
		slog.Float64("lifecycle_p90", s.LifecycleP90),
		slog.Float64("health_mean", s.HealthMean),
		slog.Float64("health_std", s.HealthStd),
		slog.Int("bodies", s.Bodies),
		slog.Int("shapes", s.Shapes),
		slog.Int("constraints", s.Constraints),
		slog.Int("drained", s.Drained),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
