package game

// Options holds per-run settings that are not part of the config file.
type Options struct {
	Seed           int64   // RNG seed for wander noise and emitters
	LogStats       bool    // log each stats window through slog
	StatsWindowSec float64 // 0 = use config
	OutputDir      string  // CSV output directory; empty = disabled
}

// DefaultOptions returns options for a quiet run with the level's configured seed.
func DefaultOptions() Options {
	return Options{}
}
