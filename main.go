package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/ShamylZakariya/Surfacer-sub000/config"
	"github.com/ShamylZakariya/Surfacer-sub000/game"
	"github.com/ShamylZakariya/Surfacer-sub000/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	logState := flag.Bool("log-state", false, "Log per-entity state at every stats window")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = level seed)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = use config)")
	engine := flag.String("engine", "", "Physics engine: chipmunk or box2d (empty = use config)")

	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *engine != "" {
		cfg.Physics.Engine = *engine
	}

	world, err := game.NewPhysicsWorld(cfg)
	if err != nil {
		slog.Error("failed to create physics world", "error", err)
		os.Exit(1)
	}

	dir := cfg.Telemetry.OutputDir
	if *outputDir != "" {
		dir = *outputDir
	}
	opts := game.Options{
		Seed:           *seed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      dir,
	}

	level, err := game.NewLevel(cfg, world, opts)
	if err != nil {
		slog.Error("failed to build level", "error", err)
		os.Exit(1)
	}
	if *logState {
		level.SetStatsCallback(func(_ telemetry.WindowStats) { level.LogState() })
	}

	limit := cfg.Level.MaxTicks
	if *maxTicks > 0 {
		limit = *maxTicks
	}

	slog.Info("starting simulation",
		"engine", cfg.Physics.Engine,
		"max_ticks", limit,
	)

	for limit <= 0 || int(level.Tick()) < limit {
		level.Update()
	}
	slog.Info("max ticks reached", "tick", level.Tick(), "creatures", level.CreatureCount())

	if err := level.Unload(); err != nil {
		slog.Error("failed to close output", "error", err)
		os.Exit(1)
	}
}
