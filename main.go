package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/pthm-cable/ranger/config"
	"github.com/pthm-cable/ranger/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	optimizerName := flag.String("optimizer", "", "Drone optimizer: pso or rl (empty = use config)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	logEvents := flag.Bool("log-events", false, "Log every domain event at debug level")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for the end-of-run snapshot")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	modelPath := flag.String("model", "", "RL model file to load (empty = use config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Tick budget (0 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *logEvents {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *optimizerName != "" {
		cfg.Sim.Optimizer = *optimizerName
	}
	if *maxTicks > 0 {
		cfg.Sim.MaxTicks = *maxTicks
	}
	if *modelPath != "" {
		cfg.RL.ModelPath = *modelPath
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	g, err := game.New(game.Options{
		Config:      cfg,
		Seed:        *seed,
		LogStats:    *logStats,
		LogEvents:   *logEvents,
		SnapshotDir: *snapshotDir,
		OutputDir:   *outputDir,
	})
	if err != nil {
		slog.Error("failed to start game", "error", err)
		os.Exit(1)
	}
	defer g.Close()

	g.Run()
}
