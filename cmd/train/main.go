// Package main trains the Q-learning drone controller over repeated episodes,
// saving the model after each one.
package main

import (
	"errors"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/pthm-cable/ranger/config"
	"github.com/pthm-cable/ranger/game"
	"github.com/pthm-cable/ranger/optimizer"
	"github.com/pthm-cable/ranger/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	episodes := flag.Int("episodes", 100, "Number of training episodes")
	seed := flag.Int64("seed", 0, "Base RNG seed (0 = time-based)")
	modelPath := flag.String("model", "rl_model.json", "Model file, loaded if present and saved after every episode")
	outputDir := flag.String("output-dir", "", "Directory for episodes.csv (empty = disabled)")
	maxTicks := flag.Int("max-ticks", 0, "Tick budget per episode (0 = use config)")
	stopOnCapture := flag.Int("stop-after", 0, "Stop after N consecutive capturing episodes (0 = never)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	cfg.Sim.Optimizer = config.OptimizerRL
	if *maxTicks > 0 {
		cfg.Sim.MaxTicks = *maxTicks
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	baseSeed := *seed
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}

	rl := optimizer.NewRL(cfg, rand.New(rand.NewSource(baseSeed)), nil)
	if _, err := os.Stat(*modelPath); err == nil {
		rl.LoadOrFresh(*modelPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		slog.Warn("cannot stat model, starting fresh", "path", *modelPath, "error", err)
	}

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output", "error", err)
		os.Exit(1)
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	runID := telemetry.NewRunID()
	streak := 0
	start := time.Now()

	for ep := 1; ep <= *episodes; ep++ {
		g, err := game.New(game.Options{
			Config:    cfg,
			Seed:      baseSeed + int64(ep),
			Optimizer: rl,
			RunID:     runID,
			Episode:   ep,
		})
		if err != nil {
			slog.Error("failed to start episode", "episode", ep, "error", err)
			os.Exit(1)
		}
		summary := g.Run()
		g.Close()

		if err := om.WriteEpisode(summary); err != nil {
			slog.Error("failed to write episode", "error", err)
		}
		if err := rl.Save(*modelPath); err != nil {
			slog.Error("failed to save model", "path", *modelPath, "error", err)
			os.Exit(1)
		}
		slog.Info("episode trained", "episode", ep, "captured", summary.Captured(), "metrics", rl.Metrics())

		if summary.Captured() {
			streak++
		} else {
			streak = 0
		}
		if *stopOnCapture > 0 && streak >= *stopOnCapture {
			slog.Info("capture streak reached", "episodes", ep, "streak", streak)
			break
		}
	}

	slog.Info("training complete", "elapsed", time.Since(start).Round(time.Second).String(), "model", *modelPath)
}
