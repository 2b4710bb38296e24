// Package game runs the headless simulation loop.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ranger/config"
	"github.com/pthm-cable/ranger/optimizer"
	"github.com/pthm-cable/ranger/systems"
	"github.com/pthm-cable/ranger/telemetry"
)

// Game holds the complete run state.
type Game struct {
	cfg     *config.Config
	rng     *rand.Rand
	rngSeed int64
	world   *systems.World
	opt     optimizer.DroneOptimizer

	runID   string
	episode int

	// Drone coverage: agents seen by any drone last tick, in detection order.
	seenAnimals  []ecs.Entity
	seenPoachers []ecs.Entity

	// Telemetry
	collector       *telemetry.Collector
	perfCollector   *telemetry.PerfCollector
	lifetimeTracker *telemetry.LifetimeTracker
	outputManager   *telemetry.OutputManager
	snapshotDir     string
	logStats        bool
	logEvents       bool
	statsCallback   func(telemetry.WindowStats)

	// Run totals
	captures     int
	kills        int
	attacks      int
	detections   int
	deepTicks    int
	droneTicks   int
	firstCapture int32

	done    bool
	outcome string
}

// New creates a game, spawns the configured scenario and attaches the
// optimizer. It fails on an invalid config, an unknown optimizer name or an
// unusable output dir.
func New(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	runID := opts.RunID
	if runID == "" {
		runID = telemetry.NewRunID()
	}

	g := &Game{
		cfg:             cfg,
		rng:             rng,
		rngSeed:         seed,
		world:           systems.NewWorld(cfg, rng),
		runID:           runID,
		episode:         opts.Episode,
		collector:       telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perfCollector:   telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		lifetimeTracker: telemetry.NewLifetimeTracker(),
		snapshotDir:     opts.SnapshotDir,
		logStats:        opts.LogStats,
		logEvents:       opts.LogEvents,
		statsCallback:   opts.StatsCallback,
		firstCapture:    -1,
	}

	g.opt = opts.Optimizer
	if g.opt == nil {
		opt, err := optimizer.New(cfg.Sim.Optimizer, cfg, rng, g.world)
		if err != nil {
			return nil, fmt.Errorf("creating optimizer: %w", err)
		}
		g.opt = opt
	} else {
		g.opt.Attach(g.world, rng)
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	g.spawnScenario()
	return g, nil
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.world.Tick()
}

// World returns the agent world.
func (g *Game) World() *systems.World {
	return g.world
}

// Optimizer returns the drone optimizer.
func (g *Game) Optimizer() optimizer.DroneOptimizer {
	return g.opt
}

// Seed returns the seed of the run's random source.
func (g *Game) Seed() int64 {
	return g.rngSeed
}

// Done reports whether an end condition has been reached.
func (g *Game) Done() bool {
	return g.done
}

// Outcome returns the end condition, or "" while the run continues.
func (g *Game) Outcome() string {
	return g.outcome
}

// Run steps until an end condition and returns the episode summary.
func (g *Game) Run() telemetry.EpisodeSummary {
	slog.Info("episode started",
		"run_id", g.runID,
		"episode", g.episode,
		"seed", g.rngSeed,
		"optimizer", g.opt.Name(),
		"max_ticks", g.cfg.Sim.MaxTicks,
	)
	for !g.done {
		g.Step()
	}
	return g.finish()
}

// Close flushes output files.
func (g *Game) Close() error {
	return g.outputManager.Close()
}
