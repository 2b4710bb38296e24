package game

import (
	"github.com/pthm-cable/ranger/config"
	"github.com/pthm-cable/ranger/optimizer"
	"github.com/pthm-cable/ranger/telemetry"
)

// Options configures a game instance.
type Options struct {
	Config *config.Config // nil = config.Cfg()
	Seed   int64          // 0 = time-based

	// Optimizer is reused when set, so learning carries across episodes.
	// Otherwise one is built from Config.Sim.Optimizer.
	Optimizer optimizer.DroneOptimizer

	RunID   string // empty = fresh uuid
	Episode int

	LogStats      bool
	LogEvents     bool
	OutputDir     string // CSV/JSON output, empty = disabled
	SnapshotDir   string // end-of-run snapshot, empty = disabled
	StatsCallback func(telemetry.WindowStats)
}
