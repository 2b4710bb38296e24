package game

import (
	"log/slog"

	"github.com/pthm-cable/ranger/components"
	"github.com/pthm-cable/ranger/optimizer"
	"github.com/pthm-cable/ranger/systems"
	"github.com/pthm-cable/ranger/telemetry"
)

// flushTelemetry checks if the stats window should be flushed.
func (g *Game) flushTelemetry() {
	tick := g.world.Tick()
	if !g.collector.ShouldFlush(tick) {
		return
	}

	drones, animals, poachers := g.world.Census()
	census := telemetry.Census{Drones: drones, Animals: animals, Poachers: poachers}
	stats := g.collector.Flush(tick, census, g.sampleHealth())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// sampleHealth collects the health of every living animal.
func (g *Game) sampleHealth() []float64 {
	active := g.world.Active(components.KindAnimal)
	out := make([]float64, 0, len(active))
	for _, e := range active {
		out = append(out, g.world.Animal(e).Health)
	}
	return out
}

// Summary describes the run so far.
func (g *Game) Summary() telemetry.EpisodeSummary {
	_, animals, poachers := g.world.Census()
	s := telemetry.EpisodeSummary{
		RunID:            g.runID,
		Episode:          g.episode,
		Seed:             g.rngSeed,
		Optimizer:        g.opt.Name(),
		Ticks:            g.world.Tick(),
		Outcome:          g.outcome,
		Captures:         g.captures,
		FirstCaptureTick: g.firstCapture,
		Kills:            g.kills,
		Attacks:          g.attacks,
		Detections:       g.detections,
		AnimalsAlive:     animals,
		PoachersFree:     poachers,
	}
	if g.droneTicks > 0 {
		s.DeepShare = float64(g.deepTicks) / float64(g.droneTicks)
	}
	if rl, ok := g.opt.(*optimizer.RL); ok {
		m := rl.Metrics()
		s.AvgReward = m.AvgReward
		s.Epsilon = m.Epsilon
		s.States = m.States
	}
	return s
}

// finish writes the end-of-run records and returns the summary.
func (g *Game) finish() telemetry.EpisodeSummary {
	g.lifetimeTracker.UpdateTicks(g.world.Tick())
	summary := g.Summary()
	slog.Info("episode summary", "summary", summary)

	if g.outputManager != nil {
		if err := g.outputManager.WriteEpisode(summary); err != nil {
			slog.Error("failed to write episode", "error", err)
		}
		if err := g.outputManager.WriteSummary(summary); err != nil {
			slog.Error("failed to write summary", "error", err)
		}
	}

	if g.snapshotDir != "" {
		g.saveSnapshot(&summary)
	}
	return summary
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(summary *telemetry.EpisodeSummary) {
	path, err := telemetry.SaveSnapshot(g.createSnapshot(summary), g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", g.world.Tick())
}

// createSnapshot builds a snapshot from the current state.
func (g *Game) createSnapshot(summary *telemetry.EpisodeSummary) *telemetry.Snapshot {
	w := g.world
	snapshot := &telemetry.Snapshot{
		Version:     telemetry.SnapshotVersion,
		RunID:       g.runID,
		RNGSeed:     g.rngSeed,
		Optimizer:   g.opt.Name(),
		WorldWidth:  w.Bounds().Width,
		WorldHeight: w.Bounds().Height,
		Tick:        w.Tick(),
		Summary:     summary,
	}

	for _, kind := range []components.Kind{components.KindDrone, components.KindAnimal, components.KindPoacher} {
		for _, e := range w.Agents(kind) {
			ident := w.Identity(e)
			pos := w.Position(e)
			state := telemetry.EntityState{
				ID:       uint32(e.ID()),
				Kind:     kind,
				Name:     ident.Name,
				X:        pos.X,
				Y:        pos.Y,
				State:    w.State(e).Name(),
				Terminal: w.IsTerminal(e),
			}
			switch kind {
			case components.KindDrone:
				if s, ok := w.State(e).(systems.DroneState); ok {
					state.Mode = s.Mode().String()
				}
			case components.KindAnimal:
				state.Health = w.Animal(e).Health
			}
			if ls := g.lifetimeTracker.Get(uint32(e.ID())); ls != nil {
				state.Lifetime = ls.ToJSON()
			}
			snapshot.Entities = append(snapshot.Entities, state)
		}
	}

	return snapshot
}
