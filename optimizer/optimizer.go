// Package optimizer decides, every tick, where each drone flies and which
// search mode it uses.
package optimizer

import (
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ranger/config"
	"github.com/pthm-cable/ranger/geom"
	"github.com/pthm-cable/ranger/systems"
	"github.com/pthm-cable/ranger/telemetry"
)

// ErrUnknownOptimizer is returned by New for an unrecognized name.
var ErrUnknownOptimizer = config.ErrUnknownOptimizer

// Action is one drone decision.
type Action struct {
	NextState     systems.DroneState // nil keeps the current mode
	Direction     geom.Vector2       // unit vector, or zero to hover
	SpeedModifier float64            // in [0,1]
}

// DroneOptimizer maps the current observations to one action per drone.
// Optimize is synchronous and must return before drones move.
type DroneOptimizer interface {
	Name() string
	Optimize(drones []systems.DroneView, animals, poachers []systems.Target) map[ecs.Entity]Action
	// Reset forgets per-episode state. Learned state survives.
	Reset()
	// Attach raises future capture events through host, draws every later
	// random decision from rng and resets.
	Attach(host Host, rng *rand.Rand)
}

// Host is the part of the world an optimizer raises events through.
type Host interface {
	Tick() int32
	Emit(telemetry.Event)
}

// New creates the optimizer registered under name.
func New(name string, cfg *config.Config, rng *rand.Rand, host Host) (DroneOptimizer, error) {
	switch name {
	case config.OptimizerPSO:
		return NewPSO(cfg, rng, host), nil
	case config.OptimizerRL:
		rl := NewRL(cfg, rng, host)
		if cfg.RL.ModelPath != "" {
			rl.LoadOrFresh(cfg.RL.ModelPath)
		}
		return rl, nil
	}
	return nil, fmt.Errorf("optimizer %q: %w", name, ErrUnknownOptimizer)
}

// modeChange returns the state for want, or nil when the drone is already in
// that mode.
func modeChange(cfg *config.Config, current, want systems.SearchMode) systems.DroneState {
	if current == want {
		return nil
	}
	return systems.NewSearchState(cfg, want)
}
