package optimizer

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ranger/config"
	"github.com/pthm-cable/ranger/systems"
	"github.com/pthm-cable/ranger/telemetry"
)

// CaptureProbability returns the chance that a deep-search drone at distance
// d captures a poacher: 1 at d=0, falling linearly to floor at threshold, and
// 0 beyond it.
func CaptureProbability(d, threshold, floor float64) float64 {
	if d < 0 {
		d = 0
	}
	if d > threshold {
		return 0
	}
	return 1 - (d/threshold)*(1-floor)
}

// catcher runs the stochastic capture check shared by both optimizers.
type catcher struct {
	cfg  config.CaptureConfig
	rng  *rand.Rand
	host Host

	// poachers captured during the current Optimize call
	taken map[ecs.Entity]bool
}

func newCatcher(cfg config.CaptureConfig, rng *rand.Rand, host Host) catcher {
	return catcher{cfg: cfg, rng: rng, host: host, taken: make(map[ecs.Entity]bool)}
}

// begin starts a new Optimize call.
func (c *catcher) begin() {
	clear(c.taken)
}

// try rolls for each poacher within the capture threshold of a deep-search
// drone and stops at the first success, raising a capture event.
func (c *catcher) try(drone systems.DroneView, poachers []systems.Target) (ecs.Entity, bool) {
	if drone.Mode != systems.ModeDeep {
		return ecs.Entity{}, false
	}
	for _, p := range poachers {
		if c.taken[p.Entity] {
			continue
		}
		d := drone.Pos.DistanceTo(p.Pos)
		if d > c.cfg.Threshold {
			continue
		}
		if c.rng.Float64() < CaptureProbability(d, c.cfg.Threshold, c.cfg.Floor) {
			c.taken[p.Entity] = true
			if c.host != nil {
				c.host.Emit(telemetry.NewPoacherCapturedEvent(c.host.Tick(), drone.Entity, p.Entity, c.cfg.Reward))
			}
			return p.Entity, true
		}
	}
	return ecs.Entity{}, false
}
