package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ranger/components"
	"github.com/pthm-cable/ranger/config"
	"github.com/pthm-cable/ranger/geom"
)

// spawnScenario creates the configured drones, herd and poachers. Fixed
// spawn points are used first, the rest are placed at random.
func (g *Game) spawnScenario() {
	cfg := g.cfg
	bounds := g.world.Bounds()

	for i := 0; i < cfg.Drone.Count; i++ {
		pos, ok := spawnPoint(cfg.Drone.Spawn, i)
		if !ok {
			pos = g.randomPoint(bounds)
		}
		g.register(g.world.SpawnDrone(pos), components.KindDrone)
	}

	center := bounds.Center()
	for i := 0; i < cfg.Animal.Count; i++ {
		pos, ok := spawnPoint(cfg.Animal.Spawn, i)
		if !ok {
			pos = center.Add(g.randomInDisk(cfg.Animal.SpawnRadius))
		}
		g.register(g.world.SpawnAnimal(pos), components.KindAnimal)
	}

	for i := 0; i < cfg.Poacher.Count; i++ {
		pos, ok := spawnPoint(cfg.Poacher.Spawn, i)
		if !ok {
			pos = g.randomPoint(bounds)
		}
		g.register(g.world.SpawnPoacher(pos), components.KindPoacher)
	}
}

func (g *Game) register(e ecs.Entity, kind components.Kind) {
	g.lifetimeTracker.Register(uint32(e.ID()), kind, g.world.Tick())
}

func spawnPoint(points []config.Point, i int) (geom.Vector2, bool) {
	if i >= len(points) {
		return geom.Vector2{}, false
	}
	return geom.V(points[i].X, points[i].Y), true
}

func (g *Game) randomPoint(b geom.Bounds) geom.Vector2 {
	return geom.V(g.rng.Float64()*b.Width, g.rng.Float64()*b.Height)
}

// randomInDisk returns a uniform offset within radius r.
func (g *Game) randomInDisk(r float64) geom.Vector2 {
	angle := g.rng.Float64() * 2 * math.Pi
	dist := r * math.Sqrt(g.rng.Float64())
	return geom.FromAngle(angle).Scale(dist)
}
