// Package components defines ECS components for the simulation.
package components

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ranger/geom"
)

// Drone holds drone-specific data. Heading and Speed are the last command
// received from the optimizer.
type Drone struct {
	Target    ecs.Entity
	HasTarget bool
	Heading   geom.Vector2
	Speed     float64 // speed multiplier in [0,1]
	Captures  int
}

// Animal holds herd animal data. Herd and Threat are refreshed by perception
// every tick.
type Animal struct {
	Herd        []ecs.Entity
	Threat      ecs.Entity
	HasThreat   bool
	Health      float64
	ThreatRange float64
	Separation  float64
}

// Poacher holds poacher data.
type Poacher struct {
	Target       ecs.Entity
	HasTarget    bool
	Memory       Memory
	AttackRange  float64
	KillRange    float64
	AttackDamage float64
	Kills        int
}
