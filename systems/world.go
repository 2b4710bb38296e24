// Package systems provides the agent world, state machines, movement and perception.
package systems

import (
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ranger/components"
	"github.com/pthm-cable/ranger/config"
	"github.com/pthm-cable/ranger/geom"
	"github.com/pthm-cable/ranger/telemetry"
)

// World owns the ECS world and every agent in it.
type World struct {
	cfg    *config.Config
	world  *ecs.World
	rng    *rand.Rand
	bounds geom.Bounds
	events *telemetry.Queue
	tick   int32

	agentMapper *ecs.Map5[
		components.Identity,
		components.Position,
		components.Motion,
		components.Status,
		Behavior,
	]
	statusFilter *ecs.Filter2[components.Identity, components.Status]

	idMap       *ecs.Map1[components.Identity]
	posMap      *ecs.Map1[components.Position]
	motionMap   *ecs.Map1[components.Motion]
	statusMap   *ecs.Map1[components.Status]
	behaviorMap *ecs.Map1[Behavior]

	droneMap   *ecs.Map[components.Drone]
	animalMap  *ecs.Map[components.Animal]
	poacherMap *ecs.Map[components.Poacher]

	// Agents by kind in spawn order.
	agents [3][]ecs.Entity
	nextID uint32

	grid *SpatialGrid
}

// NewWorld creates an empty world using cfg for field size and agent
// parameters. rng is the single random source for every stochastic decision.
func NewWorld(cfg *config.Config, rng *rand.Rand) *World {
	world := ecs.NewWorld()
	bounds := geom.Bounds{Width: cfg.World.Width, Height: cfg.World.Height}

	return &World{
		cfg:    cfg,
		world:  world,
		rng:    rng,
		bounds: bounds,
		events: telemetry.NewQueue(),
		agentMapper: ecs.NewMap5[
			components.Identity,
			components.Position,
			components.Motion,
			components.Status,
			Behavior,
		](world),
		statusFilter: ecs.NewFilter2[components.Identity, components.Status](world),
		idMap:        ecs.NewMap1[components.Identity](world),
		posMap:       ecs.NewMap1[components.Position](world),
		motionMap:    ecs.NewMap1[components.Motion](world),
		statusMap:    ecs.NewMap1[components.Status](world),
		behaviorMap:  ecs.NewMap1[Behavior](world),
		droneMap:     ecs.NewMap[components.Drone](world),
		animalMap:    ecs.NewMap[components.Animal](world),
		poacherMap:   ecs.NewMap[components.Poacher](world),
		grid:         NewSpatialGrid(bounds.Width, bounds.Height, cfg.World.GridCellSize),
	}
}

// spawn creates the shared components of an agent and enters its initial state.
func (w *World) spawn(kind components.Kind, pos geom.Vector2, motion components.Motion) ecs.Entity {
	id := w.nextID
	w.nextID++

	ident := components.Identity{
		ID:    id,
		Order: int(id),
		Name:  fmt.Sprintf("%s-%d", kind, len(w.agents[kind])),
		Kind:  kind,
	}
	p := components.Position{Vector2: pos.Clamp(w.bounds)}
	status := components.Status{}
	behavior := Behavior{}

	e := w.agentMapper.NewEntity(&ident, &p, &motion, &status, &behavior)
	w.agents[kind] = append(w.agents[kind], e)
	return e
}

// SpawnDrone adds a drone in wide-search mode.
func (w *World) SpawnDrone(pos geom.Vector2) ecs.Entity {
	c := w.cfg.Drone
	e := w.spawn(components.KindDrone, pos, components.Motion{BaseSpeed: c.Speed, ScanRange: c.ScanRange})
	w.droneMap.Add(e, &components.Drone{Speed: 1})
	w.SetState(e, NewWideSearch(w.cfg))
	return e
}

// SpawnAnimal adds a herd animal in the idle state.
func (w *World) SpawnAnimal(pos geom.Vector2) ecs.Entity {
	c := w.cfg.Animal
	e := w.spawn(components.KindAnimal, pos, components.Motion{BaseSpeed: c.Speed, ScanRange: c.ScanRange})
	w.animalMap.Add(e, &components.Animal{
		Health:      c.Health,
		ThreatRange: c.ThreatRange,
		Separation:  c.Separation,
	})
	w.SetState(e, NewAnimalIdle(w.cfg))
	return e
}

// SpawnPoacher adds a poacher in the idle (searching) state.
func (w *World) SpawnPoacher(pos geom.Vector2) ecs.Entity {
	c := w.cfg.Poacher
	e := w.spawn(components.KindPoacher, pos, components.Motion{BaseSpeed: c.Speed, ScanRange: c.ScanRange})
	w.poacherMap.Add(e, &components.Poacher{
		Memory:       components.NewMemory(c.MemorySize),
		AttackRange:  c.AttackRange,
		KillRange:    c.KillRange,
		AttackDamage: c.Damage,
	})
	w.SetState(e, NewPoacherIdle(w.cfg))
	return e
}

// Config returns the world configuration.
func (w *World) Config() *config.Config { return w.cfg }

// Rand returns the shared random source.
func (w *World) Rand() *rand.Rand { return w.rng }

// Bounds returns the field bounds.
func (w *World) Bounds() geom.Bounds { return w.bounds }

// Events returns the event queue.
func (w *World) Events() *telemetry.Queue { return w.events }

// Tick returns the current tick.
func (w *World) Tick() int32 { return w.tick }

// Advance increments the tick counter.
func (w *World) Advance() { w.tick++ }

// Emit pushes e onto the event queue.
func (w *World) Emit(e telemetry.Event) { w.events.Push(e) }

// Agents returns all agents of kind in spawn order, terminal ones included.
func (w *World) Agents(kind components.Kind) []ecs.Entity {
	return w.agents[kind]
}

// Active returns the non-terminal agents of kind in spawn order.
func (w *World) Active(kind components.Kind) []ecs.Entity {
	all := w.agents[kind]
	out := make([]ecs.Entity, 0, len(all))
	for _, e := range all {
		if !w.IsTerminal(e) {
			out = append(out, e)
		}
	}
	return out
}

// Census counts active agents per kind.
func (w *World) Census() (drones, animals, poachers int) {
	query := w.statusFilter.Query()
	for query.Next() {
		ident, status := query.Get()
		if status.Terminal {
			continue
		}
		switch ident.Kind {
		case components.KindDrone:
			drones++
		case components.KindAnimal:
			animals++
		case components.KindPoacher:
			poachers++
		}
	}
	return drones, animals, poachers
}

// Identity returns the identity of e.
func (w *World) Identity(e ecs.Entity) components.Identity {
	return *w.idMap.Get(e)
}

// Position returns the position of e.
func (w *World) Position(e ecs.Entity) geom.Vector2 {
	return w.posMap.Get(e).Vector2
}

// Motion returns the base motion parameters of e.
func (w *World) Motion(e ecs.Entity) components.Motion {
	return *w.motionMap.Get(e)
}

// ScanRange returns the effective scan radius of e under its active state.
func (w *World) ScanRange(e ecs.Entity) float64 {
	return w.motionMap.Get(e).ScanRange * w.State(e).Modifiers().ScanRange
}

// Drone returns the drone component of e.
func (w *World) Drone(e ecs.Entity) *components.Drone { return w.droneMap.Get(e) }

// Animal returns the animal component of e.
func (w *World) Animal(e ecs.Entity) *components.Animal { return w.animalMap.Get(e) }

// Poacher returns the poacher component of e.
func (w *World) Poacher(e ecs.Entity) *components.Poacher { return w.poacherMap.Get(e) }

// IsTerminal reports whether e has reached an absorbing state.
func (w *World) IsTerminal(e ecs.Entity) bool {
	return w.statusMap.Get(e).Terminal
}

// MarkTerminal moves e into the absorbing state and records when.
func (w *World) MarkTerminal(e ecs.Entity, terminal State) {
	status := w.statusMap.Get(e)
	if status.Terminal {
		return
	}
	w.SetState(e, terminal)
	status.Terminal = true
	status.TerminalTick = w.tick
}

// StepAgents runs the state machines of all active agents of kind.
func (w *World) StepAgents(kind components.Kind) {
	for _, e := range w.agents[kind] {
		w.stepAgent(e)
	}
}

// RebuildGrid reindexes active agents for neighbor queries.
func (w *World) RebuildGrid() {
	w.grid.Clear()
	for kind := range w.agents {
		for _, e := range w.agents[kind] {
			if w.IsTerminal(e) {
				continue
			}
			w.grid.Insert(e, w.Position(e), w.Identity(e).Order)
		}
	}
}

// Nearby returns active agents of kind within radius of pos, in spawn order.
// Used to narrow perception candidates.
func (w *World) Nearby(kind components.Kind, pos geom.Vector2, radius float64) []ecs.Entity {
	neighbors := w.grid.QueryRadius(pos, radius, w.posMap)
	out := make([]ecs.Entity, 0, len(neighbors))
	for _, e := range neighbors {
		if w.Identity(e).Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
