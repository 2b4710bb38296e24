package game

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ranger/components"
	"github.com/pthm-cable/ranger/systems"
	"github.com/pthm-cable/ranger/telemetry"
)

// Step advances the simulation by one tick. It is a no-op once the run is
// done.
func (g *Game) Step() {
	if g.done {
		return
	}
	w := g.world
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseSpatialGrid)
	w.RebuildGrid()

	g.perfCollector.StartPhase(telemetry.PhasePerception)
	w.Perceive()

	g.perfCollector.StartPhase(telemetry.PhaseAnimals)
	w.StepAgents(components.KindAnimal)

	g.perfCollector.StartPhase(telemetry.PhasePoachers)
	w.StepAgents(components.KindPoacher)

	g.perfCollector.StartPhase(telemetry.PhaseDroneScan)
	w.RebuildGrid()
	drones, animals, poachers := g.scanDrones()

	g.perfCollector.StartPhase(telemetry.PhaseOptimizer)
	actions := g.opt.Optimize(drones, animals, poachers)
	for _, d := range drones {
		a := actions[d.Entity]
		w.Command(d.Entity, a.NextState, a.Direction, a.SpeedModifier)
	}

	g.perfCollector.StartPhase(telemetry.PhaseDrones)
	w.StepAgents(components.KindDrone)
	g.recordDroneModes()

	g.perfCollector.StartPhase(telemetry.PhaseEvents)
	w.Events().Drain(g.handleEvent)
	w.Advance()
	g.checkEnd()

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// scanDrones builds the optimizer inputs: every active drone, plus the union
// of what the fleet currently sees. Coverage changes raise detected/lost
// events.
func (g *Game) scanDrones() ([]systems.DroneView, []systems.Target, []systems.Target) {
	w := g.world
	active := w.Active(components.KindDrone)
	views := make([]systems.DroneView, 0, len(active))

	var animals, poachers []ecs.Entity
	detector := make(map[ecs.Entity]ecs.Entity)
	add := func(list []ecs.Entity, ds []systems.Detection, drone ecs.Entity) []ecs.Entity {
		for _, d := range ds {
			if _, ok := detector[d.Agent]; ok {
				continue
			}
			detector[d.Agent] = drone
			list = append(list, d.Agent)
		}
		return list
	}

	for _, e := range active {
		views = append(views, w.DroneView(e))
		seenAnimals, seenPoachers := w.DroneScan(e)
		animals = add(animals, seenAnimals, e)
		poachers = add(poachers, seenPoachers, e)

		drone := w.Drone(e)
		if len(seenPoachers) > 0 {
			drone.Target = seenPoachers[0].Agent
			drone.HasTarget = true
		} else {
			drone.Target = ecs.Entity{}
			drone.HasTarget = false
		}
	}

	tick := w.Tick()
	g.diffCoverage(g.seenAnimals, animals, func(e ecs.Entity) telemetry.Event {
		return telemetry.NewAnimalDetectedEvent(tick, detector[e], e)
	}, func(e ecs.Entity) telemetry.Event {
		return telemetry.NewAnimalLostEvent(tick, e)
	})
	g.diffCoverage(g.seenPoachers, poachers, func(e ecs.Entity) telemetry.Event {
		return telemetry.NewPoacherDetectedEvent(tick, detector[e], e)
	}, func(e ecs.Entity) telemetry.Event {
		return telemetry.NewPoacherLostEvent(tick, e)
	})
	g.seenAnimals = animals
	g.seenPoachers = poachers

	return views, g.targets(animals), g.targets(poachers)
}

// diffCoverage emits found for agents entering coverage and lost for agents
// leaving it. Agents that left because they turned terminal are dropped
// silently.
func (g *Game) diffCoverage(before, after []ecs.Entity, found, lost func(ecs.Entity) telemetry.Event) {
	now := make(map[ecs.Entity]bool, len(after))
	for _, e := range after {
		now[e] = true
	}
	was := make(map[ecs.Entity]bool, len(before))
	for _, e := range before {
		was[e] = true
		if !now[e] && !g.world.IsTerminal(e) {
			g.world.Emit(lost(e))
		}
	}
	for _, e := range after {
		if !was[e] {
			g.world.Emit(found(e))
		}
	}
}

func (g *Game) targets(es []ecs.Entity) []systems.Target {
	out := make([]systems.Target, len(es))
	for i, e := range es {
		out[i] = g.world.TargetView(e)
	}
	return out
}

func (g *Game) recordDroneModes() {
	for _, e := range g.world.Active(components.KindDrone) {
		deep := g.world.DroneView(e).Mode == systems.ModeDeep
		g.collector.RecordDroneTick(deep)
		g.droneTicks++
		if deep {
			g.deepTicks++
			g.lifetimeTracker.RecordDeepTick(uint32(e.ID()))
		}
	}
}

// handleEvent applies the consequences of one drained event.
func (g *Game) handleEvent(e telemetry.Event) {
	w := g.world
	switch e.Type {
	case telemetry.EventAnimalAttacked:
		if w.IsTerminal(e.Other) {
			return
		}
		a := w.Animal(e.Other)
		if a.Health <= 0 {
			// already dying this tick
			return
		}
		g.attacks++
		a.Health -= e.Amount
		if a.Health <= 0 {
			a.Health = 0
			w.Emit(telemetry.NewAnimalKilledEvent(e.Tick, e.Agent, e.Other))
		}
	case telemetry.EventAnimalKilled:
		if w.IsTerminal(e.Other) {
			return
		}
		w.MarkTerminal(e.Other, systems.NewDead())
		w.Poacher(e.Agent).Kills++
		g.kills++
		slog.Info("animal killed", "tick", e.Tick, "poacher", w.Identity(e.Agent).Name, "animal", w.Identity(e.Other).Name)
	case telemetry.EventPoacherCaptured:
		if w.IsTerminal(e.Other) {
			return
		}
		w.MarkTerminal(e.Other, systems.NewCaptured())
		w.Drone(e.Agent).Captures++
		g.captures++
		if g.firstCapture < 0 {
			g.firstCapture = e.Tick
		}
		slog.Info("poacher captured", "tick", e.Tick, "drone", w.Identity(e.Agent).Name, "poacher", w.Identity(e.Other).Name)
	case telemetry.EventPoacherDetected, telemetry.EventAnimalDetected:
		g.detections++
	}

	g.collector.RecordEvent(e)
	g.lifetimeTracker.RecordEvent(e)
	if g.logEvents {
		slog.Debug("event", "event", e)
	}
}

// checkEnd records the first end condition reached.
func (g *Game) checkEnd() {
	_, animals, poachers := g.world.Census()
	switch {
	case poachers == 0:
		g.outcome = telemetry.OutcomeCaptured
	case animals == 0:
		g.outcome = telemetry.OutcomeAnimalsDead
	case int(g.world.Tick()) >= g.cfg.Sim.MaxTicks:
		g.outcome = telemetry.OutcomeTickBudget
	default:
		return
	}
	g.done = true
	slog.Info("episode ended", "tick", g.world.Tick(), "outcome", g.outcome)
}
