package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ranger/components"
)

// candidates returns the active agents of kind that could fall within e's
// effective scan range, in spawn order.
func (w *World) candidates(e ecs.Entity, kind components.Kind) []ecs.Entity {
	return w.Nearby(kind, w.Position(e), w.ScanRange(e))
}

// PerceiveAnimal refreshes an animal's herd (every visible herd-mate) and its
// threat (nearest visible poacher).
func (w *World) PerceiveAnimal(e ecs.Entity) {
	if w.IsTerminal(e) {
		return
	}
	a := w.Animal(e)

	mates := w.ScanSurroundings(e, w.candidates(e, components.KindAnimal), ScanAll)
	a.Herd = a.Herd[:0]
	for _, d := range mates {
		a.Herd = append(a.Herd, d.Agent)
	}

	if threat, ok := w.Nearest(e, w.candidates(e, components.KindPoacher)); ok {
		a.Threat = threat.Agent
		a.HasThreat = true
	} else {
		a.Threat = ecs.Entity{}
		a.HasThreat = false
	}
}

// PerceivePoacher keeps a poacher's target while it stays alive and visible;
// a lost target's last position goes to memory. A poacher without a target
// acquires the nearest visible animal.
func (w *World) PerceivePoacher(e ecs.Entity) {
	if w.IsTerminal(e) {
		return
	}
	p := w.Poacher(e)
	pos := w.Position(e)

	if p.HasTarget {
		last := w.Position(p.Target)
		if w.IsTerminal(p.Target) || pos.DistanceTo(last) > w.ScanRange(e) {
			if !w.IsTerminal(p.Target) {
				p.Memory.Remember(last, w.tick)
			}
			p.Target = ecs.Entity{}
			p.HasTarget = false
		}
	}
	if p.HasTarget {
		return
	}

	if prey, ok := w.Nearest(e, w.candidates(e, components.KindAnimal)); ok {
		p.Target = prey.Agent
		p.HasTarget = true
		p.Memory.Remember(w.Position(prey.Agent), w.tick)
	}
}

// DroneScan returns the animals and poachers within a drone's effective scan
// range, nearest first.
func (w *World) DroneScan(e ecs.Entity) (animals, poachers []Detection) {
	animals = w.ScanSurroundings(e, w.candidates(e, components.KindAnimal), ScanAll)
	poachers = w.ScanSurroundings(e, w.candidates(e, components.KindPoacher), ScanAll)
	return animals, poachers
}

// Perceive refreshes every active animal and poacher, animals first.
func (w *World) Perceive() {
	for _, e := range w.agents[components.KindAnimal] {
		w.PerceiveAnimal(e)
	}
	for _, e := range w.agents[components.KindPoacher] {
		w.PerceivePoacher(e)
	}
}
