package telemetry

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ranger/components"
)

func TestLifetimeTrackerAttributesEvents(t *testing.T) {
	w := ecs.NewWorld()
	posMap := ecs.NewMap1[components.Position](w)
	drone := posMap.NewEntity(&components.Position{})
	animal := posMap.NewEntity(&components.Position{})
	poacher := posMap.NewEntity(&components.Position{})

	lt := NewLifetimeTracker()
	lt.Register(uint32(drone.ID()), components.KindDrone, 0)
	lt.Register(uint32(animal.ID()), components.KindAnimal, 0)
	lt.Register(uint32(poacher.ID()), components.KindPoacher, 0)

	lt.RecordEvent(NewAnimalAttackedEvent(5, poacher, animal, 40))
	lt.RecordEvent(NewAnimalAttackedEvent(15, poacher, animal, 40))
	lt.RecordEvent(NewPoacherDetectedEvent(20, drone, poacher))
	lt.RecordEvent(NewPoacherCapturedEvent(30, drone, poacher, 10))
	lt.RecordDeepTick(uint32(drone.ID()))
	lt.UpdateTicks(50)

	p := lt.Get(uint32(poacher.ID()))
	if p.Attacks != 2 || p.DamageDealt != 80 {
		t.Errorf("poacher attacks/damage = %d/%v, want 2/80", p.Attacks, p.DamageDealt)
	}
	if !p.Ended || p.EndTick != 30 || p.Ticks != 30 {
		t.Errorf("poacher end = %v@%d ticks %d, want ended at 30 after 30 ticks", p.Ended, p.EndTick, p.Ticks)
	}

	a := lt.Get(uint32(animal.ID()))
	if a.DamageTaken != 80 {
		t.Errorf("animal damage taken = %v, want 80", a.DamageTaken)
	}
	if a.Ended || a.Ticks != 50 {
		t.Errorf("animal ended=%v ticks=%d, want active for 50 ticks", a.Ended, a.Ticks)
	}

	d := lt.Get(uint32(drone.ID()))
	if d.Captures != 1 || d.Detections != 1 || d.DeepTicks != 1 {
		t.Errorf("drone captures/detections/deep = %d/%d/%d, want 1/1/1", d.Captures, d.Detections, d.DeepTicks)
	}

	if n := lt.ActiveCount(components.KindPoacher); n != 0 {
		t.Errorf("ActiveCount(poacher) = %d, want 0", n)
	}
	if n := lt.ActiveCount(components.KindAnimal); n != 1 {
		t.Errorf("ActiveCount(animal) = %d, want 1", n)
	}
}

func TestLifetimeTrackerIgnoresUnknownAgents(t *testing.T) {
	lt := NewLifetimeTracker()
	var none ecs.Entity
	lt.RecordEvent(NewAnimalKilledEvent(1, none, none))
	lt.RecordDeepTick(99)
	if lt.Count() != 0 {
		t.Errorf("Count() = %d, want 0", lt.Count())
	}
}
