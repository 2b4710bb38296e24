package telemetry

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ranger/components"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 5; i++ {
		q.Push(Event{Type: EventAnimalAttacked, Tick: int32(i)})
	}
	if q.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", q.Len())
	}

	got := q.Consume()
	for i, e := range got {
		if e.Tick != int32(i) {
			t.Errorf("event %d tick = %d, want %d", i, e.Tick, i)
		}
	}
	if q.Len() != 0 {
		t.Errorf("Len() after Consume = %d, want 0", q.Len())
	}
	if q.Consume() != nil {
		t.Error("Consume on empty queue should return nil")
	}
}

func TestQueueDrainProcessesFollowUps(t *testing.T) {
	w := ecs.NewWorld()
	posMap := ecs.NewMap1[components.Position](w)
	poacher := posMap.NewEntity(&components.Position{})
	animal := posMap.NewEntity(&components.Position{})

	q := NewQueue()
	q.Push(NewAnimalAttackedEvent(1, poacher, animal, 40))

	var seen []EventType
	n := q.Drain(func(e Event) {
		seen = append(seen, e.Type)
		if e.Type == EventAnimalAttacked {
			q.Push(NewAnimalKilledEvent(e.Tick, e.Agent, e.Other))
		}
	})

	if n != 2 {
		t.Fatalf("Drain handled %d events, want 2", n)
	}
	if seen[0] != EventAnimalAttacked || seen[1] != EventAnimalKilled {
		t.Errorf("order = %v, want [attacked killed]", seen)
	}
}

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		typ  EventType
		want string
	}{
		{EventAnimalAttacked, "animal_attacked"},
		{EventPoacherCaptured, "poacher_captured"},
		{EventAnimalLost, "animal_lost"},
		{EventType(200), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}
