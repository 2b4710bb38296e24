// Package telemetry provides domain events, run statistics, CSV output and snapshots.
package telemetry

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"
)

// EventType identifies domain events.
type EventType uint8

const (
	EventAnimalAttacked EventType = iota
	EventAnimalKilled
	EventPoacherDetected
	EventPoacherCaptured
	EventPoacherLost
	EventAnimalDetected
	EventAnimalLost
)

var eventNames = [...]string{
	EventAnimalAttacked:  "animal_attacked",
	EventAnimalKilled:    "animal_killed",
	EventPoacherDetected: "poacher_detected",
	EventPoacherCaptured: "poacher_captured",
	EventPoacherLost:     "poacher_lost",
	EventAnimalDetected:  "animal_detected",
	EventAnimalLost:      "animal_lost",
}

// String returns the snake_case event name.
func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// Event is a single domain event. Agent is the acting agent, Other the
// affected one (if any).
type Event struct {
	Type     EventType
	Tick     int32
	Agent    ecs.Entity
	Other    ecs.Entity
	HasOther bool

	// Optional fields depending on event type
	Amount float64 // damage for attacks, bookkeeping reward for captures
}

// LogValue implements slog.LogValuer for structured logging.
func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("type", e.Type.String()),
		slog.Int("tick", int(e.Tick)),
		slog.Int("agent", int(e.Agent.ID())),
	}
	if e.HasOther {
		attrs = append(attrs, slog.Int("other", int(e.Other.ID())))
	}
	if e.Amount != 0 {
		attrs = append(attrs, slog.Float64("amount", e.Amount))
	}
	return slog.GroupValue(attrs...)
}

// NewAnimalAttackedEvent creates a damage event from a poacher to an animal.
func NewAnimalAttackedEvent(tick int32, poacher, animal ecs.Entity, damage float64) Event {
	return Event{
		Type:     EventAnimalAttacked,
		Tick:     tick,
		Agent:    poacher,
		Other:    animal,
		HasOther: true,
		Amount:   damage,
	}
}

// NewAnimalKilledEvent creates a kill event (animal health reached zero).
func NewAnimalKilledEvent(tick int32, poacher, animal ecs.Entity) Event {
	return Event{
		Type:     EventAnimalKilled,
		Tick:     tick,
		Agent:    poacher,
		Other:    animal,
		HasOther: true,
	}
}

// NewPoacherDetectedEvent creates an event for a poacher entering drone coverage.
func NewPoacherDetectedEvent(tick int32, drone, poacher ecs.Entity) Event {
	return Event{
		Type:     EventPoacherDetected,
		Tick:     tick,
		Agent:    drone,
		Other:    poacher,
		HasOther: true,
	}
}

// NewPoacherCapturedEvent creates a capture event. reward is bookkeeping only.
func NewPoacherCapturedEvent(tick int32, drone, poacher ecs.Entity, reward float64) Event {
	return Event{
		Type:     EventPoacherCaptured,
		Tick:     tick,
		Agent:    drone,
		Other:    poacher,
		HasOther: true,
		Amount:   reward,
	}
}

// NewPoacherLostEvent creates an event for a poacher leaving all drone coverage.
func NewPoacherLostEvent(tick int32, poacher ecs.Entity) Event {
	return Event{
		Type:  EventPoacherLost,
		Tick:  tick,
		Agent: poacher,
	}
}

// NewAnimalDetectedEvent creates an event for an animal entering drone coverage.
func NewAnimalDetectedEvent(tick int32, drone, animal ecs.Entity) Event {
	return Event{
		Type:     EventAnimalDetected,
		Tick:     tick,
		Agent:    drone,
		Other:    animal,
		HasOther: true,
	}
}

// NewAnimalLostEvent creates an event for an animal leaving all drone coverage.
func NewAnimalLostEvent(tick int32, animal ecs.Entity) Event {
	return Event{
		Type:  EventAnimalLost,
		Tick:  tick,
		Agent: animal,
	}
}
