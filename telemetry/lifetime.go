package telemetry

import "github.com/pthm-cable/ranger/components"

// LifetimeStats tracks per-agent statistics over a run.
type LifetimeStats struct {
	Kind      components.Kind
	SpawnTick int32
	EndTick   int32 // tick the agent turned terminal; valid when Ended
	Ended     bool
	Ticks     int32 // ticks alive

	// Poachers
	Attacks     int
	DamageDealt float64
	Kills       int

	// Animals
	DamageTaken float64

	// Drones
	Captures   int
	Detections int
	DeepTicks  int
}

// LifetimeTracker manages per-agent lifetime statistics keyed by entity ID.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for a newly spawned agent.
func (lt *LifetimeTracker) Register(entityID uint32, kind components.Kind, spawnTick int32) {
	lt.stats[entityID] = &LifetimeStats{
		Kind:      kind,
		SpawnTick: spawnTick,
	}
}

// Get returns the lifetime stats for an agent, or nil if not found.
func (lt *LifetimeTracker) Get(entityID uint32) *LifetimeStats {
	return lt.stats[entityID]
}

// RecordEvent attributes a drained domain event to the agents it names.
func (lt *LifetimeTracker) RecordEvent(e Event) {
	agent := lt.stats[uint32(e.Agent.ID())]
	var other *LifetimeStats
	if e.HasOther {
		other = lt.stats[uint32(e.Other.ID())]
	}

	switch e.Type {
	case EventAnimalAttacked:
		if agent != nil {
			agent.Attacks++
			agent.DamageDealt += e.Amount
		}
		if other != nil {
			other.DamageTaken += e.Amount
		}
	case EventAnimalKilled:
		if agent != nil {
			agent.Kills++
		}
		lt.end(other, e.Tick)
	case EventPoacherCaptured:
		if agent != nil {
			agent.Captures++
		}
		lt.end(other, e.Tick)
	case EventPoacherDetected, EventAnimalDetected:
		if agent != nil {
			agent.Detections++
		}
	}
}

func (lt *LifetimeTracker) end(s *LifetimeStats, tick int32) {
	if s == nil || s.Ended {
		return
	}
	s.Ended = true
	s.EndTick = tick
	s.Ticks = tick - s.SpawnTick
}

// RecordDeepTick counts one tick a drone spent in deep search.
func (lt *LifetimeTracker) RecordDeepTick(entityID uint32) {
	if s := lt.stats[entityID]; s != nil {
		s.DeepTicks++
	}
}

// UpdateTicks refreshes the alive time of every agent still active.
func (lt *LifetimeTracker) UpdateTicks(currentTick int32) {
	for _, s := range lt.stats {
		if !s.Ended {
			s.Ticks = currentTick - s.SpawnTick
		}
	}
}

// All returns all tracked stats (for snapshots).
func (lt *LifetimeTracker) All() map[uint32]*LifetimeStats {
	return lt.stats
}

// Count returns the number of tracked agents.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

// ActiveCount returns the number of tracked agents of kind that are not terminal.
func (lt *LifetimeTracker) ActiveCount(kind components.Kind) int {
	n := 0
	for _, s := range lt.stats {
		if s.Kind == kind && !s.Ended {
			n++
		}
	}
	return n
}
