package components

import (
	"slices"

	"github.com/pthm-cable/ranger/geom"
)

// Sighting is a remembered target position.
type Sighting struct {
	Pos  geom.Vector2
	Tick int32
}

// Memory is a bounded FIFO of sightings. Once full, remembering a new
// sighting evicts the oldest.
type Memory struct {
	entries  []Sighting
	capacity int
}

// NewMemory creates a memory holding at most capacity sightings.
func NewMemory(capacity int) Memory {
	if capacity < 1 {
		capacity = 1
	}
	return Memory{entries: make([]Sighting, 0, capacity), capacity: capacity}
}

// Remember records a sighting at the given tick.
func (m *Memory) Remember(pos geom.Vector2, tick int32) {
	if len(m.entries) == m.capacity {
		copy(m.entries, m.entries[1:])
		m.entries = m.entries[:len(m.entries)-1]
	}
	m.entries = append(m.entries, Sighting{Pos: pos, Tick: tick})
}

// Latest returns the most recent sighting no older than ttl ticks.
func (m *Memory) Latest(now int32, ttl int) (Sighting, bool) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		s := m.entries[i]
		if int(now-s.Tick) <= ttl {
			return s, true
		}
	}
	return Sighting{}, false
}

// Forget drops the sighting closest to pos within radius, used once a
// remembered spot has been searched.
func (m *Memory) Forget(pos geom.Vector2, radius float64) {
	closest, best := -1, radius
	for i, s := range m.entries {
		if d := s.Pos.DistanceTo(pos); d <= best {
			closest, best = i, d
		}
	}
	if closest >= 0 {
		m.entries = slices.Delete(m.entries, closest, closest+1)
	}
}

// Len returns the number of stored sightings.
func (m *Memory) Len() int {
	return len(m.entries)
}

// Entries returns the stored sightings, oldest first.
func (m *Memory) Entries() []Sighting {
	return m.entries
}
