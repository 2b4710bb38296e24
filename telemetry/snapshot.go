package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/ranger/components"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the simulation state at one tick.
type Snapshot struct {
	Version   int    `json:"version"`
	RunID     string `json:"run_id"`
	RNGSeed   int64  `json:"rng_seed"`
	Optimizer string `json:"optimizer"`

	WorldWidth  float64 `json:"world_width"`
	WorldHeight float64 `json:"world_height"`

	Tick int32 `json:"tick"`

	Entities []EntityState `json:"entities"`

	Summary *EpisodeSummary `json:"summary,omitempty"`
}

// EntityState holds one agent's observable state.
type EntityState struct {
	ID   uint32          `json:"id"`
	Kind components.Kind `json:"kind"`
	Name string          `json:"name"`

	X float64 `json:"x"`
	Y float64 `json:"y"`

	State    string  `json:"state"`
	Mode     string  `json:"mode,omitempty"`   // drones
	Health   float64 `json:"health,omitempty"` // animals
	Terminal bool    `json:"terminal"`

	Lifetime *LifetimeStatsJSON `json:"lifetime,omitempty"`
}

// LifetimeStatsJSON is the JSON-serializable form of LifetimeStats.
type LifetimeStatsJSON struct {
	SpawnTick   int32   `json:"spawn_tick"`
	EndTick     int32   `json:"end_tick,omitempty"`
	Ticks       int32   `json:"ticks"`
	Attacks     int     `json:"attacks,omitempty"`
	DamageDealt float64 `json:"damage_dealt,omitempty"`
	DamageTaken float64 `json:"damage_taken,omitempty"`
	Kills       int     `json:"kills,omitempty"`
	Captures    int     `json:"captures,omitempty"`
	Detections  int     `json:"detections,omitempty"`
	DeepTicks   int     `json:"deep_ticks,omitempty"`
}

// ToJSON converts LifetimeStats to its JSON form.
func (ls *LifetimeStats) ToJSON() *LifetimeStatsJSON {
	if ls == nil {
		return nil
	}
	return &LifetimeStatsJSON{
		SpawnTick:   ls.SpawnTick,
		EndTick:     ls.EndTick,
		Ticks:       ls.Ticks,
		Attacks:     ls.Attacks,
		DamageDealt: ls.DamageDealt,
		DamageTaken: ls.DamageTaken,
		Kills:       ls.Kills,
		Captures:    ls.Captures,
		Detections:  ls.Detections,
		DeepTicks:   ls.DeepTicks,
	}
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Summary != nil {
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, snapshot.Summary.Outcome)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
