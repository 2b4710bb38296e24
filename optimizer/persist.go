package optimizer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"os"
)

// modelVersion is bumped whenever the model layout changes.
const modelVersion = 1

// Model is the persisted learning state of an RL optimizer.
type Model struct {
	Version int                               `json:"version"`
	Q       map[StateKey]map[Maneuver]float64 `json:"q"`
	Epsilon float64                           `json:"epsilon"`
	Visits  map[Cell]int                      `json:"visits"`
	Rewards []float64                         `json:"rewards"`
	Steps   int                               `json:"steps"`
}

// Model returns a copy of the learning state.
func (r *RL) Model() Model {
	q := make(map[StateKey]map[Maneuver]float64, len(r.q))
	for k, row := range r.q {
		q[k] = maps.Clone(row)
	}
	return Model{
		Version: modelVersion,
		Q:       q,
		Epsilon: r.epsilon,
		Visits:  maps.Clone(r.visits),
		Rewards: append([]float64(nil), r.rewards...),
		Steps:   r.steps,
	}
}

// Restore replaces the learning state with m.
func (r *RL) Restore(m Model) error {
	if m.Version != modelVersion {
		return fmt.Errorf("model version %d, want %d", m.Version, modelVersion)
	}
	r.q = make(QTable, len(m.Q))
	for k, row := range m.Q {
		r.q[k] = maps.Clone(row)
		if r.q[k] == nil {
			r.q[k] = make(map[Maneuver]float64)
		}
	}
	r.epsilon = m.Epsilon
	r.visits = maps.Clone(m.Visits)
	if r.visits == nil {
		r.visits = make(map[Cell]int)
	}
	r.rewards = append([]float64(nil), m.Rewards...)
	r.steps = m.Steps
	clear(r.previous)
	return nil
}

// Save writes the model as JSON.
func (r *RL) Save(path string) error {
	data, err := json.Marshal(r.Model())
	if err != nil {
		return fmt.Errorf("marshaling model: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing model: %w", err)
	}
	return nil
}

// Load reads a model written by Save.
func (r *RL) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading model: %w", err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parsing model: %w", err)
	}
	if err := r.Restore(m); err != nil {
		return fmt.Errorf("restoring model: %w", err)
	}
	return nil
}

// LoadOrFresh loads path, keeping the fresh table when the model is missing
// or unreadable.
func (r *RL) LoadOrFresh(path string) bool {
	if err := r.Load(path); err != nil {
		slog.Warn("rl model not loaded, starting fresh", "path", path, "error", err)
		return false
	}
	slog.Info("rl model loaded", "path", path, "states", len(r.q), "epsilon", r.epsilon)
	return true
}
