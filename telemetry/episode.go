package telemetry

import (
	"log/slog"

	"github.com/google/uuid"
)

// Episode outcomes.
const (
	OutcomeCaptured    = "captured"     // every poacher captured
	OutcomeAnimalsDead = "animals_dead" // every animal killed
	OutcomeTickBudget  = "tick_budget"  // max_ticks reached
)

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// EpisodeSummary is the end-of-run record written to episodes.csv.
type EpisodeSummary struct {
	RunID     string `csv:"run_id" json:"run_id"`
	Episode   int    `csv:"episode" json:"episode"`
	Seed      int64  `csv:"seed" json:"seed"`
	Optimizer string `csv:"optimizer" json:"optimizer"`

	Ticks   int32  `csv:"ticks" json:"ticks"`
	Outcome string `csv:"outcome" json:"outcome"`

	Captures         int   `csv:"captures" json:"captures"`
	FirstCaptureTick int32 `csv:"first_capture_tick" json:"first_capture_tick"` // -1 if none
	Kills            int   `csv:"kills" json:"kills"`
	Attacks          int   `csv:"attacks" json:"attacks"`
	Detections       int   `csv:"detections" json:"detections"`
	AnimalsAlive     int   `csv:"animals_alive" json:"animals_alive"`
	PoachersFree     int   `csv:"poachers_free" json:"poachers_free"`

	DeepShare float64 `csv:"deep_share" json:"deep_share"`

	// RL only
	AvgReward float64 `csv:"avg_reward" json:"avg_reward"`
	Epsilon   float64 `csv:"epsilon" json:"epsilon"`
	States    int     `csv:"states" json:"states"`
}

// Captured reports whether the drones caught every poacher.
func (s EpisodeSummary) Captured() bool {
	return s.Outcome == OutcomeCaptured
}

// LogValue implements slog.LogValuer for structured logging.
func (s EpisodeSummary) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("run_id", s.RunID),
		slog.Int("episode", s.Episode),
		slog.Int64("seed", s.Seed),
		slog.String("optimizer", s.Optimizer),
		slog.Int("ticks", int(s.Ticks)),
		slog.String("outcome", s.Outcome),
		slog.Int("captures", s.Captures),
		slog.Int("kills", s.Kills),
		slog.Int("animals_alive", s.AnimalsAlive),
		slog.Int("poachers_free", s.PoachersFree),
		slog.Float64("deep_share", s.DeepShare),
	}
	if s.FirstCaptureTick >= 0 {
		attrs = append(attrs, slog.Int("first_capture_tick", int(s.FirstCaptureTick)))
	}
	if s.States > 0 {
		attrs = append(attrs,
			slog.Float64("avg_reward", s.AvgReward),
			slog.Float64("epsilon", s.Epsilon),
			slog.Int("states", s.States),
		)
	}
	return slog.GroupValue(attrs...)
}
