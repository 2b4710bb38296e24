package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a tick window.
type WindowStats struct {
	WindowStartTick int32 `csv:"-"`
	WindowEndTick   int32 `csv:"window_end"`

	// Population counts at window end
	Drones   int `csv:"drones"`
	Animals  int `csv:"animals"`
	Poachers int `csv:"poachers"`

	// Hunting
	Attacks  int     `csv:"attacks"`
	Damage   float64 `csv:"damage"`
	Kills    int     `csv:"kills"`
	Captures int     `csv:"captures"`

	// Drone sensing
	PoachersDetected int     `csv:"poachers_detected"`
	PoachersLost     int     `csv:"poachers_lost"`
	AnimalsDetected  int     `csv:"animals_detected"`
	AnimalsLost      int     `csv:"animals_lost"`
	DeepShare        float64 `csv:"deep_share"` // fraction of drone-ticks flown in deep search
	CaptureReward    float64 `csv:"capture_reward"`

	// Animal health distribution (sampled at window end)
	HealthMean float64 `csv:"health_mean"`
	HealthP10  float64 `csv:"health_p10"`
	HealthP50  float64 `csv:"health_p50"`
	HealthP90  float64 `csv:"health_p90"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeHealthStats calculates mean and percentiles from health values.
func ComputeHealthStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return mean, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Int("drones", s.Drones),
		slog.Int("animals", s.Animals),
		slog.Int("poachers", s.Poachers),
		slog.Int("attacks", s.Attacks),
		slog.Float64("damage", s.Damage),
		slog.Int("kills", s.Kills),
		slog.Int("captures", s.Captures),
		slog.Int("poachers_detected", s.PoachersDetected),
		slog.Int("poachers_lost", s.PoachersLost),
		slog.Int("animals_detected", s.AnimalsDetected),
		slog.Int("animals_lost", s.AnimalsLost),
		slog.Float64("deep_share", s.DeepShare),
		slog.Float64("capture_reward", s.CaptureReward),
		slog.Float64("health_mean", s.HealthMean),
		slog.Float64("health_p10", s.HealthP10),
		slog.Float64("health_p50", s.HealthP50),
		slog.Float64("health_p90", s.HealthP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"animals", s.Animals,
		"poachers", s.Poachers,
		"attacks", s.Attacks,
		"kills", s.Kills,
		"captures", s.Captures,
		"poachers_detected", s.PoachersDetected,
		"animals_detected", s.AnimalsDetected,
		"deep_share", s.DeepShare,
		"health_mean", s.HealthMean,
		"health_p50", s.HealthP50,
	)
}
