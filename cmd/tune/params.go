package main

import (
	"github.com/pthm-cable/ranger/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable PSO parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Swarm dynamics
			{Name: "inertia", Path: "pso.w", Min: 0.2, Max: 0.95, Default: 0.6},
			{Name: "cognitive", Path: "pso.c1", Min: 0.3, Max: 2.5, Default: 1.5},
			{Name: "social", Path: "pso.c2", Min: 0.3, Max: 2.5, Default: 1.5},
			{Name: "max_velocity", Path: "pso.max_velocity", Min: 1, Max: 20, Default: 5},
			// Stagnation
			{Name: "stagnation_delta", Path: "pso.stagnation_delta", Min: 0.5, Max: 15, Default: 5},
			{Name: "stagnation_penalty", Path: "pso.stagnation_penalty", Min: 0, Max: 60, Default: 20},
			// Fitness landscape
			{Name: "poacher_weight", Path: "pso.poacher_weight", Min: 1, Max: 10, Default: 3},
			{Name: "animal_weight", Path: "pso.animal_weight", Min: 0.1, Max: 2, Default: 1},
			{Name: "ring_weight", Path: "pso.ring_weight", Min: 0, Max: 3, Default: 1},
			{Name: "ring_tolerance", Path: "pso.ring_tolerance", Min: 0, Max: 0.5, Default: 0.2},
			{Name: "wide_bonus", Path: "pso.wide_bonus", Min: 0, Max: 80, Default: 30},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	p := &cfg.PSO

	p.W, p.C1, p.C2, p.MaxVelocity = c[0], c[1], c[2], c[3]
	p.StagnationDelta, p.StagnationPenalty = c[4], c[5]
	p.PoacherWeight, p.AnimalWeight = c[6], c[7]
	p.RingWeight, p.RingTolerance, p.WideBonus = c[8], c[9], c[10]

	// Poachers must stay at least twice as attractive as animals.
	p.PoacherWeight = max(p.PoacherWeight, 2*p.AnimalWeight)
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	p := cfg.PSO
	return []float64{
		p.W, p.C1, p.C2, p.MaxVelocity,
		p.StagnationDelta, p.StagnationPenalty,
		p.PoacherWeight, p.AnimalWeight,
		p.RingWeight, p.RingTolerance, p.WideBonus,
	}
}
