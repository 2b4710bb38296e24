package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/ranger/config"
	"github.com/pthm-cable/ranger/game"
	"github.com/pthm-cable/ranger/telemetry"
)

// killPenalty is the fitness cost of one animal killed, in ticks.
const killPenalty = 250.0

// FitnessEvaluator runs headless PSO games and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	bestFitness float64
	bestSummary []telemetry.EpisodeSummary
	lastCapture float64 // capture rate from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestSummaries returns the per-seed summaries of the best evaluation.
func (fe *FitnessEvaluator) BestSummaries() []telemetry.EpisodeSummary {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestSummary
}

// LastCaptureRate returns the capture rate of the most recent evaluation.
func (fe *FitnessEvaluator) LastCaptureRate() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastCapture
}

// Evaluate computes fitness for a parameter vector (lower = better): the
// mean over seeds of the ticks until every poacher is caught, plus a penalty
// per animal killed.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	cfg.Sim.Optimizer = config.OptimizerPSO
	cfg.Sim.MaxTicks = fe.maxTicks
	fe.params.ApplyToConfig(cfg, x)

	// Run all seeds in parallel; every game owns its world and optimizer.
	summaries := make([]telemetry.EpisodeSummary, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			summaries[idx] = fe.runGame(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	scores := make([]float64, len(summaries))
	var captured float64
	for i, s := range summaries {
		scores[i] = score(s, fe.maxTicks)
		if s.Captured() {
			captured++
		}
	}
	fitness := stat.Mean(scores, nil)

	fe.mu.Lock()
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
		fe.bestSummary = summaries
	}
	fe.lastCapture = captured / float64(len(summaries))
	fe.mu.Unlock()

	return fitness
}

// runGame executes a single headless game.
func (fe *FitnessEvaluator) runGame(cfg *config.Config, seed int64) telemetry.EpisodeSummary {
	g, err := game.New(game.Options{Config: cfg, Seed: seed})
	if err != nil {
		slog.Error("failed to start game", "seed", seed, "error", err)
		return telemetry.EpisodeSummary{Ticks: int32(fe.maxTicks)}
	}
	defer g.Close()
	return g.Run()
}

// score rates one game: ticks to full capture (the whole budget when the
// poachers got away) plus the kill penalty.
func score(s telemetry.EpisodeSummary, maxTicks int) float64 {
	ticks := float64(maxTicks)
	if s.Captured() {
		ticks = float64(s.Ticks)
	}
	return ticks + killPenalty*float64(s.Kills)
}
