// Package main tunes the PSO drone optimizer with CMA-ES, scoring each
// candidate by how quickly headless games end in a full capture.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/ranger/config"
)

// tuner adapts the fitness evaluator to gonum's optimizer: it maps the unit
// cube onto parameter ranges, logs every evaluation and tracks the best.
type tuner struct {
	params    *ParamVector
	evaluator *FitnessEvaluator
	log       *csv.Writer
	maxEvals  int

	evals       int
	bestFitness float64
	bestParams  []float64
	started     time.Time
}

func newTuner(params *ParamVector, evaluator *FitnessEvaluator, logFile *os.File, maxEvals int) *tuner {
	t := &tuner{
		params:      params,
		evaluator:   evaluator,
		log:         csv.NewWriter(logFile),
		maxEvals:    maxEvals,
		bestFitness: math.Inf(1),
		started:     time.Now(),
	}
	header := []string{"eval", "fitness", "capture_rate"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	t.log.Write(header)
	t.log.Flush()
	return t
}

// objective evaluates a normalized point.
func (t *tuner) objective(x []float64) float64 {
	values := t.params.Clamp(t.params.Denormalize(x))
	fitness := t.evaluator.Evaluate(values)
	t.evals++
	if fitness < t.bestFitness {
		t.bestFitness = fitness
		t.bestParams = values
	}
	t.record(values, fitness)
	return fitness
}

// record appends one evaluation to the log and prints progress.
func (t *tuner) record(values []float64, fitness float64) {
	rate := t.evaluator.LastCaptureRate()
	row := make([]string, 0, 3+len(values))
	row = append(row,
		strconv.Itoa(t.evals),
		strconv.FormatFloat(fitness, 'f', 3, 64),
		strconv.FormatFloat(rate, 'f', 3, 64),
	)
	for _, v := range values {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	t.log.Write(row)
	t.log.Flush()

	elapsed := time.Since(t.started)
	eta := elapsed / time.Duration(t.evals) * time.Duration(max(t.maxEvals-t.evals, 0))
	fmt.Printf("[%d/%d] fitness=%.0f captured=%.0f%% best=%.0f elapsed=%s eta=%s\n",
		t.evals, t.maxEvals, fitness, 100*rate, t.bestFitness,
		elapsed.Round(time.Second), eta.Round(time.Second))
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxTicks := flag.Int("max-ticks", 5000, "Tick budget per game")
	seeds := flag.Int("seeds", 4, "Games per evaluation, one seed each")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}
	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	params := NewParamVector()
	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, *maxTicks, evalSeeds, config.Cfg())

	logFile, err := os.Create(filepath.Join(*outputDir, "optimize_log.csv"))
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()
	t := newTuner(params, evaluator, logFile, *maxEvals)

	popSize := *population
	if popSize == 0 {
		popSize = 4 + 3*params.Dim()/2
	}
	fmt.Printf("Tuning %d PSO parameters: population=%d max_evals=%d seeds=%d ticks=%d\n",
		params.Dim(), popSize, *maxEvals, *seeds, *maxTicks)

	result, err := optimize.Minimize(
		optimize.Problem{Func: t.objective},
		params.Normalize(params.DefaultVector()),
		&optimize.Settings{FuncEvaluations: *maxEvals},
		&optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize},
	)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if t.bestParams == nil && result != nil {
		t.bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if t.bestParams == nil {
		log.Fatal("no evaluation completed")
	}

	fmt.Printf("\n%d evaluations in %s, best fitness %.0f\n",
		t.evals, time.Since(t.started).Round(time.Second), t.bestFitness)
	for i, spec := range params.Specs {
		fmt.Printf("  %-20s %.6f\n", spec.Path, t.bestParams[i])
	}

	if err := saveResults(*configPath, *outputDir, params, t.bestParams, evaluator); err != nil {
		log.Fatal(err)
	}
}

// saveResults writes best_config.yaml and the per-seed summaries of the best
// evaluation.
func saveResults(configPath, dir string, params *ParamVector, best []float64, evaluator *FitnessEvaluator) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("reloading config: %w", err)
	}
	params.ApplyToConfig(cfg, best)
	cfgPath := filepath.Join(dir, "best_config.yaml")
	if err := cfg.WriteYAML(cfgPath); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	fmt.Printf("Best config saved to: %s\n", cfgPath)

	runs := evaluator.BestSummaries()
	if runs == nil {
		return nil
	}
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling best runs: %w", err)
	}
	runsPath := filepath.Join(dir, "best_runs.json")
	if err := os.WriteFile(runsPath, data, 0644); err != nil {
		return fmt.Errorf("writing best runs: %w", err)
	}
	fmt.Printf("Best runs saved to: %s\n", runsPath)
	return nil
}
