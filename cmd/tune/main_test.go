package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/ranger/config"
)

func TestTunerLogsEveryEvaluation(t *testing.T) {
	cfg, err := config.Defaults()
	if err != nil {
		t.Fatalf("Defaults: %v", err)
	}
	params := NewParamVector()
	evaluator := NewFitnessEvaluator(params, 20, []int64{1}, cfg)

	path := filepath.Join(t.TempDir(), "optimize_log.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	tn := newTuner(params, evaluator, f, 2)

	x := params.Normalize(params.DefaultVector())
	first := tn.objective(x)
	tn.objective(x)
	f.Close()

	if tn.evals != 2 {
		t.Errorf("evals = %d, want 2", tn.evals)
	}
	if tn.bestFitness != first {
		t.Errorf("bestFitness = %v, want %v", tn.bestFitness, first)
	}
	if len(tn.bestParams) != params.Dim() {
		t.Errorf("len(bestParams) = %d, want %d", len(tn.bestParams), params.Dim())
	}

	in, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer in.Close()
	rows, err := csv.NewReader(in).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header plus 2", len(rows))
	}
	if want := 3 + params.Dim(); len(rows[0]) != want {
		t.Errorf("header columns = %d, want %d", len(rows[0]), want)
	}
	if rows[2][0] != "2" {
		t.Errorf("second row eval = %q, want \"2\"", rows[2][0])
	}
}
