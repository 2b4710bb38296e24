package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/ranger/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v, want nil, nil", om, err)
	}
	// All writers are nil-safe.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("WriteTelemetry on nil manager: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil manager: %v", err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for _, end := range []int32{100, 200} {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: end, Animals: 10}); err != nil {
			t.Fatalf("WriteTelemetry: %v", err)
		}
	}
	summary := EpisodeSummary{RunID: NewRunID(), Episode: 1, Outcome: OutcomeCaptured, FirstCaptureTick: 420}
	if err := om.WriteEpisode(summary); err != nil {
		t.Fatalf("WriteEpisode: %v", err)
	}
	if err := om.WriteSummary(summary); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	cfg, err := config.Defaults()
	if err != nil {
		t.Fatalf("Defaults: %v", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatalf("reading telemetry.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("telemetry.csv has %d lines, want header + 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "window_end,drones,animals") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "200,") {
		t.Errorf("second row = %q, want window 200", lines[2])
	}

	data, err = os.ReadFile(filepath.Join(dir, "episodes.csv"))
	if err != nil {
		t.Fatalf("reading episodes.csv: %v", err)
	}
	if !strings.Contains(string(data), summary.RunID) {
		t.Error("episodes.csv does not contain the run id")
	}

	for _, name := range []string{"perf.csv", "summary.json", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}
}
