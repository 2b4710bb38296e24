package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/ranger/components"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	lt := NewLifetimeTracker()
	lt.Register(3, components.KindAnimal, 0)
	lt.Get(3).DamageTaken = 80
	lt.UpdateTicks(1000)

	snapshot := &Snapshot{
		Version:     SnapshotVersion,
		RunID:       NewRunID(),
		RNGSeed:     42,
		Optimizer:   "rl",
		WorldWidth:  800,
		WorldHeight: 600,
		Tick:        1000,
		Entities: []EntityState{
			{
				ID:    1,
				Kind:  components.KindDrone,
				Name:  "drone-0",
				X:     150,
				Y:     250,
				State: "deep_search",
				Mode:  "deep",
			},
			{
				ID:       3,
				Kind:     components.KindAnimal,
				Name:     "animal-0",
				X:        400,
				Y:        300,
				State:    "idle",
				Health:   20,
				Lifetime: lt.Get(3).ToJSON(),
			},
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.Version != snapshot.Version {
		t.Errorf("Version mismatch: got %d, want %d", loaded.Version, snapshot.Version)
	}
	if loaded.RunID != snapshot.RunID {
		t.Errorf("RunID mismatch: got %s, want %s", loaded.RunID, snapshot.RunID)
	}
	if loaded.Tick != snapshot.Tick {
		t.Errorf("Tick mismatch: got %d, want %d", loaded.Tick, snapshot.Tick)
	}
	if len(loaded.Entities) != len(snapshot.Entities) {
		t.Fatalf("Entities count mismatch: got %d, want %d", len(loaded.Entities), len(snapshot.Entities))
	}
	if got := loaded.Entities[0].Kind; got != components.KindDrone {
		t.Errorf("Kind mismatch: got %v, want drone", got)
	}
	animal := loaded.Entities[1]
	if animal.Lifetime == nil {
		t.Fatal("Lifetime not loaded")
	}
	if animal.Lifetime.Ticks != 1000 || animal.Lifetime.DamageTaken != 80 {
		t.Errorf("Lifetime = %+v, want 1000 ticks and 80 damage", *animal.Lifetime)
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version: SnapshotVersion,
		Tick:    5000,
		Summary: &EpisodeSummary{Outcome: OutcomeCaptured},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected := filepath.Join(tmpDir, "snapshot_5000_captured.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}

	plain := &Snapshot{
		Version: SnapshotVersion,
		Tick:    3000,
	}

	path, err = SaveSnapshot(plain, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected = filepath.Join(tmpDir, "snapshot_3000.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}
}

func TestRunIDsAreUnique(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	if a == b {
		t.Errorf("NewRunID returned %s twice", a)
	}
	if len(a) != 36 {
		t.Errorf("len(RunID) = %d, want 36", len(a))
	}
}
