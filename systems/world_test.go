package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ranger/components"
	"github.com/pthm-cable/ranger/config"
	"github.com/pthm-cable/ranger/geom"
	"github.com/pthm-cable/ranger/telemetry"
)

func init() {
	config.MustInit("")
}

func newTestWorld(t *testing.T, mutate func(*config.Config)) *World {
	t.Helper()
	cfg := config.Cfg().Clone()
	if mutate != nil {
		mutate(cfg)
	}
	return NewWorld(cfg, rand.New(rand.NewSource(1)))
}

func TestScanSurroundingsOrdersByDistance(t *testing.T) {
	w := newTestWorld(t, nil)
	drone := w.SpawnDrone(geom.V(100, 100))
	far := w.SpawnAnimal(geom.V(250, 100))
	near := w.SpawnAnimal(geom.V(120, 100))
	mid := w.SpawnAnimal(geom.V(100, 190))
	out := w.SpawnAnimal(geom.V(400, 400))

	got := w.ScanSurroundings(drone, []ecs.Entity{far, near, mid, out}, ScanAll)
	want := []ecs.Entity{near, mid, far}
	if len(got) != len(want) {
		t.Fatalf("ScanAll returned %d detections, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Agent != want[i] {
			t.Errorf("detection %d = entity %d, want %d", i, got[i].Agent.ID(), want[i].ID())
		}
		if i > 0 && got[i].Distance <= got[i-1].Distance {
			t.Errorf("detection %d distance %v not after %v", i, got[i].Distance, got[i-1].Distance)
		}
	}
}

func TestScanSurroundingsTieBreaksByInputOrder(t *testing.T) {
	w := newTestWorld(t, nil)
	drone := w.SpawnDrone(geom.V(100, 100))
	east := w.SpawnAnimal(geom.V(150, 100))
	south := w.SpawnAnimal(geom.V(100, 150))
	west := w.SpawnAnimal(geom.V(50, 100))

	tests := []struct {
		name  string
		input []ecs.Entity
	}{
		{"spawn order", []ecs.Entity{east, south, west}},
		{"reversed", []ecs.Entity{west, south, east}},
		{"rotated", []ecs.Entity{south, west, east}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for run := 0; run < 3; run++ {
				got := w.ScanSurroundings(drone, tt.input, ScanAll)
				if len(got) != len(tt.input) {
					t.Fatalf("got %d detections, want %d", len(got), len(tt.input))
				}
				for i, d := range got {
					if d.Agent != tt.input[i] {
						t.Errorf("run %d: rank %d = entity %d, want %d", run, i, d.Agent.ID(), tt.input[i].ID())
					}
				}
			}
			nearest, ok := w.Nearest(drone, tt.input)
			if !ok || nearest.Agent != tt.input[0] {
				t.Errorf("Nearest = %d, want first input %d", nearest.Agent.ID(), tt.input[0].ID())
			}
		})
	}
}

func TestScanSurroundingsSkipsSelfAndTerminal(t *testing.T) {
	w := newTestWorld(t, nil)
	drone := w.SpawnDrone(geom.V(100, 100))
	dead := w.SpawnAnimal(geom.V(110, 100))
	alive := w.SpawnAnimal(geom.V(130, 100))
	w.MarkTerminal(dead, NewDead())

	got := w.ScanSurroundings(drone, []ecs.Entity{drone, dead, alive}, ScanAll)
	if len(got) != 1 || got[0].Agent != alive {
		t.Fatalf("ScanAll = %v, want only the live animal", got)
	}
}

func TestScanRangeFollowsStateModifier(t *testing.T) {
	w := newTestWorld(t, nil)
	drone := w.SpawnDrone(geom.V(100, 100))
	animal := w.SpawnAnimal(geom.V(250, 100)) // 150 away

	if _, ok := w.Nearest(drone, []ecs.Entity{animal}); !ok {
		t.Fatal("wide search should see an animal at 150")
	}
	w.Command(drone, NewDeepSearch(w.Config()), geom.Vector2{}, 0)
	if got := w.ScanRange(drone); got != 100 {
		t.Errorf("deep ScanRange = %v, want 100", got)
	}
	if _, ok := w.Nearest(drone, []ecs.Entity{animal}); ok {
		t.Error("deep search should not see an animal at 150")
	}

	// The range is inclusive.
	w.Place(animal, geom.V(200, 100))
	if _, ok := w.Nearest(drone, []ecs.Entity{animal}); !ok {
		t.Error("animal exactly at scan range should be detected")
	}
}

func TestMoveKeepsAgentsInBounds(t *testing.T) {
	w := newTestWorld(t, nil)
	b := w.Bounds()
	drone := w.SpawnDrone(geom.V(100, 100))
	animal := w.SpawnAnimal(geom.V(5, 5))

	headings := []geom.Vector2{
		geom.V(-1, 0), geom.V(0, -1), geom.V(1, 1), geom.V(1, -1), geom.V(-1, 1),
	}
	for _, h := range headings {
		for i := 0; i < 200; i++ {
			w.Move(drone, h, 1, MoveAlong)
			w.Move(animal, geom.V(400, 300), 3, MoveAway)
			for _, e := range []ecs.Entity{drone, animal} {
				if p := w.Position(e); !b.Contains(p) {
					t.Fatalf("position %v outside %vx%v", p, b.Width, b.Height)
				}
			}
		}
	}
}

func TestSpawnClampsToBounds(t *testing.T) {
	w := newTestWorld(t, nil)
	e := w.SpawnPoacher(geom.V(-50, 9000))
	if got, want := w.Position(e), geom.V(0, 600); got != want {
		t.Errorf("spawn position = %v, want %v", got, want)
	}
}

func TestMoveTowardDoesNotOvershoot(t *testing.T) {
	w := newTestWorld(t, nil)
	drone := w.SpawnDrone(geom.V(100, 100))
	goal := geom.V(103, 104)

	w.Move(drone, goal, 1, MoveToward)
	if got := w.Position(drone); got.DistanceTo(goal) > 1e-9 {
		t.Errorf("position = %v, want %v", got, goal)
	}
}

func TestMoveInvalidModePanics(t *testing.T) {
	w := newTestWorld(t, nil)
	drone := w.SpawnDrone(geom.V(100, 100))

	defer func() {
		if recover() == nil {
			t.Error("Move with an invalid mode did not panic")
		}
	}()
	w.Move(drone, geom.V(1, 0), 1, MoveMode(42))
}

func TestSetStateBinding(t *testing.T) {
	w := newTestWorld(t, nil)
	drone := w.SpawnDrone(geom.V(100, 100))
	animal := w.SpawnAnimal(geom.V(300, 300))

	for _, e := range []ecs.Entity{drone, animal} {
		if got, ok := w.State(e).Agent(); !ok || got != e {
			t.Errorf("initial state of %d bound to %d (%v)", e.ID(), got.ID(), ok)
		}
	}

	old := w.State(drone)
	next := NewDeepSearch(w.Config())
	w.SetState(drone, next)

	if _, ok := old.Agent(); ok {
		t.Error("previous state still bound after SetState")
	}
	if got, ok := next.Agent(); !ok || got != drone {
		t.Error("new state not bound to the drone")
	}
	if w.State(drone) != next {
		t.Error("active state was not swapped")
	}

	defer func() {
		if recover() == nil {
			t.Error("sharing a bound state across agents did not panic")
		}
	}()
	w.SetState(animal, next)
}

func TestMarkTerminalIsAbsorbing(t *testing.T) {
	w := newTestWorld(t, nil)
	poacher := w.SpawnPoacher(geom.V(300, 300))
	w.Advance()
	w.MarkTerminal(poacher, NewCaptured())
	before := w.Position(poacher)

	for i := 0; i < 10; i++ {
		w.stepAgent(poacher)
	}
	if w.Position(poacher) != before {
		t.Error("terminal agent moved")
	}
	s := w.State(poacher)
	if !s.Terminal() || s.Name() != "captured" {
		t.Errorf("state = %s (terminal %v), want captured", s.Name(), s.Terminal())
	}
	if s.Modifiers() != (Modifiers{}) {
		t.Errorf("terminal modifiers = %+v, want zero", s.Modifiers())
	}
	_, _, poachers := w.Census()
	if poachers != 0 {
		t.Errorf("Census poachers = %d, want 0", poachers)
	}
}

func TestAnimalFleesAndRecovers(t *testing.T) {
	w := newTestWorld(t, nil)
	animal := w.SpawnAnimal(geom.V(400, 300))
	poacher := w.SpawnPoacher(geom.V(430, 300))

	w.RebuildGrid()
	w.PerceiveAnimal(animal)
	if a := w.Animal(animal); !a.HasThreat || a.Threat != poacher {
		t.Fatal("animal did not register the poacher as its threat")
	}
	w.stepAgent(animal)
	if got := w.State(animal).Name(); got != "fleeing" {
		t.Fatalf("state = %s, want fleeing", got)
	}
	if got := w.Position(animal).X; got >= 400 {
		t.Errorf("fleeing animal x = %v, want < 400", got)
	}

	w.MarkTerminal(poacher, NewCaptured())
	w.RebuildGrid()
	w.PerceiveAnimal(animal)
	w.stepAgent(animal)
	if got := w.State(animal).Name(); got != "idle" {
		t.Errorf("state = %s, want idle once the threat is gone", got)
	}
}

func TestAnimalHerdPerception(t *testing.T) {
	w := newTestWorld(t, nil)
	a := w.SpawnAnimal(geom.V(400, 300))
	near := w.SpawnAnimal(geom.V(450, 300))
	far := w.SpawnAnimal(geom.V(700, 300))

	w.RebuildGrid()
	w.PerceiveAnimal(a)
	herd := w.Animal(a).Herd
	if len(herd) != 1 || herd[0] != near {
		t.Errorf("herd = %v, want only the near animal", herd)
	}
	_ = far
}

func TestPoacherHuntCycle(t *testing.T) {
	w := newTestWorld(t, nil)
	poacher := w.SpawnPoacher(geom.V(400, 300))
	animal := w.SpawnAnimal(geom.V(470, 300))

	w.RebuildGrid()
	w.PerceivePoacher(poacher)
	p := w.Poacher(poacher)
	if !p.HasTarget || p.Target != animal {
		t.Fatal("poacher did not acquire the visible animal")
	}
	if p.Memory.Len() != 1 {
		t.Errorf("memory len = %d, want 1", p.Memory.Len())
	}

	w.stepAgent(poacher)
	if got := w.State(poacher).Name(); got != "hunting" {
		t.Fatalf("state = %s, want hunting", got)
	}

	w.Place(poacher, geom.V(440, 300))
	w.stepAgent(poacher)
	if got := w.State(poacher).Name(); got != "attacking" {
		t.Fatalf("state = %s, want attacking", got)
	}

	// Target escapes attack range.
	w.Place(animal, geom.V(520, 300))
	w.stepAgent(poacher)
	if got := w.State(poacher).Name(); got != "hunting" {
		t.Fatalf("state = %s, want hunting after the target escaped", got)
	}

	// Target lost entirely.
	p.HasTarget = false
	w.stepAgent(poacher)
	if got := w.State(poacher).Name(); got != "idle" {
		t.Errorf("state = %s, want idle without a target", got)
	}
}

func TestAttackingRaisesDamageEvents(t *testing.T) {
	w := newTestWorld(t, nil)
	poacher := w.SpawnPoacher(geom.V(400, 300))
	animal := w.SpawnAnimal(geom.V(405, 300))
	p := w.Poacher(poacher)
	p.Target = animal
	p.HasTarget = true
	w.SetState(poacher, NewAttacking(w.Config()))

	cooldown := w.Config().Poacher.AttackCooldown
	for i := 0; i < cooldown+1; i++ {
		w.State(poacher).Action(w)
	}

	events := w.Events().Consume()
	if len(events) != 2 {
		t.Fatalf("got %d events over %d ticks, want 2", len(events), cooldown+1)
	}
	for _, ev := range events {
		if ev.Type != telemetry.EventAnimalAttacked || ev.Other != animal {
			t.Errorf("event = %v, want attack on the animal", ev.Type)
		}
		if ev.Amount != w.Config().Poacher.Damage {
			t.Errorf("damage = %v, want %v", ev.Amount, w.Config().Poacher.Damage)
		}
	}
	if w.Animal(animal).Health != w.Config().Animal.Health {
		t.Error("attacking changed health directly")
	}
}

func TestAttackingEndsAfterDuration(t *testing.T) {
	w := newTestWorld(t, nil)
	poacher := w.SpawnPoacher(geom.V(400, 300))
	animal := w.SpawnAnimal(geom.V(430, 300))
	p := w.Poacher(poacher)
	p.Target = animal
	p.HasTarget = true
	w.SetState(poacher, NewAttacking(w.Config()))

	duration := w.Config().Poacher.AttackDuration
	for i := 0; i < duration; i++ {
		w.State(poacher).Action(w)
		w.Place(animal, w.Position(poacher).Add(geom.V(30, 0)))
	}
	if next := w.State(poacher).CheckTransition(w); next == nil || next.Name() != "hunting" {
		t.Errorf("after %d ticks transition = %v, want hunting", duration, next)
	}
}

func TestPoacherIdleSweepTurns(t *testing.T) {
	w := newTestWorld(t, nil)
	poacher := w.SpawnPoacher(geom.V(400, 300))
	idle := w.State(poacher).(*PoacherIdle)

	interval := w.Config().Poacher.SweepInterval
	idle.Action(w)
	start := idle.Heading()
	for i := 1; i < interval-1; i++ {
		idle.Action(w)
	}
	if idle.Heading() != start {
		t.Fatalf("heading turned before the interval elapsed")
	}
	idle.Action(w)
	want := math.Mod(start+math.Pi/4, 2*math.Pi)
	if math.Abs(idle.Heading()-want) > 1e-9 {
		t.Errorf("heading = %v, want %v", idle.Heading(), want)
	}
}

func TestPoacherIdleFollowsMemory(t *testing.T) {
	w := newTestWorld(t, nil)
	poacher := w.SpawnPoacher(geom.V(400, 300))
	w.Poacher(poacher).Memory.Remember(geom.V(400, 500), 0)

	w.State(poacher).Action(w)
	if got := w.Position(poacher); got.X != 400 || got.Y <= 300 {
		t.Errorf("position = %v, want straight toward the sighting", got)
	}
}

func TestPoacherIdleIgnoresExpiredMemory(t *testing.T) {
	w := newTestWorld(t, func(c *config.Config) {
		c.Poacher.MemoryTTL = 5
	})
	poacher := w.SpawnPoacher(geom.V(400, 300))
	w.Poacher(poacher).Memory.Remember(geom.V(400, 500), 0)
	for i := 0; i < 10; i++ {
		w.Advance()
	}
	if _, ok := w.Poacher(poacher).Memory.Latest(w.Tick(), 5); ok {
		t.Fatal("sighting should have expired")
	}
	w.State(poacher).Action(w)
	if w.Position(poacher) == geom.V(400, 305) {
		t.Error("poacher followed an expired sighting")
	}
}

func TestPoacherHotspotPatrol(t *testing.T) {
	w := newTestWorld(t, func(c *config.Config) {
		c.Poacher.Search = config.SearchHotspots
	})
	first := w.Config().Poacher.Hotspots[0]
	poacher := w.SpawnPoacher(geom.V(first.X, first.Y))

	w.State(poacher).Action(w)
	got := w.Position(poacher)
	if got.X <= first.X || got.Y != first.Y {
		t.Errorf("position = %v, want heading toward the second hotspot", got)
	}
}

func TestDroneFollowsCommand(t *testing.T) {
	w := newTestWorld(t, nil)
	drone := w.SpawnDrone(geom.V(100, 100))

	w.Command(drone, NewDeepSearch(w.Config()), geom.V(1, 0), 1)
	w.stepAgent(drone)

	view := w.DroneView(drone)
	if view.Mode != ModeDeep {
		t.Errorf("mode = %v, want deep", view.Mode)
	}
	c := w.Config().Drone
	want := 100 + c.Speed*c.Deep.Speed
	if math.Abs(view.Pos.X-want) > 1e-9 || view.Pos.Y != 100 {
		t.Errorf("position = %v, want (%v, 100)", view.Pos, want)
	}

	// No mode change keeps the current state.
	state := w.State(drone)
	w.Command(drone, nil, geom.V(0, 1), 0.5)
	if w.State(drone) != state {
		t.Error("nil next state replaced the active state")
	}
}

func TestDroneScanFindsBothKinds(t *testing.T) {
	w := newTestWorld(t, nil)
	drone := w.SpawnDrone(geom.V(100, 100))
	w.SpawnAnimal(geom.V(150, 100))
	poacher := w.SpawnPoacher(geom.V(100, 250))
	w.SpawnPoacher(geom.V(700, 500))

	w.RebuildGrid()
	animals, poachers := w.DroneScan(drone)
	if len(animals) != 1 {
		t.Errorf("animals = %d, want 1", len(animals))
	}
	if len(poachers) != 1 || poachers[0].Agent != poacher {
		t.Errorf("poachers = %v, want the near poacher", poachers)
	}
}

func TestSpatialGridQueryRadius(t *testing.T) {
	w := newTestWorld(t, nil)
	a := w.SpawnAnimal(geom.V(100, 100))
	b := w.SpawnAnimal(geom.V(180, 100))
	c := w.SpawnAnimal(geom.V(100, 250))
	w.RebuildGrid()

	got := w.Nearby(components.KindAnimal, geom.V(100, 100), 80)
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("Nearby = %v, want [a b] in spawn order", got)
	}
	if got := w.Nearby(components.KindPoacher, geom.V(100, 100), 500); len(got) != 0 {
		t.Errorf("Nearby poachers = %v, want none", got)
	}
	_ = c
}
