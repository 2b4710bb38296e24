package optimizer

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/ranger/config"
	"github.com/pthm-cable/ranger/geom"
	"github.com/pthm-cable/ranger/systems"
)

// NumManeuvers is the size of the action space: 8 compass directions × 2
// search modes.
const NumManeuvers = 16

// Speed multiplier carried by every maneuver.
const maneuverSpeed = 1.0

// metricsWindow is the number of recent rewards summarized by Metrics.
const metricsWindow = 50

// rewardHistoryCap bounds the stored reward history.
const rewardHistoryCap = 10000

// compass lists the 8 headings, counter-clockwise from east.
var compass = [8]geom.Vector2{
	{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 1},
	{X: -1, Y: 0}, {X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
}

// Maneuver is one discrete action.
type Maneuver uint8

// Direction returns the unit heading of m.
func (m Maneuver) Direction() geom.Vector2 {
	return compass[int(m)/2].Normalize()
}

// Mode returns the search mode m asks for.
func (m Maneuver) Mode() systems.SearchMode {
	if m%2 == 1 {
		return systems.ModeDeep
	}
	return systems.ModeWide
}

// Cell is a coarse grid cell of the field.
type Cell struct {
	X, Y int
}

// MarshalText implements encoding.TextMarshaler so cells can key JSON maps.
func (c Cell) MarshalText() ([]byte, error) {
	return fmt.Appendf(nil, "%d,%d", c.X, c.Y), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Cell) UnmarshalText(b []byte) error {
	parts := strings.Split(string(b), ",")
	if len(parts) != 2 {
		return fmt.Errorf("parsing cell %q: want x,y", b)
	}
	return c.parse(parts[0], parts[1])
}

func (c *Cell) parse(x, y string) error {
	var err error
	if c.X, err = strconv.Atoi(x); err != nil {
		return fmt.Errorf("parsing cell x: %w", err)
	}
	if c.Y, err = strconv.Atoi(y); err != nil {
		return fmt.Errorf("parsing cell y: %w", err)
	}
	return nil
}

// StateKey is the discretized situation of one drone.
type StateKey struct {
	Cell
	Animals  bool
	Poachers bool
	Mode     systems.SearchMode
}

// MarshalText implements encoding.TextMarshaler so keys can key JSON maps.
func (k StateKey) MarshalText() ([]byte, error) {
	return fmt.Appendf(nil, "%d,%d,%t,%t,%s", k.X, k.Y, k.Animals, k.Poachers, k.Mode), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *StateKey) UnmarshalText(b []byte) error {
	parts := strings.Split(string(b), ",")
	if len(parts) != 5 {
		return fmt.Errorf("parsing state key %q: want 5 fields, got %d", b, len(parts))
	}
	if err := k.Cell.parse(parts[0], parts[1]); err != nil {
		return err
	}
	var err error
	if k.Animals, err = strconv.ParseBool(parts[2]); err != nil {
		return fmt.Errorf("parsing state key animals: %w", err)
	}
	if k.Poachers, err = strconv.ParseBool(parts[3]); err != nil {
		return fmt.Errorf("parsing state key poachers: %w", err)
	}
	return k.Mode.UnmarshalText([]byte(parts[4]))
}

// QTable maps states to action values. A missing action reads as zero.
type QTable map[StateKey]map[Maneuver]float64

// Transition is one learning step.
type Transition struct {
	State  StateKey
	Action Maneuver
	Reward float64
	Next   StateKey
}

// pending is a drone's last decision, awaiting its reward.
type pending struct {
	state  StateKey
	action Maneuver
}

// RL is a tabular Q-learning drone controller with epsilon-greedy
// exploration and visit-count shaping.
type RL struct {
	cfg   *config.Config
	c     config.RLConfig
	rng   *rand.Rand
	catch catcher

	// learning grid cell size
	cellW, cellH float64

	q       QTable
	epsilon float64
	visits  map[Cell]int
	rewards []float64
	steps   int

	history  []Transition // ring of the latest transitions
	histNext int
	previous map[ecs.Entity]pending
	captures int
}

// NewRL creates an untrained optimizer.
func NewRL(cfg *config.Config, rng *rand.Rand, host Host) *RL {
	n := float64(max(cfg.RL.GridDivisions, 1))
	return &RL{
		cfg:      cfg,
		c:        cfg.RL,
		rng:      rng,
		catch:    newCatcher(cfg.Capture, rng, host),
		cellW:    cfg.World.Width / n,
		cellH:    cfg.World.Height / n,
		q:        make(QTable),
		epsilon:  cfg.RL.Epsilon,
		visits:   make(map[Cell]int),
		history:  make([]Transition, 0, max(cfg.RL.HistorySize, 1)),
		previous: make(map[ecs.Entity]pending),
	}
}

func (r *RL) Name() string { return config.OptimizerRL }

// Reset forgets the pending transition of every drone. The table, visit
// counts and exploration rate are kept.
func (r *RL) Reset() {
	clear(r.previous)
}

// Attach moves the optimizer to a new world and its random source, keeping
// what it learned.
func (r *RL) Attach(host Host, rng *rand.Rand) {
	r.rng = rng
	r.catch.rng = rng
	r.catch.host = host
	r.Reset()
}

// Q returns the value table.
func (r *RL) Q() QTable { return r.q }

// Epsilon returns the current exploration rate.
func (r *RL) Epsilon() float64 { return r.epsilon }

// Visits returns the visit count of a cell.
func (r *RL) Visits(c Cell) int { return r.visits[c] }

// History returns the retained transitions, oldest first.
func (r *RL) History() []Transition {
	if len(r.history) < cap(r.history) {
		return append([]Transition(nil), r.history...)
	}
	out := make([]Transition, 0, len(r.history))
	out = append(out, r.history[r.histNext:]...)
	return append(out, r.history[:r.histNext]...)
}

// CellOf bins a position onto the learning grid.
func (r *RL) CellOf(pos geom.Vector2) Cell {
	n := max(r.c.GridDivisions, 1)
	bin := func(v, size float64) int {
		i := int(v / size)
		return max(0, min(n-1, i))
	}
	return Cell{
		X: bin(pos.X, r.cellW),
		Y: bin(pos.Y, r.cellH),
	}
}

// Discretize builds the state key for a drone.
func (r *RL) Discretize(d systems.DroneView, animals, poachers []systems.Target) StateKey {
	return StateKey{
		Cell:     r.CellOf(d.Pos),
		Animals:  len(animals) > 0,
		Poachers: len(poachers) > 0,
		Mode:     d.Mode,
	}
}

// Reward scores the situation a drone ended up in.
func (r *RL) Reward(d systems.DroneView, animals, poachers []systems.Target, visits int) float64 {
	rw := r.c.Rewards
	var reward float64

	if len(animals) > 0 {
		reward += rw.AnimalDetect
	}
	if len(poachers) > 0 {
		reward += rw.PoacherDetect

		nearest := math.Inf(1)
		for _, p := range poachers {
			nearest = min(nearest, d.Pos.DistanceTo(p.Pos))
		}
		if nearest < rw.ProximityRange {
			reward += rw.Proximity * (1 - nearest/rw.ProximityRange)
		}
		if d.Mode != systems.ModeDeep {
			reward -= rw.ModePenalty
		}
	}
	if len(animals) == 0 && len(poachers) == 0 {
		reward -= rw.NoDetect
	}

	v := float64(visits)
	reward += rw.Novelty/(1+v) - rw.Crowding*math.Sqrt(v)
	return reward
}

func (r *RL) Optimize(drones []systems.DroneView, animals, poachers []systems.Target) map[ecs.Entity]Action {
	r.steps++
	if r.steps%r.c.DecayInterval == 0 {
		r.epsilon = max(r.c.EpsilonMin, r.epsilon*r.c.EpsilonDecay)
	}

	r.catch.begin()
	actions := make(map[ecs.Entity]Action, len(drones))
	for _, d := range drones {
		if _, ok := r.catch.try(d, poachers); ok {
			r.captures++
			r.recordReward(r.cfg.Capture.Reward)
		}

		state := r.Discretize(d, animals, poachers)
		r.visits[state.Cell]++

		if prev, ok := r.previous[d.Entity]; ok {
			reward := r.Reward(d, animals, poachers, r.visits[state.Cell])
			t := Transition{State: prev.state, Action: prev.action, Reward: reward, Next: state}
			r.remember(t)
			r.learn(t)
			r.recordReward(reward)
		}

		m := r.choose(state)
		r.previous[d.Entity] = pending{state: state, action: m}
		actions[d.Entity] = Action{
			NextState:     modeChange(r.cfg, d.Mode, m.Mode()),
			Direction:     m.Direction(),
			SpeedModifier: maneuverSpeed,
		}
	}
	return actions
}

// values returns the action values of state, zeros for unseen actions.
func (r *RL) values(state StateKey) []float64 {
	vals := make([]float64, NumManeuvers)
	for m, v := range r.q[state] {
		vals[m] = v
	}
	return vals
}

// choose picks an action epsilon-greedily. In one of the least visited cells
// the greedy pick is perturbed by jitter to keep exploring.
func (r *RL) choose(state StateKey) Maneuver {
	if _, ok := r.q[state]; !ok {
		r.q[state] = make(map[Maneuver]float64)
	}
	if r.rng.Float64() < r.epsilon {
		return Maneuver(r.rng.Intn(NumManeuvers))
	}

	vals := r.values(state)
	if r.leastVisited(state.Cell) {
		for i := range vals {
			vals[i] += r.rng.Float64() * r.c.Jitter
		}
		return Maneuver(floats.MaxIdx(vals))
	}

	best := floats.Max(vals)
	var ties []Maneuver
	for i, v := range vals {
		if v == best {
			ties = append(ties, Maneuver(i))
		}
	}
	return ties[r.rng.Intn(len(ties))]
}

// leastVisited reports whether c has the lowest visit count seen so far.
func (r *RL) leastVisited(c Cell) bool {
	n := r.visits[c]
	for _, v := range r.visits {
		if v < n {
			return false
		}
	}
	return true
}

// learn applies one-step Q-learning to t.
func (r *RL) learn(t Transition) {
	row, ok := r.q[t.State]
	if !ok {
		row = make(map[Maneuver]float64)
		r.q[t.State] = row
	}
	var next float64
	if nextRow := r.q[t.Next]; len(nextRow) > 0 {
		next = math.Inf(-1)
		for _, v := range nextRow {
			next = max(next, v)
		}
	}
	cur := row[t.Action]
	row[t.Action] = cur + r.c.Alpha*(t.Reward+r.c.Gamma*next-cur)
}

func (r *RL) remember(t Transition) {
	if cap(r.history) == 0 {
		return
	}
	if len(r.history) < cap(r.history) {
		r.history = append(r.history, t)
		return
	}
	r.history[r.histNext] = t
	r.histNext = (r.histNext + 1) % len(r.history)
}

func (r *RL) recordReward(v float64) {
	r.rewards = append(r.rewards, v)
	if len(r.rewards) > rewardHistoryCap {
		r.rewards = append(r.rewards[:0], r.rewards[len(r.rewards)-rewardHistoryCap:]...)
	}
}

// Metrics summarizes learning progress.
type Metrics struct {
	AvgReward float64
	StdReward float64
	Epsilon   float64
	States    int
	Entries   int
	Steps     int
	Captures  int
}

// LogValue implements slog.LogValuer for structured logging.
func (m Metrics) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("avg_reward", m.AvgReward),
		slog.Float64("std_reward", m.StdReward),
		slog.Float64("epsilon", m.Epsilon),
		slog.Int("states", m.States),
		slog.Int("entries", m.Entries),
		slog.Int("steps", m.Steps),
		slog.Int("captures", m.Captures),
	)
}

// Metrics returns the mean and spread of the latest rewards and the table size.
func (r *RL) Metrics() Metrics {
	m := Metrics{Epsilon: r.epsilon, States: len(r.q), Steps: r.steps, Captures: r.captures}
	for _, row := range r.q {
		m.Entries += len(row)
	}
	recent := r.rewards[max(0, len(r.rewards)-metricsWindow):]
	if len(recent) > 0 {
		m.AvgReward, m.StdReward = stat.MeanStdDev(recent, nil)
	}
	if len(recent) < 2 {
		m.StdReward = 0
	}
	return m
}
