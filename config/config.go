// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Optimizer names accepted by sim.optimizer.
const (
	OptimizerPSO = "pso"
	OptimizerRL  = "rl"
)

// ErrUnknownOptimizer reports a sim.optimizer value no optimizer is registered under.
var ErrUnknownOptimizer = errors.New("unknown optimizer")

// Poacher idle search strategies.
const (
	SearchSweep    = "sweep"
	SearchHotspots = "hotspots"
)

// Config holds all simulation configuration parameters.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Sim       SimConfig       `yaml:"sim"`
	Drone     DroneConfig     `yaml:"drone"`
	Animal    AnimalConfig    `yaml:"animal"`
	Poacher   PoacherConfig   `yaml:"poacher"`
	Capture   CaptureConfig   `yaml:"capture"`
	PSO       PSOConfig       `yaml:"pso"`
	RL        RLConfig        `yaml:"rl"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// WorldConfig holds the field dimensions.
type WorldConfig struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	GridCellSize float64 `yaml:"grid_cell_size"` // spatial index cell size
}

// SimConfig holds run-level settings.
type SimConfig struct {
	Seed      int64  `yaml:"seed"`      // 0 = time-based
	MaxTicks  int    `yaml:"max_ticks"` // tick budget ceiling
	Optimizer string `yaml:"optimizer"` // "pso" or "rl"
}

// Point is a position in config files.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// ModifierConfig holds the per-state multipliers.
type ModifierConfig struct {
	Speed     float64 `yaml:"speed"`
	ScanRange float64 `yaml:"scan_range"`
	Detection float64 `yaml:"detection"`
}

// DroneConfig holds drone parameters.
type DroneConfig struct {
	Count     int            `yaml:"count"`
	Speed     float64        `yaml:"speed"`
	ScanRange float64        `yaml:"scan_range"`
	Wide      ModifierConfig `yaml:"wide"`
	Deep      ModifierConfig `yaml:"deep"`
	Spawn     []Point        `yaml:"spawn"` // fixed spawn points; random when shorter than count
}

// AnimalConfig holds herd animal parameters.
type AnimalConfig struct {
	Count       int     `yaml:"count"`
	Speed       float64 `yaml:"speed"`
	ScanRange   float64 `yaml:"scan_range"`
	ThreatRange float64 `yaml:"threat_range"`
	Separation  float64 `yaml:"separation"`
	Health      float64 `yaml:"health"`
	FleeRelease float64 `yaml:"flee_release"` // fleeing stops beyond threat_range * this

	Idle  ModifierConfig `yaml:"idle"`
	Flee  ModifierConfig `yaml:"flee"`
	Blend BlendConfig    `yaml:"blend"`

	Spawn       []Point `yaml:"spawn"`
	SpawnRadius float64 `yaml:"spawn_radius"` // random herd scatter around the field center
}

// BlendConfig weights the idle herd steering vectors.
type BlendConfig struct {
	Cohesion   float64 `yaml:"cohesion"`
	Separation float64 `yaml:"separation"`
	Jitter     float64 `yaml:"jitter"`
}

// PoacherConfig holds poacher parameters.
type PoacherConfig struct {
	Count          int     `yaml:"count"`
	Speed          float64 `yaml:"speed"`
	ScanRange      float64 `yaml:"scan_range"`
	AttackRange    float64 `yaml:"attack_range"`
	KillRange      float64 `yaml:"kill_range"`
	Damage         float64 `yaml:"damage"`
	AttackCooldown int     `yaml:"attack_cooldown"` // ticks between damage events while in kill range
	AttackDuration int     `yaml:"attack_duration"` // ticks before an attack is re-evaluated
	MemorySize     int     `yaml:"memory_size"`
	MemoryTTL      int     `yaml:"memory_ttl"`     // ticks a sighting stays usable
	SweepInterval  int     `yaml:"sweep_interval"` // ticks before the first sweep turn
	SweepGrowth    float64 `yaml:"sweep_growth"`   // interval multiplier after each turn
	Search         string  `yaml:"search"`         // "sweep" or "hotspots"
	Hotspots       []Point `yaml:"hotspots"`
	HotspotReach   float64 `yaml:"hotspot_reach"` // distance at which a hotspot counts as visited

	Idle      ModifierConfig `yaml:"idle"`
	Hunting   ModifierConfig `yaml:"hunting"`
	Attacking ModifierConfig `yaml:"attacking"`

	Spawn []Point `yaml:"spawn"`
}

// CaptureConfig holds the stochastic capture model.
type CaptureConfig struct {
	Threshold float64 `yaml:"threshold"` // max capture distance
	Floor     float64 `yaml:"floor"`     // probability at threshold
	Reward    float64 `yaml:"reward"`    // bookkeeping reward recorded on capture
}

// PSOConfig holds particle swarm parameters.
type PSOConfig struct {
	Particles         int     `yaml:"particles"`
	W                 float64 `yaml:"w"`
	C1                float64 `yaml:"c1"`
	C2                float64 `yaml:"c2"`
	MaxVelocity       float64 `yaml:"max_velocity"`
	StagnationDelta   float64 `yaml:"stagnation_delta"`
	StagnationLimit   int     `yaml:"stagnation_limit"`
	StagnationPenalty float64 `yaml:"stagnation_penalty"`
	PoacherWeight     float64 `yaml:"poacher_weight"`
	AnimalWeight      float64 `yaml:"animal_weight"`
	RingWeight        float64 `yaml:"ring_weight"`
	RingTolerance     float64 `yaml:"ring_tolerance"` // ring radius sampled in [scan, scan*(1+tol)]
	WideBonus         float64 `yaml:"wide_bonus"`
}

// RewardConfig holds RL reward shaping terms.
type RewardConfig struct {
	AnimalDetect   float64 `yaml:"animal_detect"`
	PoacherDetect  float64 `yaml:"poacher_detect"`
	Proximity      float64 `yaml:"proximity"`
	ProximityRange float64 `yaml:"proximity_range"`
	NoDetect       float64 `yaml:"no_detect"`
	ModePenalty    float64 `yaml:"mode_penalty"`
	Novelty        float64 `yaml:"novelty"`
	Crowding       float64 `yaml:"crowding"`
}

// RLConfig holds Q-learning parameters.
type RLConfig struct {
	Alpha         float64      `yaml:"alpha"`
	Gamma         float64      `yaml:"gamma"`
	Epsilon       float64      `yaml:"epsilon"`
	EpsilonMin    float64      `yaml:"epsilon_min"`
	EpsilonDecay  float64      `yaml:"epsilon_decay"`
	DecayInterval int          `yaml:"decay_interval"`
	GridDivisions int          `yaml:"grid_divisions"`
	HistorySize   int          `yaml:"history_size"`
	Jitter        float64      `yaml:"jitter"`
	Rewards       RewardConfig `yaml:"rewards"`
	ModelPath     string       `yaml:"model_path"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // ticks per stats window
	PerfWindow  int `yaml:"perf_window"`  // ticks per perf rolling window
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	return cfg, nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Drone.Spawn = append([]Point(nil), c.Drone.Spawn...)
	out.Animal.Spawn = append([]Point(nil), c.Animal.Spawn...)
	out.Poacher.Spawn = append([]Point(nil), c.Poacher.Spawn...)
	out.Poacher.Hotspots = append([]Point(nil), c.Poacher.Hotspots...)
	return &out
}

// Validate reports configuration errors that must stop a run before it starts.
func (c *Config) Validate() error {
	var errs []error

	switch c.Sim.Optimizer {
	case OptimizerPSO, OptimizerRL:
	default:
		errs = append(errs, fmt.Errorf("sim.optimizer %q: %w", c.Sim.Optimizer, ErrUnknownOptimizer))
	}
	switch c.Poacher.Search {
	case SearchSweep, SearchHotspots:
	default:
		errs = append(errs, fmt.Errorf("poacher.search: unknown strategy %q", c.Poacher.Search))
	}
	if c.Poacher.Search == SearchHotspots && len(c.Poacher.Hotspots) == 0 {
		errs = append(errs, errors.New("poacher.hotspots: required for hotspot search"))
	}

	if c.World.Width <= 0 || c.World.Height <= 0 {
		errs = append(errs, fmt.Errorf("world: size must be positive, got %vx%v", c.World.Width, c.World.Height))
	}
	if c.World.GridCellSize <= 0 {
		errs = append(errs, errors.New("world.grid_cell_size: must be positive"))
	}
	if c.Poacher.AttackCooldown < 1 || c.Poacher.AttackDuration < 1 {
		errs = append(errs, errors.New("poacher.attack_cooldown, attack_duration: must be at least 1"))
	}
	if c.Poacher.MemorySize < 1 {
		errs = append(errs, errors.New("poacher.memory_size: must be at least 1"))
	}
	if c.Capture.Threshold <= 0 {
		errs = append(errs, errors.New("capture.threshold: must be positive"))
	}
	if c.Capture.Floor < 0 || c.Capture.Floor >= 1 {
		errs = append(errs, fmt.Errorf("capture.floor: must be in [0,1), got %v", c.Capture.Floor))
	}
	if c.PSO.Particles < 1 {
		errs = append(errs, errors.New("pso.particles: must be at least 1"))
	}
	if c.PSO.PoacherWeight < 2*c.PSO.AnimalWeight {
		errs = append(errs, fmt.Errorf("pso.poacher_weight: must be at least twice animal_weight (%v < 2*%v)",
			c.PSO.PoacherWeight, c.PSO.AnimalWeight))
	}
	if c.RL.GridDivisions < 1 {
		errs = append(errs, errors.New("rl.grid_divisions: must be at least 1"))
	}
	if c.RL.DecayInterval < 1 {
		errs = append(errs, errors.New("rl.decay_interval: must be at least 1"))
	}
	if c.RL.Epsilon < 0 || c.RL.Epsilon > 1 || c.RL.EpsilonMin < 0 || c.RL.EpsilonMin > c.RL.Epsilon {
		errs = append(errs, fmt.Errorf("rl.epsilon: need 0 <= epsilon_min <= epsilon <= 1, got %v/%v",
			c.RL.EpsilonMin, c.RL.Epsilon))
	}

	return errors.Join(errs...)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
