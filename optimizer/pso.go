package optimizer

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ranger/config"
	"github.com/pthm-cable/ranger/geom"
	"github.com/pthm-cable/ranger/systems"
)

// fitnessScale is the numerator of the inverse-distance attraction terms.
const fitnessScale = 100

// Particle is one virtual search point of a drone's swarm.
type Particle struct {
	Position     geom.Vector2
	Velocity     geom.Vector2
	Fitness      float64
	LastPosition geom.Vector2
	Stagnation   int
	Best         geom.Vector2
}

// Swarm is the particle set owned by one drone.
type Swarm struct {
	Particles   []Particle
	Best        geom.Vector2
	BestFitness float64
}

// PSO steers each drone toward the global best of its own particle swarm.
type PSO struct {
	cfg    *config.Config
	c      config.PSOConfig
	rng    *rand.Rand
	bounds geom.Bounds
	catch  catcher

	swarms map[ecs.Entity]*Swarm
}

// NewPSO creates a particle swarm optimizer.
func NewPSO(cfg *config.Config, rng *rand.Rand, host Host) *PSO {
	return &PSO{
		cfg:    cfg,
		c:      cfg.PSO,
		rng:    rng,
		bounds: geom.Bounds{Width: cfg.World.Width, Height: cfg.World.Height},
		catch:  newCatcher(cfg.Capture, rng, host),
		swarms: make(map[ecs.Entity]*Swarm),
	}
}

func (p *PSO) Name() string { return config.OptimizerPSO }

// Reset drops every swarm.
func (p *PSO) Reset() {
	clear(p.swarms)
}

// Attach moves the optimizer to a new world and its random source.
func (p *PSO) Attach(host Host, rng *rand.Rand) {
	p.rng = rng
	p.catch.rng = rng
	p.catch.host = host
	p.Reset()
}

// Swarm returns the swarm of drone e, or nil before its first Optimize.
func (p *PSO) Swarm(e ecs.Entity) *Swarm {
	return p.swarms[e]
}

// swarmFor lazily creates a swarm spread uniformly over the field.
func (p *PSO) swarmFor(e ecs.Entity) *Swarm {
	if s, ok := p.swarms[e]; ok {
		return s
	}
	s := &Swarm{Particles: make([]Particle, p.c.Particles)}
	vmax := p.c.MaxVelocity
	for i := range s.Particles {
		pos := geom.V(p.rng.Float64()*p.bounds.Width, p.rng.Float64()*p.bounds.Height)
		vel := geom.V((p.rng.Float64()*2-1)*vmax, (p.rng.Float64()*2-1)*vmax)
		s.Particles[i] = Particle{Position: pos, Velocity: vel, LastPosition: pos, Best: pos}
	}
	s.Best = s.Particles[0].Position
	p.swarms[e] = s
	return s
}

// Fitness scores a position for a drone in mode. Higher is better.
func (p *PSO) Fitness(pos geom.Vector2, mode systems.SearchMode, animals, poachers []systems.Target, stagnation int) float64 {
	var f float64
	for _, t := range poachers {
		f += p.c.PoacherWeight * fitnessScale / (pos.DistanceTo(t.Pos) + 1)
	}
	for _, t := range animals {
		f += p.c.AnimalWeight * fitnessScale / (pos.DistanceTo(t.Pos) + 1)
	}
	if mode == systems.ModeWide {
		f += p.c.WideBonus
		// Poachers lurk just outside the herd's own detection range.
		for _, t := range animals {
			ring := t.ScanRange * (1 + p.rng.Float64()*p.c.RingTolerance)
			diff := pos.DistanceTo(t.Pos) - ring
			if diff < 0 {
				diff = -diff
			}
			f += p.c.RingWeight * fitnessScale / (diff + 1)
		}
	}
	if stagnation > p.c.StagnationLimit {
		f -= p.c.StagnationPenalty
	}
	return f
}

func (p *PSO) Optimize(drones []systems.DroneView, animals, poachers []systems.Target) map[ecs.Entity]Action {
	p.catch.begin()
	actions := make(map[ecs.Entity]Action, len(drones))
	for _, d := range drones {
		p.catch.try(d, poachers)
		s := p.swarmFor(d.Entity)
		p.step(s, d.Mode, animals, poachers)
		actions[d.Entity] = p.decide(d, s, animals)
	}
	return actions
}

// step evaluates every particle, updates the bests and then moves the swarm.
func (p *PSO) step(s *Swarm, mode systems.SearchMode, animals, poachers []systems.Target) {
	// Targets move, so stored bests are re-scored against this tick's detections.
	s.BestFitness = p.Fitness(s.Best, mode, animals, poachers, 0)

	for i := range s.Particles {
		pt := &s.Particles[i]
		if pt.Position.DistanceTo(pt.LastPosition) < p.c.StagnationDelta {
			pt.Stagnation++
		} else {
			pt.Stagnation = 0
		}
		pt.LastPosition = pt.Position

		pt.Fitness = p.Fitness(pt.Position, mode, animals, poachers, pt.Stagnation)
		if pt.Fitness > p.Fitness(pt.Best, mode, animals, poachers, 0) {
			pt.Best = pt.Position
		}
		if pt.Fitness > s.BestFitness {
			s.Best = pt.Position
			s.BestFitness = pt.Fitness
		}
	}

	for i := range s.Particles {
		pt := &s.Particles[i]
		r1, r2 := p.rng.Float64(), p.rng.Float64()
		cognitive := pt.Best.Sub(pt.Position).Scale(p.c.C1 * r1)
		social := s.Best.Sub(pt.Position).Scale(p.c.C2 * r2)
		pt.Velocity = pt.Velocity.Scale(p.c.W).Add(cognitive).Add(social).Limit(p.c.MaxVelocity)
		pt.Position = pt.Position.Add(pt.Velocity).Clamp(p.bounds)
	}
}

// decide heads for the global best and goes deep only once a detected animal
// is inside the drone's own scan range.
func (p *PSO) decide(d systems.DroneView, s *Swarm, animals []systems.Target) Action {
	want := systems.ModeWide
	for _, a := range animals {
		if d.Pos.DistanceTo(a.Pos) <= d.ScanRange {
			want = systems.ModeDeep
			break
		}
	}
	return Action{
		NextState:     modeChange(p.cfg, d.Mode, want),
		Direction:     s.Best.Sub(d.Pos).Normalize(),
		SpeedModifier: 1,
	}
}
