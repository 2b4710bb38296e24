package systems

import (
	"math"

	"github.com/pthm-cable/ranger/config"
	"github.com/pthm-cable/ranger/geom"
	"github.com/pthm-cable/ranger/telemetry"
)

// sweepTurn is the heading change applied each time a sweep interval elapses.
const sweepTurn = math.Pi / 4

// PoacherIdle searches for prey. A remembered sighting is revisited first;
// otherwise the poacher sweeps (or patrols hotspots, when configured).
type PoacherIdle struct {
	binding
	mods Modifiers

	strategy string
	ttl      int

	// sweep
	angle    float64
	interval float64
	growth   float64
	elapsed  int
	aimed    bool

	// hotspot patrol
	hotspots []geom.Vector2
	reach    float64
	next     int
}

// NewPoacherIdle returns a fresh idle state.
func NewPoacherIdle(cfg *config.Config) *PoacherIdle {
	c := cfg.Poacher
	hotspots := make([]geom.Vector2, len(c.Hotspots))
	for i, p := range c.Hotspots {
		hotspots[i] = geom.V(p.X, p.Y)
	}
	return &PoacherIdle{
		mods:     ModifiersFrom(c.Idle),
		strategy: c.Search,
		ttl:      c.MemoryTTL,
		interval: float64(c.SweepInterval),
		growth:   c.SweepGrowth,
		hotspots: hotspots,
		reach:    c.HotspotReach,
	}
}

func (s *PoacherIdle) Name() string { return "idle" }

func (s *PoacherIdle) Modifiers() Modifiers { return s.mods }

// Heading returns the current sweep heading in radians.
func (s *PoacherIdle) Heading() float64 { return s.angle }

func (s *PoacherIdle) Action(w *World) {
	e, ok := s.Agent()
	if !ok {
		return
	}
	p := w.Poacher(e)
	pos := w.Position(e)

	if sighting, ok := p.Memory.Latest(w.Tick(), s.ttl); ok {
		if pos.DistanceTo(sighting.Pos) <= s.reach {
			p.Memory.Forget(sighting.Pos, s.reach)
		} else {
			w.Move(e, sighting.Pos, 1, MoveToward)
			return
		}
	}

	if s.strategy == config.SearchHotspots && len(s.hotspots) > 0 {
		s.patrol(w)
		return
	}
	s.sweep(w)
}

// sweep moves along the current heading, turning by sweepTurn whenever the
// interval elapses. The interval grows after every turn.
func (s *PoacherIdle) sweep(w *World) {
	e, _ := s.Agent()
	if !s.aimed {
		s.angle = w.Rand().Float64() * 2 * math.Pi
		s.aimed = true
	}
	s.elapsed++
	if float64(s.elapsed) >= s.interval {
		s.angle = math.Mod(s.angle+sweepTurn, 2*math.Pi)
		s.interval *= s.growth
		s.elapsed = 0
	}
	w.Move(e, geom.FromAngle(s.angle), 1, MoveAlong)
}

// patrol visits the hotspots in order, cycling forever.
func (s *PoacherIdle) patrol(w *World) {
	e, _ := s.Agent()
	goal := s.hotspots[s.next]
	if w.Position(e).DistanceTo(goal) <= s.reach {
		s.next = (s.next + 1) % len(s.hotspots)
		goal = s.hotspots[s.next]
	}
	w.Move(e, goal, 1, MoveToward)
}

func (s *PoacherIdle) CheckTransition(w *World) State {
	e, _ := s.Agent()
	p := w.Poacher(e)
	if p.HasTarget && !w.IsTerminal(p.Target) {
		return NewHunting(w.Config())
	}
	return nil
}

// Hunting stalks the target directly.
type Hunting struct {
	binding
	mods Modifiers
}

// NewHunting returns a fresh hunting state.
func NewHunting(cfg *config.Config) *Hunting {
	return &Hunting{mods: ModifiersFrom(cfg.Poacher.Hunting)}
}

func (s *Hunting) Name() string { return "hunting" }

func (s *Hunting) Modifiers() Modifiers { return s.mods }

func (s *Hunting) Action(w *World) {
	e, ok := s.Agent()
	if !ok {
		return
	}
	p := w.Poacher(e)
	if !p.HasTarget {
		return
	}
	w.Move(e, w.Position(p.Target), 1, MoveToward)
}

func (s *Hunting) CheckTransition(w *World) State {
	e, _ := s.Agent()
	p := w.Poacher(e)
	if !p.HasTarget || w.IsTerminal(p.Target) {
		return NewPoacherIdle(w.Config())
	}
	if w.Position(e).DistanceTo(w.Position(p.Target)) < p.AttackRange {
		return NewAttacking(w.Config())
	}
	return nil
}

// Attacking closes on the target and raises damage events while in kill
// range. Health is never changed here; the game resolves attacks.
type Attacking struct {
	binding
	mods     Modifiers
	duration int
	cooldown int

	attackTime int
	recharge   int
}

// NewAttacking returns a fresh attacking state.
func NewAttacking(cfg *config.Config) *Attacking {
	return &Attacking{
		mods:     ModifiersFrom(cfg.Poacher.Attacking),
		duration: cfg.Poacher.AttackDuration,
		cooldown: cfg.Poacher.AttackCooldown,
	}
}

func (s *Attacking) Name() string { return "attacking" }

func (s *Attacking) Modifiers() Modifiers { return s.mods }

// AttackTime returns the ticks spent in this attack.
func (s *Attacking) AttackTime() int { return s.attackTime }

func (s *Attacking) Action(w *World) {
	e, ok := s.Agent()
	if !ok {
		return
	}
	p := w.Poacher(e)
	if !p.HasTarget {
		return
	}
	s.attackTime++
	if s.recharge > 0 {
		s.recharge--
	}

	target := w.Position(p.Target)
	w.Move(e, target, 1, MoveToward)

	if w.Position(e).DistanceTo(target) <= p.KillRange && s.recharge == 0 {
		w.Emit(telemetry.NewAnimalAttackedEvent(w.Tick(), e, p.Target, p.AttackDamage))
		s.recharge = s.cooldown
	}
}

// CheckTransition falls back to idle without a live target and to hunting
// once the target escapes attack range or the attack runs its course.
func (s *Attacking) CheckTransition(w *World) State {
	e, _ := s.Agent()
	p := w.Poacher(e)
	if !p.HasTarget || w.IsTerminal(p.Target) {
		return NewPoacherIdle(w.Config())
	}
	if w.Position(e).DistanceTo(w.Position(p.Target)) >= p.AttackRange || s.attackTime >= s.duration {
		return NewHunting(w.Config())
	}
	return nil
}
