package systems

import (
	"github.com/pthm-cable/ranger/config"
	"github.com/pthm-cable/ranger/geom"
)

// AnimalIdle grazes with the herd: cohesion toward the herd centroid,
// separation from crowding herd-mates and random jitter.
type AnimalIdle struct {
	binding
	mods  Modifiers
	blend config.BlendConfig
}

// NewAnimalIdle returns a fresh idle state.
func NewAnimalIdle(cfg *config.Config) *AnimalIdle {
	return &AnimalIdle{mods: ModifiersFrom(cfg.Animal.Idle), blend: cfg.Animal.Blend}
}

func (s *AnimalIdle) Name() string { return "idle" }

func (s *AnimalIdle) Modifiers() Modifiers { return s.mods }

func (s *AnimalIdle) Action(w *World) {
	e, ok := s.Agent()
	if !ok {
		return
	}
	dir := s.Steering(w)
	if dir.IsZero() {
		return
	}
	w.Move(e, dir, 1, MoveAlong)
}

// Steering returns the normalized blend of the herd vectors.
func (s *AnimalIdle) Steering(w *World) geom.Vector2 {
	e, _ := s.Agent()
	a := w.Animal(e)
	pos := w.Position(e)

	var cohesion, separation geom.Vector2
	if len(a.Herd) > 0 {
		var centroid geom.Vector2
		for _, mate := range a.Herd {
			mp := w.Position(mate)
			centroid = centroid.Add(mp)
			if d := pos.DistanceTo(mp); d < a.Separation {
				// Closer mates push harder
				push := pos.Sub(mp).Normalize().Scale((a.Separation - d) / a.Separation)
				separation = separation.Add(push)
			}
		}
		centroid = centroid.Scale(1 / float64(len(a.Herd)))
		cohesion = centroid.Sub(pos).Normalize()
	}

	rng := w.Rand()
	jitter := geom.V(rng.Float64()*2-1, rng.Float64()*2-1).Normalize()

	return cohesion.Scale(s.blend.Cohesion).
		Add(separation.Normalize().Scale(s.blend.Separation)).
		Add(jitter.Scale(s.blend.Jitter)).
		Normalize()
}

func (s *AnimalIdle) CheckTransition(w *World) State {
	e, _ := s.Agent()
	a := w.Animal(e)
	if !a.HasThreat {
		return nil
	}
	if w.Position(e).DistanceTo(w.Position(a.Threat)) <= a.ThreatRange {
		return NewFleeing(w.Config())
	}
	return nil
}

// Fleeing runs directly away from the current threat.
type Fleeing struct {
	binding
	mods    Modifiers
	release float64
}

// NewFleeing returns a fresh fleeing state.
func NewFleeing(cfg *config.Config) *Fleeing {
	return &Fleeing{mods: ModifiersFrom(cfg.Animal.Flee), release: cfg.Animal.FleeRelease}
}

func (s *Fleeing) Name() string { return "fleeing" }

func (s *Fleeing) Modifiers() Modifiers { return s.mods }

func (s *Fleeing) Action(w *World) {
	e, ok := s.Agent()
	if !ok {
		return
	}
	a := w.Animal(e)
	if !a.HasThreat {
		return
	}
	w.Move(e, w.Position(a.Threat), 1, MoveAway)
}

// CheckTransition returns to idle once the threat is gone or far enough away.
func (s *Fleeing) CheckTransition(w *World) State {
	e, _ := s.Agent()
	a := w.Animal(e)
	if !a.HasThreat || w.IsTerminal(a.Threat) {
		return NewAnimalIdle(w.Config())
	}
	if w.Position(e).DistanceTo(w.Position(a.Threat)) > a.ThreatRange*s.release {
		return NewAnimalIdle(w.Config())
	}
	return nil
}
