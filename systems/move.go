package systems

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ranger/geom"
)

// MoveMode selects how Move interprets its vector argument.
type MoveMode uint8

const (
	// MoveAlong treats the vector as a heading.
	MoveAlong MoveMode = iota
	// MoveToward treats the vector as a point to approach.
	MoveToward
	// MoveAway treats the vector as a point to flee from.
	MoveAway
)

// String returns the mode name.
func (m MoveMode) String() string {
	switch m {
	case MoveAlong:
		return "along"
	case MoveToward:
		return "toward"
	case MoveAway:
		return "away"
	}
	return fmt.Sprintf("MoveMode(%d)", uint8(m))
}

// Move advances e by base speed × state speed modifier × scale in the
// direction selected by mode, then clamps the result to the field. Approaching
// a point never overshoots it. An unknown mode is a programming error and
// panics.
func (w *World) Move(e ecs.Entity, v geom.Vector2, scale float64, mode MoveMode) {
	pos := w.posMap.Get(e)
	step := w.motionMap.Get(e).BaseSpeed * w.State(e).Modifiers().Speed * scale

	var dir geom.Vector2
	switch mode {
	case MoveAlong:
		dir = v.Normalize()
	case MoveToward:
		delta := v.Sub(pos.Vector2)
		if d := delta.Len(); d < step {
			step = d
		}
		dir = delta.Normalize()
	case MoveAway:
		dir = pos.Vector2.Sub(v).Normalize()
	default:
		panic(fmt.Sprintf("systems: invalid move mode %v", mode))
	}

	pos.Vector2 = pos.Vector2.Add(dir.Scale(step)).Clamp(w.bounds)
}

// Place sets the position of e directly, clamped to the field.
func (w *World) Place(e ecs.Entity, p geom.Vector2) {
	w.posMap.Get(e).Vector2 = p.Clamp(w.bounds)
}
