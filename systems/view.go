package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ranger/geom"
)

// DroneView is the optimizer's read-only picture of one drone.
type DroneView struct {
	Entity    ecs.Entity
	Pos       geom.Vector2
	Mode      SearchMode
	ScanRange float64 // effective, after the mode modifier
}

// Target is a detected animal or poacher as seen by the optimizer.
type Target struct {
	Entity    ecs.Entity
	Pos       geom.Vector2
	ScanRange float64 // the target's own effective scan range
}

// DroneView builds the view of drone e.
func (w *World) DroneView(e ecs.Entity) DroneView {
	v := DroneView{Entity: e, Pos: w.Position(e), ScanRange: w.ScanRange(e)}
	if s, ok := w.State(e).(DroneState); ok {
		v.Mode = s.Mode()
	}
	return v
}

// TargetView builds the view of e.
func (w *World) TargetView(e ecs.Entity) Target {
	return Target{Entity: e, Pos: w.Position(e), ScanRange: w.ScanRange(e)}
}

// Command applies an optimizer decision to drone e: the mode change (if
// any), heading and speed multiplier. The drone moves on its next Action.
func (w *World) Command(e ecs.Entity, next DroneState, heading geom.Vector2, speed float64) {
	if next != nil {
		w.SetState(e, next)
	}
	d := w.Drone(e)
	d.Heading = heading
	d.Speed = speed
}
