package components

import "github.com/pthm-cable/ranger/geom"

// Position represents an agent's location on the field.
type Position struct {
	geom.Vector2
}

// Motion holds the base movement and perception parameters of an agent.
// Active state modifiers scale both at use time.
type Motion struct {
	BaseSpeed float64
	ScanRange float64
}
