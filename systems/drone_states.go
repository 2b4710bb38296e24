package systems

import (
	"fmt"

	"github.com/pthm-cable/ranger/config"
)

// SearchMode is a drone altitude/search mode.
type SearchMode uint8

const (
	// ModeWide flies high: large scan radius, full speed.
	ModeWide SearchMode = iota
	// ModeDeep flies low: reduced radius and speed, higher detection of
	// concealed targets.
	ModeDeep
)

// String returns the mode name.
func (m SearchMode) String() string {
	if m == ModeDeep {
		return "deep"
	}
	return "wide"
}

// MarshalText implements encoding.TextMarshaler.
func (m SearchMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *SearchMode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "wide":
		*m = ModeWide
	case "deep":
		*m = ModeDeep
	default:
		return fmt.Errorf("unknown search mode %q", b)
	}
	return nil
}

// DroneState is implemented by the drone search states.
type DroneState interface {
	State
	Mode() SearchMode
}

// droneSearch flies along the heading last commanded by the optimizer. Mode
// changes come only from optimizer actions.
type droneSearch struct {
	binding
	mode SearchMode
	mods Modifiers
}

func (s *droneSearch) Name() string {
	return s.mode.String() + "_search"
}

func (s *droneSearch) Modifiers() Modifiers { return s.mods }

func (s *droneSearch) Mode() SearchMode { return s.mode }

func (s *droneSearch) Action(w *World) {
	e, ok := s.Agent()
	if !ok {
		return
	}
	d := w.Drone(e)
	if d.Heading.IsZero() || d.Speed <= 0 {
		return
	}
	w.Move(e, d.Heading, d.Speed, MoveAlong)
}

func (s *droneSearch) CheckTransition(*World) State { return nil }

// NewWideSearch returns a fresh wide-search state.
func NewWideSearch(cfg *config.Config) DroneState {
	return &droneSearch{mode: ModeWide, mods: ModifiersFrom(cfg.Drone.Wide)}
}

// NewDeepSearch returns a fresh deep-search state.
func NewDeepSearch(cfg *config.Config) DroneState {
	return &droneSearch{mode: ModeDeep, mods: ModifiersFrom(cfg.Drone.Deep)}
}

// NewSearchState returns a fresh state for mode.
func NewSearchState(cfg *config.Config, mode SearchMode) DroneState {
	if mode == ModeDeep {
		return NewDeepSearch(cfg)
	}
	return NewWideSearch(cfg)
}
