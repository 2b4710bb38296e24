package systems

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ranger/config"
)

// Modifiers scale an agent's base parameters while a state is active.
type Modifiers struct {
	Speed     float64 // multiplies base speed
	ScanRange float64 // multiplies base scan radius
	Detection float64 // probability of detecting concealed targets, in [0,1]
}

// ModifiersFrom converts a config block.
func ModifiersFrom(c config.ModifierConfig) Modifiers {
	return Modifiers{Speed: c.Speed, ScanRange: c.ScanRange, Detection: c.Detection}
}

// State is one behavior of an agent. A state is created unbound, bound to
// exactly one agent by Enter and unbound by Exit. Transitions always create a
// fresh instance, so per-state counters never leak between agents.
type State interface {
	Name() string
	Modifiers() Modifiers

	// Agent returns the bound entity, if any.
	Agent() (ecs.Entity, bool)

	Enter(w *World, e ecs.Entity)
	Exit()

	// Action moves the bound agent for one tick.
	Action(w *World)

	// CheckTransition returns the next state, or nil to stay.
	CheckTransition(w *World) State

	// Terminal reports an absorbing state.
	Terminal() bool
}

// binding implements the Agent/Enter/Exit part of State.
type binding struct {
	agent ecs.Entity
	bound bool
}

func (b *binding) Agent() (ecs.Entity, bool) {
	return b.agent, b.bound
}

func (b *binding) Enter(_ *World, e ecs.Entity) {
	if b.bound && b.agent != e {
		panic(fmt.Sprintf("systems: state already bound to entity %d", b.agent.ID()))
	}
	b.agent = e
	b.bound = true
}

func (b *binding) Exit() {
	b.agent = ecs.Entity{}
	b.bound = false
}

func (b *binding) Terminal() bool {
	return false
}

// Behavior is the ECS component holding an agent's active state.
type Behavior struct {
	State State
}

// SetState replaces the active state of e: the outgoing state is exited,
// the reference swapped, and the incoming state entered.
func (w *World) SetState(e ecs.Entity, next State) {
	if next == nil {
		panic("systems: SetState with nil state")
	}
	if owner, ok := next.Agent(); ok && owner != e {
		panic(fmt.Sprintf("systems: state %s is bound to entity %d", next.Name(), owner.ID()))
	}
	b := w.behaviorMap.Get(e)
	if b.State != nil {
		b.State.Exit()
	}
	b.State = next
	next.Enter(w, e)
}

// State returns the active state of e.
func (w *World) State(e ecs.Entity) State {
	return w.behaviorMap.Get(e).State
}

// stepAgent runs one state machine step: transition check, then action.
// Terminal agents are skipped.
func (w *World) stepAgent(e ecs.Entity) {
	if w.IsTerminal(e) {
		return
	}
	if next := w.State(e).CheckTransition(w); next != nil {
		w.SetState(e, next)
	}
	w.State(e).Action(w)
}

// terminalState is the absorbing state shared by dead animals and captured
// poachers.
type terminalState struct {
	binding
	name string
}

func (s *terminalState) Name() string { return s.name }

// Modifiers returns all-zero modifiers.
func (s *terminalState) Modifiers() Modifiers { return Modifiers{} }

func (s *terminalState) Action(*World) {}

func (s *terminalState) CheckTransition(*World) State { return nil }

func (s *terminalState) Terminal() bool { return true }

// NewDead returns the terminal state for a killed animal.
func NewDead() State {
	return &terminalState{name: "dead"}
}

// NewCaptured returns the terminal state for a captured poacher.
func NewCaptured() State {
	return &terminalState{name: "captured"}
}
