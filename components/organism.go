package components

import "fmt"

// Kind distinguishes the three agent roles.
type Kind uint8

const (
	KindDrone Kind = iota
	KindAnimal
	KindPoacher
)

// String returns the lowercase role name.
func (k Kind) String() string {
	switch k {
	case KindDrone:
		return "drone"
	case KindAnimal:
		return "animal"
	case KindPoacher:
		return "poacher"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "drone":
		*k = KindDrone
	case "animal":
		*k = KindAnimal
	case "poacher":
		*k = KindPoacher
	default:
		return fmt.Errorf("unknown agent kind %q", text)
	}
	return nil
}

// Identity names an agent. Order is the spawn ordinal, used for
// deterministic iteration independent of ECS storage order.
type Identity struct {
	ID    uint32
	Order int
	Name  string
	Kind  Kind
}

// Status tracks liveness. Terminal agents keep their last position and state
// but never act again.
type Status struct {
	Terminal     bool
	TerminalTick int32
}
