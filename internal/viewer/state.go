package viewer

import "github.com/google/uuid"

// Kind tags the interaction state
type Kind int

const (
	KindIdle Kind = iota
	KindHovered
	KindSelected
)

func (k Kind) String() string {
	switch k {
	case KindHovered:
		return "hovered"
	case KindSelected:
		return "selected"
	default:
		return "idle"
	}
}

// State is Idle, Hovered(fact) or Selected(fact). A single value holds both
// hover and selection, so a selected viewer can never also be hovering.
type State struct {
	Kind   Kind
	FactID uuid.UUID // Zero when Kind is KindIdle
}

// Idle returns the state with nothing hovered or selected
func Idle() State {
	return State{Kind: KindIdle}
}

// Hovered returns the state hovering the fact
func Hovered(id uuid.UUID) State {
	return State{Kind: KindHovered, FactID: id}
}

// Selected returns the state with the fact selected
func Selected(id uuid.UUID) State {
	return State{Kind: KindSelected, FactID: id}
}

// IsIdle reports whether nothing is hovered or selected
func (s State) IsIdle() bool {
	return s.Kind == KindIdle
}

// Selection returns the selected fact, if any
func (s State) Selection() (uuid.UUID, bool) {
	if s.Kind != KindSelected {
		return uuid.Nil, false
	}
	return s.FactID, true
}

// Hover returns the hovered fact, if any
func (s State) Hover() (uuid.UUID, bool) {
	if s.Kind != KindHovered {
		return uuid.Nil, false
	}
	return s.FactID, true
}

func (s State) String() string {
	if s.Kind == KindIdle {
		return s.Kind.String()
	}
	return s.Kind.String() + "(" + s.FactID.String() + ")"
}
