// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package lifecycle owns the session delivery phase and the gate that decides,
// per notification, whether it is queued, delivered inline, posted or dropped.
package lifecycle

// Phase is the delivery phase of a session's callback binding.
type Phase int

const (
	// PhaseUnbound means no callback is bound yet. Notifications queue up.
	PhaseUnbound Phase = iota
	// PhaseBound means notifications are delivered on the session looper.
	PhaseBound
	// PhaseReleased is terminal. Notifications are dropped.
	PhaseReleased
)

func (p Phase) String() string {
	switch p {
	case PhaseUnbound:
		return "unbound"
	case PhaseBound:
		return "bound"
	case PhaseReleased:
		return "released"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition can leave p.
func (p Phase) IsTerminal() bool { return p == PhaseReleased }
