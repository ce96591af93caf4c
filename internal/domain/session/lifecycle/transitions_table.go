// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

// Transition is a single allowed edge in the phase state machine.
type Transition struct {
	From  Phase
	To    Phase
	Event EventKind
}

var transitionsTable = []Transition{
	{From: PhaseUnbound, To: PhaseBound, Event: EvBind},
	{From: PhaseUnbound, To: PhaseReleased, Event: EvRelease},
	{From: PhaseBound, To: PhaseReleased, Event: EvRelease},
}

// TransitionFor returns the allowed transition for a given phase+event.
func TransitionFor(from Phase, ev EventKind) (Transition, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.Event == ev {
			return tr, true
		}
	}
	return Transition{}, false
}
