// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

// EventKind drives a phase transition.
type EventKind int

const (
	EvUnknown EventKind = iota
	EvBind
	EvRelease
)

func (e EventKind) String() string {
	switch e {
	case EvBind:
		return "bind"
	case EvRelease:
		return "release"
	default:
		return "unknown"
	}
}
