// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import "errors"

var (
	// ErrReleased is returned when binding a session that was already released.
	ErrReleased = errors.New("session released")
	// ErrIllegalTransition marks an event the phase table does not allow.
	ErrIllegalTransition = errors.New("illegal phase transition")
)
