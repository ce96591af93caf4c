// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

//go:build !debug

package lifecycle

import (
	"fmt"

	"github.com/ManuGH/tvinput/internal/log"
)

func illegalTransition(from Phase, ev EventKind) error {
	logger := log.WithComponent("lifecycle")
	logger.Error().
		Str(log.FieldEvent, "lifecycle.illegal_transition").
		Str(log.FieldOldState, from.String()).
		Str("transition_event", ev.String()).
		Msg("illegal phase transition")
	return fmt.Errorf("%w: %s + %s", ErrIllegalTransition, from, ev)
}
