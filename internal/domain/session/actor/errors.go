// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package actor

import (
	"errors"

	"github.com/ManuGH/tvinput/internal/domain/session/lifecycle"
)

var (
	// ErrInvalidArgument rejects a notification whose arguments violate a precondition.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrReleased is returned by operations on a released session.
	ErrReleased = lifecycle.ErrReleased
	// ErrNotPassthrough is returned when a hardware operation targets a plain session.
	ErrNotPassthrough = errors.New("session is not a hardware passthrough session")
)
