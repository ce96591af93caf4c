// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ports

import (
	"context"

	"github.com/ManuGH/tvinput/internal/domain/session/model"
)

// InputManager is the upstream manager that owns hardware inputs.
type InputManager interface {
	// InputInfo resolves an input by id.
	InputInfo(ctx context.Context, inputID string) (model.InputInfo, bool)
	// CreateSession creates a nested session on inputID. It may block on a remote
	// call and is never invoked from a serialized context.
	CreateSession(ctx context.Context, inputID string, events HardwareSessionEvents) (HardwareSession, error)
}

// HardwareSession is a manager-owned session nested inside a passthrough session.
type HardwareSession interface {
	Token() model.Handle
	Tune(channelURI string, params model.Bundle)
	Release()
}

// HardwareSessionEvents receives events from nested sessions. The originating
// session is passed so stale events from a superseded session can be ignored.
type HardwareSessionEvents interface {
	OnVideoAvailable(session HardwareSession)
	OnVideoUnavailable(session HardwareSession, reason model.VideoUnavailableReason)
}
