// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package manager

import (
	"context"

	"github.com/ManuGH/tvinput/internal/domain/session/actor"
	"github.com/ManuGH/tvinput/internal/domain/session/model"
)

// Host produces session implementations. It runs on the control looper.
type Host interface {
	// OnCreateSession returns the implementation for a new session on inputID,
	// or nil when the session cannot be created. s is not yet handed out; the
	// implementation may issue notifications on it, which are queued until bind.
	OnCreateSession(ctx context.Context, inputID string, s *actor.Session) actor.Hooks
}

// RecordingHost produces record-only sessions. A service without one reports
// every recording request as failed.
type RecordingHost interface {
	OnCreateRecordingSession(ctx context.Context, inputID string, r *actor.Recording) actor.RecordingHooks
}

// HardwareResolver maps hardware devices to inputs. A false result means the
// device is not exposed and nothing is broadcast.
type HardwareResolver interface {
	OnHardwareAdded(ctx context.Context, info model.HardwareInfo) (model.InputInfo, bool)
	OnHardwareRemoved(ctx context.Context, info model.HardwareInfo) (inputID string, ok bool)
}

// HdmiResolver maps logical HDMI devices to inputs.
type HdmiResolver interface {
	OnHdmiDeviceAdded(ctx context.Context, info model.HdmiDeviceInfo) (model.InputInfo, bool)
	OnHdmiDeviceRemoved(ctx context.Context, info model.HdmiDeviceInfo) (inputID string, ok bool)
}
