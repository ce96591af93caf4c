// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package actor

import (
	"context"

	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/domain/session/ports"
)

// Hooks is the behavior every session implementation must provide. All hooks run
// on the session looper; ctx is the looper task context, so notifications issued
// from inside a hook are delivered inline.
type Hooks interface {
	OnRelease(ctx context.Context)
	// OnSetSurface is never called on hardware passthrough sessions.
	OnSetSurface(ctx context.Context, surface ports.Surface)
	OnSetStreamVolume(ctx context.Context, volume float64)
	OnTune(ctx context.Context, channelURI string, params model.Bundle)
	OnSetCaptionEnabled(ctx context.Context, enabled bool)
}

// The interfaces below are optional capabilities. A Hooks value implements the
// ones it supports; unsupported operations are no-ops.

type MainSetter interface {
	OnSetMain(ctx context.Context, isMain bool)
}

type SurfaceChangeListener interface {
	OnSurfaceChanged(ctx context.Context, format, width, height int)
}

type TrackSelector interface {
	OnSelectTrack(ctx context.Context, trackType model.TrackType, trackID string)
}

type ContentUnblocker interface {
	OnUnblockContent(ctx context.Context, rating model.ContentRating)
}

type PrivateCommandHandler interface {
	OnAppPrivateCommand(ctx context.Context, action string, data model.Bundle)
}

// OverlayProvider supplies the overlay view. Returning nil means no overlay.
type OverlayProvider interface {
	OnCreateOverlayView(ctx context.Context) ports.OverlayView
}

type OverlaySizeListener interface {
	OnOverlayViewSizeChanged(ctx context.Context, width, height int)
}

// TimeShifter implements time-shift playback. The position getters are sampled by
// the position tracker while the time-shift status is available.
type TimeShifter interface {
	OnTimeShiftPlay(ctx context.Context, recordedProgramURI string)
	OnTimeShiftPause(ctx context.Context)
	OnTimeShiftResume(ctx context.Context)
	OnTimeShiftSeekTo(ctx context.Context, timeMs int64)
	OnTimeShiftSetPlaybackParams(ctx context.Context, params model.PlaybackParams)
	OnTimeShiftGetStartPosition(ctx context.Context) int64
	OnTimeShiftGetCurrentPosition(ctx context.Context) int64
}

// KeyHandler consumes key events. Returning true marks the event handled.
type KeyHandler interface {
	OnKeyDown(ctx context.Context, code model.KeyCode, ev model.KeyEvent) bool
	OnKeyLongPress(ctx context.Context, code model.KeyCode, ev model.KeyEvent) bool
	OnKeyMultiple(ctx context.Context, code model.KeyCode, count int, ev model.KeyEvent) bool
	OnKeyUp(ctx context.Context, code model.KeyCode, ev model.KeyEvent) bool
}

// MotionHandler consumes motion events by source class.
type MotionHandler interface {
	OnTouchEvent(ctx context.Context, ev model.MotionEvent) bool
	OnTrackballEvent(ctx context.Context, ev model.MotionEvent) bool
	OnGenericMotionEvent(ctx context.Context, ev model.MotionEvent) bool
}

// HardwarePassthrough turns a session into a proxy for a hardware input. The
// service creates a nested session on HardwareInputID and forwards its video
// availability through the two hooks.
type HardwarePassthrough interface {
	HardwareInputID() string
	OnHardwareVideoAvailable(ctx context.Context)
	OnHardwareVideoUnavailable(ctx context.Context, reason model.VideoUnavailableReason)
}

// RecordingHooks is the behavior of a record-only session.
type RecordingHooks interface {
	OnTune(ctx context.Context, channelURI string, params model.Bundle)
	OnStartRecording(ctx context.Context, programURI string)
	OnStopRecording(ctx context.Context)
	OnRelease(ctx context.Context)
}
